package catalog

import (
	"math/rand"
	"testing"

	"industrial-4.0-demo/internal/config"
)

func TestDefaultCatalogNotEmpty(t *testing.T) {
	c := Default()
	if len(c.Recipes()) == 0 {
		t.Fatalf("expected the default catalog to carry at least one recipe")
	}
}

func TestRandomPicksFromCatalog(t *testing.T) {
	c := Default()
	rng := rand.New(rand.NewSource(1))
	r, ok := c.Random(rng)
	if !ok {
		t.Fatalf("expected Random to succeed on a non-empty catalog")
	}
	if _, found := c.ByName(r.Name); !found {
		t.Fatalf("expected the random recipe %q to be found by name", r.Name)
	}
}

func TestRandomOnEmptyCatalog(t *testing.T) {
	var c Catalog
	rng := rand.New(rand.NewSource(1))
	if _, ok := c.Random(rng); ok {
		t.Fatalf("expected Random on an empty catalog to fail")
	}
}

func TestFromConfigRejectsTooManyIngredients(t *testing.T) {
	cfg := config.Defaults()
	cfg.Recipes = []config.RecipeConfig{
		{Name: "overloaded", Ingredients: make([]string, 11)},
	}
	if _, err := FromConfig(cfg); err == nil {
		t.Fatalf("expected an error for a recipe exceeding the ingredient limit")
	}
}

func TestFromConfigFallsBackToDefault(t *testing.T) {
	cfg := config.Defaults()
	c, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Recipes()) != len(Default().Recipes()) {
		t.Fatalf("expected empty config recipes to fall back to the default catalog")
	}
}
