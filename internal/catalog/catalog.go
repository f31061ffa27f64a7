// Package catalog holds the recipe menu: the ordered ingredient lists
// used to build orders, their prices and optional station rules.
// Grounded on original_source/burger_system.c's hard-coded MENU array,
// now sourced from config.Config so config.yaml can replace it.
package catalog

import (
	"fmt"
	"math/rand"

	"industrial-4.0-demo/internal/config"
	"industrial-4.0-demo/internal/types"
)

// Catalog is an immutable, ordered list of recipes.
type Catalog struct {
	recipes []types.Recipe
}

// Default returns the built-in menu used when config.yaml carries no
// recipes section, transliterated from burger_system.c's MENU table.
func Default() Catalog {
	return Catalog{recipes: []types.Recipe{
		{
			Name:        "classic",
			Ingredients: []string{"bun_bottom", "patty", "cheese", "lettuce", "tomato", "bun_top"},
			Price:       5.50,
		},
		{
			Name:        "cheeseburger_deluxe",
			Ingredients: []string{"bun_bottom", "patty", "cheese", "bacon", "onion", "pickles", "bun_top"},
			Price:       7.25,
		},
		{
			Name:        "veggie_stack",
			Ingredients: []string{"bun_bottom", "mushrooms", "avocado", "tomato", "lettuce", "bun_top"},
			Price:       6.75,
		},
		{
			Name:        "spicy_jalapeno",
			Ingredients: []string{"bun_bottom", "patty", "cheese", "jalapenos", "mustard", "bun_top"},
			Price:       6.95,
		},
		{
			Name:        "double_bacon",
			Ingredients: []string{"bun_bottom", "patty", "patty", "bacon", "bacon", "cheese", "bun_top"},
			Price:       8.50,
		},
		{
			Name:        "plain",
			Ingredients: []string{"bun_bottom", "patty", "ketchup", "mayonnaise", "bun_top"},
			Price:       4.25,
		},
	}}
}

// FromConfig builds a Catalog from config.yaml's recipes section,
// falling back to Default() when the section is empty.
func FromConfig(cfg config.Config) (Catalog, error) {
	if len(cfg.Recipes) == 0 {
		return Default(), nil
	}
	recipes := make([]types.Recipe, 0, len(cfg.Recipes))
	for _, rc := range cfg.Recipes {
		if len(rc.Ingredients) == 0 || len(rc.Ingredients) > types.MaxIngredientsPerRecipe {
			return Catalog{}, fmt.Errorf("recipe %q: ingredient count must be in [1, %d]", rc.Name, types.MaxIngredientsPerRecipe)
		}
		recipes = append(recipes, types.Recipe{
			Name:        rc.Name,
			Ingredients: rc.Ingredients,
			Price:       rc.Price,
			StationRule: rc.StationRule,
		})
	}
	return Catalog{recipes: recipes}, nil
}

// Recipes returns every recipe in catalog order.
func (c Catalog) Recipes() []types.Recipe {
	return c.recipes
}

// Random returns a uniformly random recipe (spec §4.3's generator
// selection policy), or the zero Recipe and false if the catalog is
// empty.
func (c Catalog) Random(rng *rand.Rand) (types.Recipe, bool) {
	if len(c.recipes) == 0 {
		return types.Recipe{}, false
	}
	return c.recipes[rng.Intn(len(c.recipes))], true
}

// ByName looks up a recipe by exact name.
func (c Catalog) ByName(name string) (types.Recipe, bool) {
	for _, r := range c.recipes {
		if r.Name == name {
			return r, true
		}
	}
	return types.Recipe{}, false
}
