package config

import "testing"

func TestDefaultsAreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("expected the built-in defaults to validate, got: %v", err)
	}
}

func TestValidateRejectsOutOfRangeStations(t *testing.T) {
	cfg := Defaults()
	cfg.Stations = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for zero stations")
	}
	cfg.Stations = 11
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for stations exceeding the maximum")
	}
}

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	fs := FlagSet()
	if err := fs.Parse([]string{"--config", "/nonexistent/config.yaml"}); err != nil {
		t.Fatalf("unexpected flag parse error: %v", err)
	}
	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("unexpected error loading config with a missing file: %v", err)
	}
	if cfg.Stations != Defaults().Stations {
		t.Errorf("expected default station count, got %d", cfg.Stations)
	}
}

func TestLoadAppliesFlagOverrides(t *testing.T) {
	fs := FlagSet()
	if err := fs.Parse([]string{"--config", "/nonexistent/config.yaml", "-n", "5", "-t", "3", "-o", "9"}); err != nil {
		t.Fatalf("unexpected flag parse error: %v", err)
	}
	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Stations != 5 {
		t.Errorf("expected 5 stations from -n override, got %d", cfg.Stations)
	}
	if cfg.TickPerIngredientS != 3 {
		t.Errorf("expected tick_per_ingredient override 3, got %d", cfg.TickPerIngredientS)
	}
	if cfg.TickBetweenOrdersS != 9 {
		t.Errorf("expected tick_between_orders override 9, got %d", cfg.TickBetweenOrdersS)
	}
}
