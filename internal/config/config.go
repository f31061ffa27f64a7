// Package config loads the producer's configuration from config.yaml
// via viper, overlaid with the CLI flags of spec §6, adapted from the
// teacher project's internal/config/config.go almost directly.
package config

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"industrial-4.0-demo/internal/types"
)

// RecipeConfig mirrors the catalog entry shape read from config.yaml.
type RecipeConfig struct {
	Name        string   `mapstructure:"name"`
	Ingredients []string `mapstructure:"ingredients"`
	Price       float64  `mapstructure:"price"`
	StationRule string   `mapstructure:"station_rule"`
}

// Config is the fully-resolved producer configuration.
type Config struct {
	Stations           int             `mapstructure:"stations"`
	TickPerIngredientS int             `mapstructure:"tick_per_ingredient_seconds"`
	TickBetweenOrdersS int             `mapstructure:"tick_between_orders_seconds"`
	DispenserCapacity  int             `mapstructure:"dispenser_capacity"`
	MaxQueue           int             `mapstructure:"max_queue"`
	LowThreshold       int             `mapstructure:"low_threshold"`
	RetryBound         int             `mapstructure:"retry_bound"`
	RegionName         string          `mapstructure:"region_name"`
	Ingredients        []string        `mapstructure:"ingredients"`
	Recipes            []RecipeConfig  `mapstructure:"recipes"`
	SupplierEndpoint   string          `mapstructure:"supplier_endpoint"`

	// PrintMenu / PrintHelp / errors are populated only from CLI flags,
	// never from config.yaml (spec §6: -m/-h are process actions, not
	// persisted settings).
	PrintMenu bool `mapstructure:"-"`
}

const (
	MaxStations = 10
)

// TickPerIngredient / TickBetweenOrders as time.Duration convenience.
func (c Config) TickPerIngredient() time.Duration {
	return time.Duration(c.TickPerIngredientS) * time.Second
}

func (c Config) TickBetweenOrders() time.Duration {
	return time.Duration(c.TickBetweenOrdersS) * time.Second
}

// Defaults returns the spec §6 default configuration before any
// config.yaml or CLI overrides are applied.
func Defaults() Config {
	return Config{
		Stations:           3,
		TickPerIngredientS: 2,
		TickBetweenOrdersS: 7,
		DispenserCapacity:  20,
		MaxQueue:           100,
		LowThreshold:       types.DefaultLowThreshold,
		RetryBound:         types.DefaultRetryBound,
		RegionName:         "/burger_system",
		Ingredients: []string{
			"bun_bottom", "patty", "bun_top", "cheese", "tomato",
			"lettuce", "onion", "pickles", "mayonnaise", "ketchup",
			"mustard", "bacon", "mushrooms", "avocado", "jalapenos",
		},
	}
}

// FlagSet defines the CLI surface of spec §6. Binding is left to the
// caller (cmd/producer) so tests can construct a Config without
// touching os.Args or the global pflag.CommandLine.
func FlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("burger-system", pflag.ContinueOnError)
	fs.IntP("bandas", "n", 3, "number of stations (1-10)")
	fs.IntP("tiempo-ingrediente", "t", 2, "seconds per recipe step (1-60)")
	fs.IntP("tiempo-orden", "o", 7, "seconds between new orders (1-300)")
	fs.BoolP("menu", "m", false, "print the recipe catalog and exit")
	fs.StringP("config", "c", "config.yaml", "path to config.yaml")
	return fs
}

// Load reads config.yaml (if present; its absence is not fatal, the
// compiled-in Defaults() cover every field) and overlays the flags in
// fs, previously parsed by the caller.
func Load(fs *pflag.FlagSet) (Config, error) {
	cfg := Defaults()

	v := viper.New()
	v.SetConfigType("yaml")
	if fs != nil {
		if path, err := fs.GetString("config"); err == nil && path != "" {
			v.SetConfigFile(path)
		}
	}
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, iofs.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	} else if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if fs != nil {
		if n, err := fs.GetInt("bandas"); err == nil && fs.Changed("bandas") {
			cfg.Stations = n
		}
		if t, err := fs.GetInt("tiempo-ingrediente"); err == nil && fs.Changed("tiempo-ingrediente") {
			cfg.TickPerIngredientS = t
		}
		if o, err := fs.GetInt("tiempo-orden"); err == nil && fs.Changed("tiempo-orden") {
			cfg.TickBetweenOrdersS = o
		}
		if m, err := fs.GetBool("menu"); err == nil {
			cfg.PrintMenu = m
		}
	}

	return cfg, cfg.Validate()
}

// Validate enforces the bounds in spec §6.
func (c Config) Validate() error {
	if c.Stations < 1 || c.Stations > MaxStations {
		return fmt.Errorf("stations must be in [1, %d], got %d", MaxStations, c.Stations)
	}
	if c.TickPerIngredientS < 1 || c.TickPerIngredientS > 60 {
		return fmt.Errorf("tick_per_ingredient_seconds must be in [1, 60], got %d", c.TickPerIngredientS)
	}
	if c.TickBetweenOrdersS < 1 || c.TickBetweenOrdersS > 300 {
		return fmt.Errorf("tick_between_orders_seconds must be in [1, 300], got %d", c.TickBetweenOrdersS)
	}
	return nil
}
