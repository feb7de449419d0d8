// Package config resolves the runtime configuration for one conversion
// run, with the precedence flag > environment > built-in default.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config is the resolved configuration handed to the processor.
type Config struct {
	InputPath       string
	OutputPath      string
	MappingsPath    string
	DefaultAccount1 string
	DefaultCurrency string
	Debug           bool
}

const (
	defaultInput    = "bankstatements/transactions.csv"
	defaultOutput   = "samples/converted.csv"
	defaultMappings = "mappings.yaml"
)

// Build resolves the effective configuration from the command flags and
// the environment. Unless --no-dotenv is set, a .env file in the working
// directory is loaded first so its variables take part in the lookup.
func Build(flags *pflag.FlagSet) (*Config, error) {
	if noDotenv, _ := flags.GetBool("no-dotenv"); !noDotenv {
		// Missing .env is the common case, not an error.
		_ = gotenv.Load()
	}

	v := viper.New()
	bindings := []struct {
		key, flag, env, fallback string
	}{
		{"input", "input", "IN_FILE", defaultInput},
		{"output", "output", "OUT_FILE", defaultOutput},
		{"mappings", "mappings", "MAPPINGS", defaultMappings},
		{"default-account1", "default-account1", "DEFAULT_ACCOUNT1", ""},
		{"default-currency", "default-currency", "DEFAULT_CURRENCY", ""},
	}
	for _, b := range bindings {
		if f := flags.Lookup(b.flag); f != nil {
			if err := v.BindPFlag(b.key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", b.flag, err)
			}
		}
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", b.env, err)
		}
		v.SetDefault(b.key, b.fallback)
	}

	debug, _ := flags.GetBool("debug")

	return &Config{
		InputPath:       v.GetString("input"),
		OutputPath:      v.GetString("output"),
		MappingsPath:    v.GetString("mappings"),
		DefaultAccount1: v.GetString("default-account1"),
		DefaultCurrency: v.GetString("default-currency"),
		Debug:           debug,
	}, nil
}
