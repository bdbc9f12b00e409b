package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Source says where configuration is read from. Empty paths are skipped.
type Source struct {
	File      string
	EnvFile   string
	EnvPrefix string
}

// DefaultSource reads ./config.yaml, ./.env and CATALOG_* variables.
func DefaultSource() Source {
	return Source{
		File:      "config.yaml",
		EnvFile:   ".env",
		EnvPrefix: "CATALOG_",
	}
}

// Load layers defaults < yaml file < .env file < process environment and
// validates the result. Missing files are not an error.
func Load(src Source) (Config, error) {
	var cfg Config
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return cfg, fmt.Errorf("load defaults: %w", err)
	}

	if src.File != "" {
		if err := k.Load(file.Provider(src.File), yaml.Parser()); err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("load %s: %w", src.File, err)
		}
	}

	keyOf := envKeyFunc(src.EnvPrefix)

	if src.EnvFile != "" {
		vars, err := godotenv.Read(src.EnvFile)
		switch {
		case err == nil:
			m := make(map[string]any, len(vars))
			for name, v := range vars {
				if strings.HasPrefix(name, src.EnvPrefix) {
					m[keyOf(name)] = v
				}
			}
			if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
				return cfg, fmt.Errorf("load %s: %w", src.EnvFile, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("read %s: %w", src.EnvFile, err)
		}
	}

	if err := k.Load(env.Provider(src.EnvPrefix, ".", keyOf), nil); err != nil {
		return cfg, fmt.Errorf("load environment: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envKeyFunc maps CATALOG_AUTH_SECRET to auth.secret.
func envKeyFunc(prefix string) func(string) string {
	return func(name string) string {
		name = strings.TrimPrefix(name, prefix)
		return strings.ReplaceAll(strings.ToLower(name), "_", ".")
	}
}
