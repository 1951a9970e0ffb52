// Package config loads treegen settings from defaults, an optional YAML
// file and TREEGEN_ environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = "treegen"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for treegen settings.
const envPrefix = "TREEGEN"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise treegen.yaml is searched in CWD, ./config and
// $HOME/.config/treegen. Missing config file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("config")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("export.languages", DefaultLanguages())
	viperCfg.SetDefault("export.output_dir", DefaultOutputDir)
	viperCfg.SetDefault("export.max_args", DefaultMaxArgs)
	viperCfg.SetDefault("export.input_map", DefaultInputMap)
	viperCfg.SetDefault("export.attr", DefaultAttr)

	viperCfg.SetDefault("templates.dir", "")

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.format", DefaultLoggingFormat)
}
