// Package config loads habitual settings from config.yaml, HABITUAL_*
// environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/utils"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "HABITUAL"

	KeyBackend      = "backend"
	KeyDataDir      = "data_dir"
	KeyTimezone     = "timezone"
	KeyAsyncPersist = "async_persist"
	KeyDebug        = "debug"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# habitual configuration

# Storage backend: json or sqlite
backend: json

# Data directory (optional; overridable by --data-dir or HABITUAL_DATA_DIR)
# data_dir:

# IANA timezone used to decide what "today" is, or Local
timezone: Local

# Write snapshots in the background instead of blocking each command
async_persist: true

debug: false
`

// Config is the resolved application configuration
type Config struct {
	ConfigDir    string
	Backend      string
	DataDir      string
	Timezone     string
	AsyncPersist bool
	Debug        bool
}

// Location returns the configured timezone
func (c *Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}

// Load reads config.yaml from configDir, creating the directory and a
// default file on first run. A .env file in the working directory is loaded
// into the environment first when present.
func Load(configDir string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(KeyBackend, constants.BackendJSON)
	v.SetDefault(KeyDataDir, "")
	v.SetDefault(KeyTimezone, "Local")
	v.SetDefault(KeyAsyncPersist, true)
	v.SetDefault(KeyDebug, false)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		ConfigDir:    configDir,
		Backend:      v.GetString(KeyBackend),
		DataDir:      v.GetString(KeyDataDir),
		Timezone:     v.GetString(KeyTimezone),
		AsyncPersist: v.GetBool(KeyAsyncPersist),
		Debug:        v.GetBool(KeyDebug),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the backend name and timezone
func (c *Config) Validate() error {
	switch c.Backend {
	case constants.BackendJSON, constants.BackendSQLite:
	default:
		return fmt.Errorf("invalid backend %q in config (expected %s or %s)", c.Backend, constants.BackendJSON, constants.BackendSQLite)
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q in config", c.Timezone)
	}
	return nil
}

// Path returns the config.yaml location inside configDir
func Path(configDir string) string {
	return filepath.Join(configDir, configFileExt)
}

func ensureDefaultConfigFile(configDir string) error {
	path := Path(configDir)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// loadDotEnv loads path into the process environment if it exists.
// Variables already set in the environment are not overridden.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
