// Package paths resolves the configuration and data directory locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/julianstephens/habitual/internal/constants"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "HABITUAL_CONFIG_DIR"
	EnvDataDir   = "HABITUAL_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	goos          string
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	goos:          runtime.GOOS,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/habitual (fallback ~/.config/habitual)
// macOS:   ~/Library/Application Support/habitual
// Windows: %APPDATA%/habitual
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/habitual (fallback ~/.local/share/habitual)
// macOS and Windows: same as the config dir.
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(xdgEnv, homeFallback string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, constants.AppName), nil
	}

	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, constants.AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeFallback, constants.AppName), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > HABITUAL_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configValue (config.yaml or its env override) > HABITUAL_DATA_DIR env > DefaultDataDir().
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultDataDir()
}
