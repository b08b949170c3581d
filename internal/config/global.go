// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"sync"
)

var (
	// globalMu guards the cached configuration state below.
	globalMu sync.Mutex

	// globalConfig caches the loaded configuration for the process lifetime.
	globalConfig *Config

	// configPath records where globalConfig was loaded from ("" means defaults).
	configPath string

	// configFilePathOverride forces loading from a specific file (--config flag).
	configFilePathOverride string

	// configDirOverride allows tests to override the config directory.
	// This is necessary because os.UserHomeDir() doesn't reliably respect
	// the HOME environment variable on all platforms (e.g., macOS in CI).
	configDirOverride string
)

// Load returns the process-wide configuration, loading it on first use.
// Subsequent calls return the cached value until an override clears it.
func Load() (*Config, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: configFilePathOverride,
	})
	if err != nil {
		return nil, err
	}

	globalConfig = cfg
	configPath = path
	return cfg, nil
}

// GetConfigPath returns the path the cached configuration was loaded from.
// It is empty when defaults are in effect or nothing has been loaded yet.
func GetConfigPath() string {
	globalMu.Lock()
	defer globalMu.Unlock()
	return configPath
}

// SetConfigFilePathOverride forces configuration loading from a specific file
// and clears the cache so the next Load() picks it up.
func SetConfigFilePathOverride(path string) {
	globalMu.Lock()
	defer globalMu.Unlock()
	configFilePathOverride = path
	globalConfig = nil
	configPath = ""
}

// Reset clears cached state and test overrides. Call from test cleanup
// to restore defaults.
func Reset() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = nil
	configPath = ""
	configFilePathOverride = ""
	configDirOverride = ""
}

// SetConfigDirOverride sets a custom config directory path.
// This is primarily intended for testing to bypass os.UserHomeDir() which
// doesn't reliably respect the HOME env var on all platforms (e.g., macOS in CI).
func SetConfigDirOverride(dir string) {
	globalMu.Lock()
	defer globalMu.Unlock()
	configDirOverride = dir
	globalConfig = nil
	configPath = ""
}
