// SPDX-License-Identifier: MIT

// Package config handles application configuration using Viper with TOML as the file format.
//
// Configuration is loaded from ~/.config/aer/config.toml (or XDG equivalent on Linux,
// ~/Library/Application Support/aer/config.toml on macOS, %APPDATA%\aer\config.toml
// on Windows). Environment variables prefixed with AER_ override file values.
// The package provides type-safe configuration access for the work and download
// directories, the web user agent, log level, and UI settings.
package config
