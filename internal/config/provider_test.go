// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestProvider_Load_Defaults(t *testing.T) {
	p := NewProvider()

	cfg, err := p.Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.LogLevel != LogLevelInfo {
		t.Errorf("log level = %s, want info", cfg.LogLevel)
	}
}

func TestProvider_Load_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(cfgPath, []byte(`log_level = "error"`), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewProvider()

	cfg, err := p.Load(context.Background(), LoadOptions{ConfigFilePath: cfgPath})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.LogLevel != LogLevelError {
		t.Errorf("log level = %s, want error", cfg.LogLevel)
	}
}

func TestProvider_Load_MissingExplicitFile(t *testing.T) {
	p := NewProvider()

	_, err := p.Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.toml"),
	})
	if err == nil {
		t.Fatal("Load() should fail for a missing explicit config file")
	}
}
