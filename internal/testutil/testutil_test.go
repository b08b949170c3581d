// SPDX-License-Identifier: MIT

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestSetHomeDir(t *testing.T) {
	dir := t.TempDir()
	cleanup := SetHomeDir(t, dir)
	defer cleanup()

	key := "HOME"
	if runtime.GOOS == "windows" {
		key = "USERPROFILE"
	}
	if got := os.Getenv(key); got != dir {
		t.Errorf("%s = %q, want %q", key, got, dir)
	}
}

func TestMustSetenv_RestoresOriginal(t *testing.T) {
	t.Setenv("TESTUTIL_VAR", "before")

	cleanup := MustSetenv(t, "TESTUTIL_VAR", "during")
	if got := os.Getenv("TESTUTIL_VAR"); got != "during" {
		t.Fatalf("TESTUTIL_VAR = %q, want %q", got, "during")
	}

	cleanup()
	if got := os.Getenv("TESTUTIL_VAR"); got != "before" {
		t.Errorf("TESTUTIL_VAR = %q after cleanup, want %q", got, "before")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path := WriteFile(t, dir, filepath.Join("nested", "file.txt"), "hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want %q", string(data), "hello")
	}
}
