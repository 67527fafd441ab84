package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPaths(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))

	dataDir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if !strings.HasSuffix(dataDir, filepath.Join(".restartctl")) {
		t.Fatalf("unexpected data dir: %s", dataDir)
	}

	cachePath, err := CachePath()
	if err != nil {
		t.Fatalf("CachePath: %v", err)
	}
	if !strings.HasSuffix(cachePath, filepath.Join(".restartctl", "cache.db")) {
		t.Fatalf("unexpected cache path: %s", cachePath)
	}

	settingsPath, err := SettingsPath()
	if err != nil {
		t.Fatalf("SettingsPath: %v", err)
	}
	if !strings.HasSuffix(settingsPath, filepath.Join(".restartctl", "config.toml")) {
		t.Fatalf("unexpected settings path: %s", settingsPath)
	}
}

func TestEnsureDataDirCreatesDirectory(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))

	dataDir, err := EnsureDataDir()
	if err != nil {
		t.Fatalf("EnsureDataDir: %v", err)
	}
	info, err := os.Stat(dataDir)
	if err != nil {
		t.Fatalf("stat data dir: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", dataDir)
	}
}
