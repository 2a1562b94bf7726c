package cli

import (
	"os"
	"path/filepath"
	"testing"
)

// setTestConfigPath points the --config flag at a temp path for one test.
func setTestConfigPath(t *testing.T, path string) {
	t.Helper()
	prev := configPath
	configPath = path
	t.Cleanup(func() { configPath = prev })
}

func TestConfigInitCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	setTestConfigPath(t, path)

	if err := runConfigInit(configInitCmd, nil); err != nil {
		t.Fatalf("config init: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file was not created: %v", err)
	}
	if len(raw) == 0 {
		t.Error("created config is empty")
	}

	// Re-running must leave the file alone.
	if err := runConfigInit(configInitCmd, nil); err != nil {
		t.Fatalf("config init second run: %v", err)
	}
	again, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(again) != string(raw) {
		t.Error("second init changed the config file")
	}
}

func TestConfigShowInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("url = not-quoted"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	setTestConfigPath(t, path)

	if err := runConfigShow(configCmd, nil); err == nil {
		t.Fatal("expected error for unparseable config")
	}
}
