package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestLoadOrCreateConfigMissingCreatesDefault(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "config", "config.toml")
	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })

	// Ensure missing
	if _, err := os.Stat(configPath); err == nil {
		t.Fatalf("expected config file to be missing")
	}

	created, err := LoadOrCreateConfig()
	if err != nil {
		t.Fatalf("LoadOrCreateConfig() error: %v", err)
	}
	if !created {
		t.Fatalf("LoadOrCreateConfig() created=false, want true")
	}

	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}

	var got Config
	if _, err := toml.DecodeFile(configPath, &got); err != nil {
		t.Fatalf("decode created config: %v", err)
	}
	if got.Server.Host != "127.0.0.1" {
		t.Fatalf("default server host = %q, want %q", got.Server.Host, "127.0.0.1")
	}
	if got.Server.Port != 8888 {
		t.Fatalf("default server port = %d, want %d", got.Server.Port, 8888)
	}
	if got.Highlight.TopClipsCount != 3 {
		t.Fatalf("default top clips count = %d, want 3", got.Highlight.TopClipsCount)
	}
	if got.Orchestrator.MaxIterations != 20 {
		t.Fatalf("default max iterations = %d, want 20", got.Orchestrator.MaxIterations)
	}
}

func TestSaveConfigCreatesParentDirs(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "deep", "nest", "config.toml")
	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })

	Conf = defaultConfig()
	Conf.Server.Port = 9999

	if err := SaveConfig(); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	if _, err := os.Stat(filepath.Dir(configPath)); err != nil {
		t.Fatalf("expected parent directories to exist: %v", err)
	}

	var got Config
	if _, err := toml.DecodeFile(configPath, &got); err != nil {
		t.Fatalf("decode saved config: %v", err)
	}
	if got.Server.Port != 9999 {
		t.Fatalf("saved server port = %d, want %d", got.Server.Port, 9999)
	}
}

func TestCheckConfigRejectsBadBounds(t *testing.T) {
	Conf = defaultConfig()
	Conf.Scoring.ApiKey = "test-key"
	Conf.Highlight.MinSceneDuration = 10
	Conf.Highlight.MaxSceneDuration = 5

	if err := CheckConfig(); err == nil {
		t.Fatal("CheckConfig() returned nil error for inverted bounds")
	}
}

func TestCheckConfigRejectsUnknownProvider(t *testing.T) {
	Conf = defaultConfig()
	Conf.Scoring.ApiKey = "test-key"
	Conf.Scoring.Provider = "carrier-pigeon"

	if err := CheckConfig(); err == nil {
		t.Fatal("CheckConfig() returned nil error for unknown provider")
	}
}

func TestScoringKeyEnvByProvider(t *testing.T) {
	if got := scoringKeyEnv("nvidia"); got != "NVIDIA_API_KEY" {
		t.Fatalf("scoringKeyEnv(nvidia) = %q", got)
	}
	if got := scoringKeyEnv("openai"); got != "OPENAI_API_KEY" {
		t.Fatalf("scoringKeyEnv(openai) = %q", got)
	}
}
