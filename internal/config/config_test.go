package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oakmoor/scout/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("SCOUT_DB_NAME", "scout")
	t.Setenv("SCOUT_DB_USER", "scout")
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %q", cfg.Server.Addr())
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("llm model = %q", cfg.LLM.Model)
	}
	if cfg.Search.BaseURL != "https://api.tavily.com" {
		t.Errorf("search base url = %q", cfg.Search.BaseURL)
	}
	if cfg.Workflow.Workers != 4 {
		t.Errorf("workers = %d", cfg.Workflow.Workers)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("base path = %q", cfg.API.BasePath)
	}
}

func TestLoadMissingLLMToken(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredEnv(t)
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := config.Load(); err == nil {
		t.Error("expected error without llm token")
	}
}

func TestLoadMissingSearchKey(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredEnv(t)
	t.Setenv("TAVILY_API_KEY", "")

	if _, err := config.Load(); err == nil {
		t.Error("expected error without search api key")
	}
}

func TestLoadBaseFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	setRequiredEnv(t)

	base := `
version = "1.2.3"

[server]
port = 9090

[workflow]
workers = 8
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(base), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Version != "1.2.3" {
		t.Errorf("version = %q", cfg.Version)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Workflow.Workers != 8 {
		t.Errorf("workers = %d", cfg.Workflow.Workers)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	setRequiredEnv(t)
	t.Setenv("SCOUT_ENV", "test")

	base := `
[server]
port = 9090

[llm]
model = "gpt-4o"
`
	overlay := `
[server]
port = 9191

[llm]
model = "gpt-4o-mini"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(base), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.test.toml"), []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("port = %d, want overlay value", cfg.Server.Port)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want overlay value", cfg.LLM.Model)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	setRequiredEnv(t)
	t.Setenv("SCOUT_SERVER_PORT", "7070")

	base := `
[server]
port = 9090
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(base), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env value", cfg.Server.Port)
	}
}
