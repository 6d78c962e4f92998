package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfig()
	if cfg != want {
		t.Fatalf("cfg = %+v\nwant %+v", cfg, want)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	isolate(t)
	path := writeFile(t, `
[server]
addr = ":9090"

[llm]
provider = "openai"
model = "gpt-4o"
max_turns = 3

[analyzer]
mode = "remote"
base_url = "http://localhost:7000"
`)
	t.Setenv("FINTIPS_LLM_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.Mode != "release" {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.MaxTurns != 3 {
		t.Fatalf("llm = %+v", cfg.LLM)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Fatalf("api key = %q", cfg.LLM.APIKey)
	}
	if cfg.Analyzer.Mode != "remote" || cfg.Analyzer.BaseURL != "http://localhost:7000" {
		t.Fatalf("analyzer = %+v", cfg.Analyzer)
	}
}

func TestLoad_ConfiguredKeyWins(t *testing.T) {
	isolate(t)
	path := writeFile(t, "[llm]\napi_key = \"from-file\"\n")
	t.Setenv("ANTHROPIC_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.APIKey != "from-file" {
		t.Fatalf("api key = %q", cfg.LLM.APIKey)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown provider":   "[llm]\nprovider = \"cohere\"\n",
		"remote without url": "[analyzer]\nmode = \"remote\"\n",
		"bad log level":      "[log]\nlevel = \"loud\"\n",
		"negative cache ttl": "[server]\ncache_ttl_seconds = -1\n",
		"malformed toml":     "[server\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			if _, err := Load(writeFile(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	cfg.LLM.Model = "claude-test"
	cfg.Server.CacheTTLSeconds = 0
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	if !Exists(path) {
		t.Fatal("config file not written")
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Fatalf("got %+v\nwant %+v", got, cfg)
	}
}

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if got := ConfigPath(); got != filepath.Join(dir, "fintips", "config.toml") {
		t.Fatalf("ConfigPath = %s", got)
	}
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LLM.Timeout().Seconds() != 60 || cfg.Server.CacheTTL().Seconds() != 300 {
		t.Fatalf("durations = %v %v", cfg.LLM.Timeout(), cfg.Server.CacheTTL())
	}
}
