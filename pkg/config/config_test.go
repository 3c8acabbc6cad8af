package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Provider != "ollama" {
		t.Fatalf("provider = %q", cfg.Provider)
	}
	if cfg.OllamaBaseURL != "http://localhost:11434" {
		t.Fatalf("ollama url = %q", cfg.OllamaBaseURL)
	}
	if cfg.GenerateTimeout != 90*time.Second {
		t.Fatalf("generate timeout = %v", cfg.GenerateTimeout)
	}
	if cfg.SandboxTimeout != 10*time.Second {
		t.Fatalf("sandbox timeout = %v", cfg.SandboxTimeout)
	}
	if cfg.PollInterval != 100*time.Millisecond {
		t.Fatalf("poll interval = %v", cfg.PollInterval)
	}
	if cfg.GatePause != 500*time.Millisecond {
		t.Fatalf("gate pause = %v", cfg.GatePause)
	}
	if cfg.GenerateInterval != time.Second {
		t.Fatalf("generate interval = %v", cfg.GenerateInterval)
	}
	if cfg.ShutdownGrace != 5*time.Second {
		t.Fatalf("shutdown grace = %v", cfg.ShutdownGrace)
	}
	if cfg.RawBlockSize != 5000 {
		t.Fatalf("raw block size = %d", cfg.RawBlockSize)
	}
	if cfg.Interpreter != "python3" {
		t.Fatalf("interpreter = %q", cfg.Interpreter)
	}
}

func TestFileValues(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`provider: mock
model: mock-1
data_dir: /tmp/pf
metrics_addr: ":9901"
interpreter: sh
raw_block_size: 128
timeouts:
  generate: 5s
  sandbox: 2s
  shutdown_grace: 1s
intervals:
  poll: 10ms
  gate_pause: 20ms
  generate: 50ms
api_keys:
  anthropic: file-ant
`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider != "mock" || cfg.Model != "mock-1" {
		t.Fatalf("provider/model = %q/%q", cfg.Provider, cfg.Model)
	}
	if cfg.DataDir != "/tmp/pf" || cfg.MetricsAddr != ":9901" {
		t.Fatalf("data dir/metrics = %q/%q", cfg.DataDir, cfg.MetricsAddr)
	}
	if cfg.Interpreter != "sh" {
		t.Fatalf("interpreter = %q", cfg.Interpreter)
	}
	if cfg.GenerateTimeout != 5*time.Second || cfg.SandboxTimeout != 2*time.Second {
		t.Fatalf("timeouts = %v/%v", cfg.GenerateTimeout, cfg.SandboxTimeout)
	}
	if cfg.PollInterval != 10*time.Millisecond || cfg.GatePause != 20*time.Millisecond {
		t.Fatalf("intervals = %v/%v", cfg.PollInterval, cfg.GatePause)
	}
	if cfg.RawBlockSize != 128 {
		t.Fatalf("raw block size = %d", cfg.RawBlockSize)
	}
	if cfg.AnthropicAPIKey != "file-ant" {
		t.Fatalf("anthropic key = %q", cfg.AnthropicAPIKey)
	}
}

func TestEnvTakesPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("provider: mock\napi_keys:\n  openai: file-key\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PULSEFORGE_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "env-key")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Fatalf("provider = %q, env should win", cfg.Provider)
	}
	if cfg.OpenAIAPIKey != "env-key" {
		t.Fatalf("openai key = %q, env should win", cfg.OpenAIAPIKey)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"PULSEFORGE_PROVIDER", "PULSEFORGE_MODEL", "PULSEFORGE_OLLAMA_URL",
		"PULSEFORGE_DATA_DIR", "PULSEFORGE_METRICS_ADDR", "PULSEFORGE_INTERPRETER",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GOOGLE_API_KEY",
	} {
		t.Setenv(v, "")
	}
}
