// Package config loads pipeline configuration from ~/.pulseforge/config.yaml
// with environment variables taking precedence. Every timing constant in the
// concurrency protocol is explicit configuration, not a hidden literal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zen-systems/pulseforge/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Config holds the resolved application configuration.
type Config struct {
	// Provider selects the generation adapter: ollama, openai, anthropic,
	// google, or mock.
	Provider string
	// Model is the model identifier passed to the provider.
	Model string
	// OllamaBaseURL is the local generation endpoint.
	OllamaBaseURL string

	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string

	// DataDir is the artifact tree root.
	DataDir string
	// MetricsAddr, when set, serves Prometheus metrics.
	MetricsAddr string
	// Interpreter runs script artifacts in the sandbox.
	Interpreter string

	// GenerateTimeout bounds one external generation call.
	GenerateTimeout time.Duration
	// SandboxTimeout bounds one sandboxed artifact run.
	SandboxTimeout time.Duration
	// PollInterval is the sleep applied on an empty inbound queue.
	PollInterval time.Duration
	// GatePause is the sleep applied while the busy gate is closed.
	GatePause time.Duration
	// GenerateInterval is the generator's fixed production cadence.
	GenerateInterval time.Duration
	// ShutdownGrace bounds the cooperative-shutdown join.
	ShutdownGrace time.Duration

	// RawBlockSize is the size of each raw generated block.
	RawBlockSize int

	Logging logging.Config

	ConfigDir string
}

// FileConfig is the on-disk shape of ~/.pulseforge/config.yaml.
type FileConfig struct {
	Provider      string         `yaml:"provider"`
	Model         string         `yaml:"model"`
	OllamaBaseURL string         `yaml:"ollama_base_url"`
	DataDir       string         `yaml:"data_dir"`
	MetricsAddr   string         `yaml:"metrics_addr"`
	Interpreter   string         `yaml:"interpreter"`
	Timeouts      TimeoutsConfig `yaml:"timeouts"`
	Intervals     IntervalConfig `yaml:"intervals"`
	RawBlockSize  int            `yaml:"raw_block_size"`
	Logging       logging.Config `yaml:"logging"`
	APIKeys       APIKeysConfig  `yaml:"api_keys"`
}

// TimeoutsConfig holds call and shutdown bounds.
type TimeoutsConfig struct {
	Generate      time.Duration `yaml:"generate"`
	Sandbox       time.Duration `yaml:"sandbox"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

// IntervalConfig holds the polling cadences.
type IntervalConfig struct {
	Poll      time.Duration `yaml:"poll"`
	GatePause time.Duration `yaml:"gate_pause"`
	Generate  time.Duration `yaml:"generate"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Anthropic string `yaml:"anthropic"`
	OpenAI    string `yaml:"openai"`
	Google    string `yaml:"google"`
}

// Load reads configuration from the config file and environment.
// Environment variables take precedence over file values; unset fields get
// the documented defaults.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return loadFrom(filepath.Join(configDir, "config.yaml"), configDir)
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	return loadFrom(path, filepath.Dir(path))
}

func loadFrom(path, configDir string) (*Config, error) {
	fileCfg := loadFileConfig(path)

	cfg := &Config{
		Provider:        getEnvOrDefault("PULSEFORGE_PROVIDER", fileCfg.Provider),
		Model:           getEnvOrDefault("PULSEFORGE_MODEL", fileCfg.Model),
		OllamaBaseURL:   getEnvOrDefault("PULSEFORGE_OLLAMA_URL", fileCfg.OllamaBaseURL),
		DataDir:         getEnvOrDefault("PULSEFORGE_DATA_DIR", fileCfg.DataDir),
		MetricsAddr:     getEnvOrDefault("PULSEFORGE_METRICS_ADDR", fileCfg.MetricsAddr),
		Interpreter:     getEnvOrDefault("PULSEFORGE_INTERPRETER", fileCfg.Interpreter),
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", fileCfg.APIKeys.Anthropic),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", fileCfg.APIKeys.OpenAI),
		GoogleAPIKey:    getEnvOrDefault("GOOGLE_API_KEY", fileCfg.APIKeys.Google),

		GenerateTimeout:  fileCfg.Timeouts.Generate,
		SandboxTimeout:   fileCfg.Timeouts.Sandbox,
		ShutdownGrace:    fileCfg.Timeouts.ShutdownGrace,
		PollInterval:     fileCfg.Intervals.Poll,
		GatePause:        fileCfg.Intervals.GatePause,
		GenerateInterval: fileCfg.Intervals.Generate,
		RawBlockSize:     fileCfg.RawBlockSize,
		Logging:          fileCfg.Logging,
		ConfigDir:        configDir,
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = "ollama"
	}
	if c.Model == "" {
		c.Model = "tinydolphin:latest"
	}
	if c.OllamaBaseURL == "" {
		c.OllamaBaseURL = "http://localhost:11434"
	}
	if c.Interpreter == "" {
		c.Interpreter = "python3"
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = 90 * time.Second
	}
	if c.SandboxTimeout <= 0 {
		c.SandboxTimeout = 10 * time.Second
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = 5 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 100 * time.Millisecond
	}
	if c.GatePause <= 0 {
		c.GatePause = 500 * time.Millisecond
	}
	if c.GenerateInterval <= 0 {
		c.GenerateInterval = time.Second
	}
	if c.RawBlockSize <= 0 {
		c.RawBlockSize = 5000
	}
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, cfg)
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".pulseforge")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
