package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/zen-systems/pulseforge/pkg/adapter"
	"github.com/zen-systems/pulseforge/pkg/archive"
	"github.com/zen-systems/pulseforge/pkg/config"
	"github.com/zen-systems/pulseforge/pkg/logging"
	"github.com/zen-systems/pulseforge/pkg/pipeline"
	"go.uber.org/zap"
)

func main() {
	var configFile string
	var duration int

	rootCmd := &cobra.Command{
		Use:   "pulseforge",
		Short: "Continuously cycling content-production pipeline",
		Long: `Pulseforge runs a pipeline of pinned workers that alternates between
	producing runnable script artifacts and narrative content. A generation
	gateway drives a single-concurrency model endpoint behind a busy gate,
	a sandboxed validator grades every artifact, and validation outcomes
	feed back into the next prompt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *config.Config
			var err error
			if configFile != "" {
				cfg, err = config.LoadFile(configFile)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			log, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			if cmd.Flags().Changed("duration") {
				log.Info("using specified duration", zap.Int("seconds", duration))
			} else {
				log.Info("no duration specified, using default", zap.Int("seconds", duration))
			}

			provider, err := createProvider(cfg)
			if err != nil {
				return fmt.Errorf("failed to create generation provider: %w", err)
			}

			store, err := archive.NewStore(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("failed to initialize artifact store: %w", err)
			}

			system, err := pipeline.NewSystem(cfg, provider, store, log)
			if err != nil {
				return err
			}
			return system.Run(time.Duration(duration) * time.Second)
		},
	}

	rootCmd.Flags().IntVar(&duration, "duration", 60, "seconds to run before shutting down")
	rootCmd.Flags().StringVar(&configFile, "config", "", "path to config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// createProvider selects the generation adapter named by the config.
func createProvider(cfg *config.Config) (adapter.Adapter, error) {
	switch cfg.Provider {
	case "ollama":
		return adapter.NewOllamaAdapter(cfg.OllamaBaseURL, cfg.GenerateTimeout), nil
	case "openai":
		return adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
	case "anthropic":
		return adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
	case "google":
		return adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
	case "mock":
		return adapter.NewMockAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
