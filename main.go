package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/isdelr/wellness-be/internal/config"
	"github.com/isdelr/wellness-be/internal/logger"
)

// Global flags available to all subcommands.
var configFile string

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates the root command for the wellness backend.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wellness",
		Short: "Global Wellness Chatbot backend",
		Long: `Backend for the Global Wellness Chatbot: user registration, token login,
profiles and the chat endpoint.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig reads the configuration and initializes the global logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log.Debug().Str("driver", cfg.DatabaseDriver).Int("port", cfg.ServerPort).Msg("Configuration loaded")
	return cfg, nil
}
