package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ent0n29/realtybot/internal/config"
	"github.com/ent0n29/realtybot/internal/logging"
)

var (
	// Global flags
	logLevel string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "realtybot",
	Short: "Real-estate marketplace chat assistant",
	Long: `realtybot answers visitors of a property marketplace: it searches listings,
explains buying and renting, and captures viewing and agent requests as leads.

Configuration is read from the environment (APP_*, DATABASE_URL, LISTING_*,
AI_FALLBACK_*, OPENAI_*, TTS_*).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		// The terminal chat shares stdout with the conversation, so its
		// logs go to stderr in console form and only warnings show.
		console := cmd.Name() == "chat"
		level := cfg.LogLevel
		if console && !cmd.Flags().Changed("log-level") {
			level = "warn"
		}
		logger, err = logging.New(level, console)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: serve the widget API
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides LOG_LEVEL)")
	rootCmd.AddCommand(serveCmd, chatCmd, leadsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
