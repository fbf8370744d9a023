// server runs the lobbychat broadcast chat service.
//
// Usage:
//
//	server [--config path] [--addr :8080] [--log-level info] [--log-format console]
//
// Settings resolve as defaults < config file < LOBBYCHAT_* env vars < flags.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-lobby/internal/app"
	"github.com/vovakirdan/wirechat-lobby/internal/config"
	"github.com/vovakirdan/wirechat-lobby/internal/log"
)

var (
	flagConfig    string
	flagAddr      string
	flagLogLevel  string
	flagLogFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "lobbychat - real-time broadcast chat over WebSocket",
	Long: `lobbychat accepts WebSocket connections on /chat. Every client picks a
display name with /nick and then talks to everyone else who is connected.

Examples:
  server
  server --addr :9000
  server --config ./config.yaml --log-level debug`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Path to config file (default ./config.yaml)")
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&flagLogFormat, "log-format", "", "Log format (console, json)")
}

func runServer(cmd *cobra.Command, _ []string) error {
	bootLog := log.New("info", log.FormatConsole)

	cfg, path, err := config.Load(bootLog, flagConfig)
	if err != nil {
		return err
	}
	cfg.UpdateFrom(config.Config{
		Addr:      flagAddr,
		LogLevel:  flagLogLevel,
		LogFormat: flagLogFormat,
	})

	logger := log.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info().Str("config", path).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting lobbychat server")
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
