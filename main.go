package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/ultimate-tictactoe-backend/internal"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "ultimate-tictactoe",
	Short:         "Ultimate tic-tac-toe game server",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		conf, err := config.Load(configFile)
		if err != nil {
			return err
		}

		logger := initLogger(conf)

		if err = app.RunApp(cmd.Context(), logger, conf); err != nil {
			return fmt.Errorf("app run failed: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "config.yml", "path to the config file")
}

// main - is the entry point of the application.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch strings.ToLower(conf.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
