package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/GHIG-Portal/webinar-registration/api"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "webinar-registration",
	Short: "Webinar registration service",
	Long: `Serves the webinar registration API and carries the admin tooling that
works against the same table.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, exportCmd, grantRoleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(env api.Environment) *slog.Logger {
	if env == api.PROD {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// setup loads config and the logger every command needs.
func setup() (Config, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return Config{}, nil, fmt.Errorf("config: %w", err)
	}

	return cfg, newLogger(cfg.Env()), nil
}
