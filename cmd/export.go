package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/GHIG-Portal/webinar-registration/dashboard"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every registration to a CSV file",
	Long: `Write every registration to a CSV file, in the same format as the
dashboard download.

Examples:
  # Write members_export_<date>.csv in the current directory
  webinar-registration export

  # Write to stdout
  webinar-registration export --out -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return err
		}

		db, err := newDB(ctx, awsCfg, cfg, logger)
		if err != nil {
			return err
		}

		records, err := db.GetAllRegistrations(ctx)
		if err != nil {
			return err
		}

		if exportOut == "-" {
			return dashboard.WriteCSV(cmd.OutOrStdout(), records)
		}

		path := exportOut
		if path == "" {
			path = dashboard.ExportFileName(time.Now())
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()

		err = dashboard.WriteCSV(f, records)
		if err != nil {
			return err
		}

		logger.Info("exported registrations", slog.Int("count", len(records)), slog.String("file", path))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file, - for stdout (default: members_export_<date>.csv)")
}
