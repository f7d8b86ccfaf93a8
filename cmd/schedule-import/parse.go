package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
	"github.com/joseph-ayodele/schedule-ingest/internal/export"
	"github.com/joseph-ayodele/schedule-ingest/internal/ingest"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse one schedule file and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		xlsxOut, _ := cmd.Flags().GetString("xlsx")
		icsOut, _ := cmd.Flags().GetString("ics")
		tz, _ := cmd.Flags().GetString("tz")
		weeks, _ := cmd.Flags().GetInt("weeks")
		save, _ := cmd.Flags().GetBool("save")
		scheduleID, _ := cmd.Flags().GetString("schedule-id")

		ctx := cmd.Context()
		a, err := setup(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		up, err := ingest.ReadUpload(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		var res entity.ParseResult
		if save {
			if scheduleID == "" {
				scheduleID = ingest.ScheduleIDForHash(up.HashHex)
			}
			var saved int
			res, saved, err = a.Processor.ImportSchedule(ctx, scheduleID, up.Input)
			if err == nil {
				a.Logger.Info("cli.saved", "schedule_id", scheduleID, "rows", saved)
			}
		} else {
			res, err = a.Processor.ParseSchedule(ctx, up.Input)
		}
		if err != nil {
			return err
		}

		if xlsxOut != "" {
			data, err := a.Exporter.ClassesXLSX(ctx, res.Classes)
			if err != nil {
				return fmt.Errorf("xlsx export: %w", err)
			}
			if err := os.WriteFile(xlsxOut, data, 0o644); err != nil {
				return err
			}
		}
		if icsOut != "" {
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("invalid --tz: %w", err)
			}
			data, skipped, err := a.Exporter.ClassesICS(ctx, res.Classes, export.ICSOptions{
				Location: loc,
				Weeks:    weeks,
				Name:     filepath.Base(args[0]),
			})
			if err != nil {
				return fmt.Errorf("ics export: %w", err)
			}
			if skipped > 0 {
				a.Logger.Warn("cli.ics.skipped", "classes", skipped)
			}
			if err := os.WriteFile(icsOut, data, 0o644); err != nil {
				return err
			}
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().String("xlsx", "", "also write the classes to this XLSX file")
	parseCmd.Flags().String("ics", "", "also write the classes to this ICS file")
	parseCmd.Flags().String("tz", "UTC", "IANA time zone for ICS events")
	parseCmd.Flags().Int("weeks", export.DefaultWeeks, "number of weeks the ICS events repeat")
	parseCmd.Flags().Bool("save", false, "save the classes to the configured store")
	parseCmd.Flags().String("schedule-id", "", "schedule id to save under (default derived from file content)")
}
