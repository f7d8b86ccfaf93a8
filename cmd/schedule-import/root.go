package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/schedule-ingest/internal/app"
	"github.com/joseph-ayodele/schedule-ingest/internal/common"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "schedule-import",
	Short: "Parse class schedules from local files",
	Long: `schedule-import runs the schedule parser over local files: one file at a
time, a whole directory through the worker queue, or a watched directory.
Results can be saved to the configured class store and exported as XLSX or ICS.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (defaults to $SCHEDULE_CONFIG)")
}

// setup loads configuration and builds the pipeline. Logs go to stderr so
// stdout stays machine readable.
func setup(ctx context.Context, mutate func(*common.Config)) (*app.App, error) {
	cfg, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(cfg)
	}
	logger := common.NewLogger(cfg.Log, os.Stderr)
	return app.New(ctx, cfg, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
