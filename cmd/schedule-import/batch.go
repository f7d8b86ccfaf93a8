package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/schedule-ingest/internal/app"
	"github.com/joseph-ayodele/schedule-ingest/internal/async"
	"github.com/joseph-ayodele/schedule-ingest/internal/common"
	"github.com/joseph-ayodele/schedule-ingest/internal/ingest"
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Parse every schedule file under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workers, _ := cmd.Flags().GetInt("workers")
		save, _ := cmd.Flags().GetBool("save")
		skipHidden, _ := cmd.Flags().GetBool("skip-hidden")
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		a, err := setup(ctx, func(cfg *common.Config) {
			if workers > 0 {
				cfg.Batch.Workers = workers
			}
		})
		if err != nil {
			return err
		}
		defer a.Close()

		im := ingest.NewImporter(a.Processor, save, a.Logger)
		q := newQueue(im, a)
		results, stats, err := im.ImportDirectory(ctx, q, args[0], skipHidden)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return printJSON(out, map[string]any{"stats": stats, "files": results})
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STATUS\tCLASSES\tSCHEDULE\tPATH\tERROR")
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", r.Status, r.Classes, r.ScheduleID, r.Path, r.Err)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nscanned=%d matched=%d succeeded=%d degraded=%d deduplicated=%d failed=%d\n",
			stats.Scanned, stats.Matched, stats.Succeeded, stats.Degraded, stats.Deduplicated, stats.Failed)
		if stats.Failed > 0 {
			return fmt.Errorf("%d file(s) failed", stats.Failed)
		}
		return nil
	},
}

func newQueue(proc async.JobProcessor, a *app.App) *async.ProcessorQueue {
	b := a.Config.Batch
	return async.NewProcessorQueue(proc, a.Logger,
		async.WithWorkers(b.Workers),
		async.WithQueueSize(b.QueueSize),
		async.WithProcessTimeout(b.JobTimeout),
	)
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Int("workers", 0, "number of parallel workers (default from config)")
	batchCmd.Flags().Bool("save", false, "save parsed classes to the configured store")
	batchCmd.Flags().Bool("skip-hidden", true, "skip dot files and directories")
	batchCmd.Flags().Bool("json", false, "print results as JSON")
}
