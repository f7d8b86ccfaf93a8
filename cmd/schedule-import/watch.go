package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/schedule-ingest/internal/async"
	"github.com/joseph-ayodele/schedule-ingest/internal/ingest"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>...",
	Short: "Parse schedule files as they appear under one or more directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		save, _ := cmd.Flags().GetBool("save")
		initial, _ := cmd.Flags().GetBool("initial-scan")
		skipHidden, _ := cmd.Flags().GetBool("skip-hidden")
		debounce, _ := cmd.Flags().GetDuration("debounce")

		ctx := cmd.Context()
		a, err := setup(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		im := ingest.NewImporter(a.Processor, save, a.Logger)
		q := newQueue(im, a)
		defer func() {
			drainCtx, cancel := context.WithTimeout(context.Background(), a.Config.Batch.JobTimeout)
			defer cancel()
			q.Shutdown(drainCtx)
			for _, r := range im.DrainResults() {
				_ = printJSON(cmd.OutOrStdout(), r)
			}
		}()

		paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       args,
			InitialScan: initial,
			SkipHidden:  skipHidden,
			Debounce:    debounce,
			Logger:      a.Logger,
		})
		if err != nil {
			return err
		}

		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case p, ok := <-paths:
				if !ok {
					return nil
				}
				job := async.Job{Path: p, SubmittedAt: time.Now()}
				if err := q.Enqueue(ctx, job); err != nil {
					if errors.Is(err, async.ErrQueueClosed) || ctx.Err() != nil {
						return nil
					}
					return err
				}
			case err, ok := <-errs:
				if ok && err != nil {
					a.Logger.Error("watch.error", "error", err)
				}
			case <-tick.C:
				for _, r := range im.DrainResults() {
					if err := printJSON(cmd.OutOrStdout(), r); err != nil {
						return err
					}
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Bool("save", false, "save parsed classes to the configured store")
	watchCmd.Flags().Bool("initial-scan", true, "parse files already present at start")
	watchCmd.Flags().Bool("skip-hidden", true, "ignore dot files and directories")
	watchCmd.Flags().Duration("debounce", 500*time.Millisecond, "wait this long after the last change to a file")
}
