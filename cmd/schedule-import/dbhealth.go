package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var dbhealthCmd = &cobra.Command{
	Use:   "dbhealth",
	Short: "Check that the configured class store is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")

		a, err := setup(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.Sink == nil {
			return errors.New("no database configured (set DB_DRIVER and DB_URL)")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		start := time.Now()
		if err := a.Sink.Ping(ctx); err != nil {
			return fmt.Errorf("db health failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "DB OK (%s, %dms)\n", a.Config.Database.Driver, time.Since(start).Milliseconds())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbhealthCmd)
	dbhealthCmd.Flags().Duration("timeout", 3*time.Second, "ping timeout")
}
