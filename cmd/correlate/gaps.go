package main

import (
	"context"

	"github.com/spf13/cobra"

	"basegraph.app/correlate/internal/bootstrap"
)

var gapDays int

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Report coverage gaps between tickets, commits and decisions",
	Long: `Detect work that fell through the cracks.

Examples:
  correlate gaps --org 42                  # all reports
  correlate gaps orphaned --org 42 --days 30
  correlate gaps stale --org 42 --days 14`,
	Args: cobra.NoArgs,
	RunE: runJSON(func(ctx context.Context, rt *bootstrap.Runtime, _ []string) (any, error) {
		return rt.Services.Gaps().Comprehensive(ctx, orgFlag)
	}),
}

func init() {
	orphaned := &cobra.Command{
		Use:   "orphaned",
		Short: "Tickets with no commit or pull request referencing them",
		Args:  cobra.NoArgs,
		RunE: runJSON(func(ctx context.Context, rt *bootstrap.Runtime, _ []string) (any, error) {
			return rt.Services.Gaps().OrphanedTickets(ctx, orgFlag, gapDays)
		}),
	}
	orphaned.Flags().IntVar(&gapDays, "days", 0, "Lookback window in days (default from ORPHAN_LOOKBACK_DAYS)")

	stale := &cobra.Command{
		Use:   "stale",
		Short: "In-progress tickets without recent updates",
		Args:  cobra.NoArgs,
		RunE: runJSON(func(ctx context.Context, rt *bootstrap.Runtime, _ []string) (any, error) {
			return rt.Services.Gaps().StaleWork(ctx, orgFlag, gapDays)
		}),
	}
	stale.Flags().IntVar(&gapDays, "days", 0, "Days without update (default from STALE_AFTER_DAYS)")

	gapsCmd.AddCommand(
		orphaned,
		&cobra.Command{
			Use:   "undocumented",
			Short: "Commits that reference no ticket",
			Args:  cobra.NoArgs,
			RunE: runJSON(func(ctx context.Context, rt *bootstrap.Runtime, _ []string) (any, error) {
				return rt.Services.Gaps().Undocumented(ctx, orgFlag)
			}),
		},
		&cobra.Command{
			Use:   "missing-decisions",
			Short: "Implemented stories and epics without a recorded decision",
			Args:  cobra.NoArgs,
			RunE: runJSON(func(ctx context.Context, rt *bootstrap.Runtime, _ []string) (any, error) {
				return rt.Services.Gaps().MissingDecisions(ctx, orgFlag)
			}),
		},
		stale,
	)
	rootCmd.AddCommand(gapsCmd)
}
