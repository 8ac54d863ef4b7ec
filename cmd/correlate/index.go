package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"basegraph.app/correlate/internal/bootstrap"
	"basegraph.app/correlate/internal/indexer"
	"basegraph.app/correlate/internal/model"
)

var (
	backfillKinds      []string
	backfillOnlyFailed bool
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Rebuild vector entries from the entity store",
	Long: `Re-embed stored entities and upsert them into the vector index. Use this after
changing the embedding model or to repair writes that failed during ingestion.

Examples:
  correlate backfill --org 42
  correlate backfill --org 42 --kind ticket --kind commit
  correlate backfill --org 42 --only-failed`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		kinds, err := parseKinds(backfillKinds)
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
			report, err := rt.Services.Indexer().Backfill(ctx, orgFlag, indexer.BackfillOptions{
				Kinds:      kinds,
				OnlyFailed: backfillOnlyFailed,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		})
	},
}

var indexStatusCmd = &cobra.Command{
	Use:   "index-status",
	Short: "Show per-kind counts of indexed, pending and failed entities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
			counts, err := rt.Services.Indexer().Status(ctx, orgFlag)
			if err != nil {
				return err
			}
			return printJSON(cmd, counts)
		})
	},
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Drop the organization's cached search results",
	Args:  cobra.NoArgs,
	RunE: runJSON(func(ctx context.Context, rt *bootstrap.Runtime, _ []string) (any, error) {
		n, err := rt.Services.Retriever().ClearCache(ctx, orgFlag)
		if err != nil {
			return nil, err
		}
		return map[string]int{"cleared": n}, nil
	}),
}

func init() {
	backfillCmd.Flags().StringSliceVar(&backfillKinds, "kind", nil, "Entity kinds to rebuild (default: all)")
	backfillCmd.Flags().BoolVar(&backfillOnlyFailed, "only-failed", false, "Only replay entities whose last vector write failed")

	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(clearCacheCmd)
}

func parseKinds(raw []string) ([]model.EntityKind, error) {
	kinds := make([]model.EntityKind, 0, len(raw))
	for _, r := range raw {
		k := model.EntityKind(r)
		if !k.Valid() {
			return nil, fmt.Errorf("unknown kind %q (want one of %v)", r, model.AllKinds)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
