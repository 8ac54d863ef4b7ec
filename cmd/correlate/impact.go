package main

import (
	"context"

	"github.com/spf13/cobra"

	"basegraph.app/correlate/internal/bootstrap"
	"basegraph.app/correlate/internal/model"
)

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Analyze the impact of changing a file, ticket or commit",
	Long: `Examples:
  correlate impact file internal/auth/jwt.go --org 42
  correlate impact ticket AUTH-101 --org 42
  correlate impact commit a1b2c3d --org 42
  correlate impact reviewers internal/auth/jwt.go go.mod --org 42`,
}

var relatedDepth int

var relatedCmd = &cobra.Command{
	Use:   "related <kind> <key>",
	Short: "Entities linked to one entity within two hops",
	Long: `Examples:
  correlate related ticket AUTH-101 --org 42
  correlate related code_file acme/api:internal/auth/jwt.go --depth 2 --org 42`,
	Args: cobra.ExactArgs(2),
	RunE: runJSON(func(ctx context.Context, rt *bootstrap.Runtime, args []string) (any, error) {
		return rt.Services.Graph().Related(ctx, orgFlag, model.EntityKind(args[0]), args[1], relatedDepth)
	}),
}

func init() {
	relatedCmd.Flags().IntVar(&relatedDepth, "depth", 1, "Hops to follow (1 or 2)")
	rootCmd.AddCommand(relatedCmd)

	impactCmd.AddCommand(
		&cobra.Command{
			Use:   "file <path>",
			Short: "Developers, co-changed files and recent history of a path",
			Args:  cobra.ExactArgs(1),
			RunE: runJSON(func(ctx context.Context, rt *bootstrap.Runtime, args []string) (any, error) {
				return rt.Services.Impact().File(ctx, orgFlag, args[0])
			}),
		},
		&cobra.Command{
			Use:   "ticket <key>",
			Short: "Blast radius, dependents and similar tickets",
			Args:  cobra.ExactArgs(1),
			RunE: runJSON(func(ctx context.Context, rt *bootstrap.Runtime, args []string) (any, error) {
				return rt.Services.Impact().Ticket(ctx, orgFlag, args[0])
			}),
		},
		&cobra.Command{
			Use:   "commit <sha>",
			Short: "Risk score for a commit (full sha or 7+ character prefix)",
			Args:  cobra.ExactArgs(1),
			RunE: runJSON(func(ctx context.Context, rt *bootstrap.Runtime, args []string) (any, error) {
				return rt.Services.Impact().Commit(ctx, orgFlag, args[0])
			}),
		},
		&cobra.Command{
			Use:   "reviewers <path>...",
			Short: "Suggest reviewers for a set of changed paths",
			Args:  cobra.RangeArgs(1, 100),
			RunE: runJSON(func(ctx context.Context, rt *bootstrap.Runtime, args []string) (any, error) {
				return rt.Services.Impact().SuggestReviewers(ctx, orgFlag, args)
			}),
		},
	)
	rootCmd.AddCommand(impactCmd)
}
