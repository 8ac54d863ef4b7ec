package main

import (
	"context"
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"basegraph.app/correlate/internal/bootstrap"
	"basegraph.app/correlate/internal/decision"
)

var (
	listLimit   int
	listOffset  int
	searchLimit int
)

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "Extract and browse design decisions",
	Long: `Decision analysis needs LLM_API_KEY (or OPENAI_API_KEY).

Examples:
  correlate decisions analyze AUTH-101 --org 42
  correlate decisions show AUTH-101 --org 42
  correlate decisions search "session storage" --org 42`,
}

func init() {
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded decisions, newest first",
		Args:  cobra.NoArgs,
		RunE: runDecisions(func(ctx context.Context, a *decision.Analyzer, _ []string) (any, error) {
			return a.List(ctx, orgFlag, listLimit, listOffset)
		}),
	}
	list.Flags().IntVar(&listLimit, "limit", 20, "Page size")
	list.Flags().IntVar(&listOffset, "offset", 0, "Page offset")

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over decision summaries",
		Args:  cobra.ExactArgs(1),
		RunE: runDecisions(func(ctx context.Context, a *decision.Analyzer, args []string) (any, error) {
			return a.Search(ctx, orgFlag, args[0], searchLimit)
		}),
	}
	search.Flags().IntVar(&searchLimit, "limit", 10, "Maximum results")

	decisionsCmd.AddCommand(
		&cobra.Command{
			Use:   "analyze <ticket>",
			Short: "Extract the decision behind a ticket and store it",
			Args:  cobra.ExactArgs(1),
			RunE: runDecisions(func(ctx context.Context, a *decision.Analyzer, args []string) (any, error) {
				return a.Analyze(ctx, orgFlag, args[0])
			}),
		},
		&cobra.Command{
			Use:   "show <ticket|id>",
			Short: "Show the stored decision for a ticket key or decision id",
			Args:  cobra.ExactArgs(1),
			RunE: runDecisions(func(ctx context.Context, a *decision.Analyzer, args []string) (any, error) {
				if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
					return a.Get(ctx, orgFlag, id)
				}
				return a.ByTicket(ctx, orgFlag, args[0])
			}),
		},
		&cobra.Command{
			Use:   "status <ticket>",
			Short: "Whether a ticket is unanalyzed, analyzing or analyzed",
			Args:  cobra.ExactArgs(1),
			RunE: runDecisions(func(ctx context.Context, a *decision.Analyzer, args []string) (any, error) {
				return a.Status(ctx, orgFlag, args[0])
			}),
		},
		list,
		search,
	)
	rootCmd.AddCommand(decisionsCmd)
}

func runDecisions(fn func(ctx context.Context, a *decision.Analyzer, args []string) (any, error)) func(*cobra.Command, []string) error {
	return runJSON(func(ctx context.Context, rt *bootstrap.Runtime, args []string) (any, error) {
		a := rt.Services.Decisions()
		if a == nil {
			return nil, errors.New("decision analysis is disabled: set LLM_API_KEY")
		}
		return fn(ctx, a, args)
	})
}
