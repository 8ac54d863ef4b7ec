package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"basegraph.app/correlate/common/logger"
	"basegraph.app/correlate/core/config"
	"basegraph.app/correlate/internal/bootstrap"
)

var (
	orgFlag int64
	cliCfg  config.Config
)

var rootCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Correlate - operator CLI for the correlation engine",
	Long: `correlate runs maintenance and analysis against the same stores the API
server uses: migrations, vector backfills, gap reports, impact analysis,
decision extraction, GitLab imports and ad hoc questions.

Every command except migrate needs an organization:
  correlate gaps orphaned --org 42
  CORRELATE_ORG_ID=42 correlate impact file internal/auth/jwt.go`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(config.ServiceTypeCLI)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.SetupWriter(cfg, os.Stderr)
		cliCfg = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&orgFlag, "org", envOrg(), "Organization id (env CORRELATE_ORG_ID)")
}

func envOrg() int64 {
	v, err := strconv.ParseInt(os.Getenv("CORRELATE_ORG_ID"), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// withRuntime opens the stores, runs fn and closes everything again.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *bootstrap.Runtime) error) error {
	if orgFlag <= 0 {
		return fmt.Errorf("--org is required")
	}
	ctx := cmd.Context()
	rt, err := bootstrap.Open(ctx, cliCfg, bootstrap.Options{Produce: true})
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// runJSON adapts fn into a RunE that prints its result as indented JSON.
func runJSON(fn func(ctx context.Context, rt *bootstrap.Runtime, args []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
			out, err := fn(ctx, rt, args)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		})
	}
}
