package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/RobinCoderZhao/mcp-tools/pkg/mcpserver"
)

func usageCmd() *cobra.Command {
	var (
		outputJSON bool
		prune      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show tool call statistics",
		Long:  "Print per-tool call counts, error counts and average durations from the usage database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			store, closeDB, err := openUsage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			if prune > 0 {
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-prune))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "🧹 Pruned %d records\n", removed)
			}

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if outputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			if len(stats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tool calls recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TOOL\tCALLS\tERRORS\tAVG\tLAST CALLED")
			for _, st := range stats {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", st.Tool, st.Calls, st.Errors,
					st.AvgDuration.Round(time.Microsecond), st.LastCalled.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "output JSON")
	cmd.Flags().DurationVar(&prune, "prune", 0, "delete records older than this before reporting")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP transport",
		Long:  "Sign an HS256 token with auth.jwt_secret (or MCP_TOOLS_JWT_SECRET) for clients of `serve --transport http`.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is not set; set MCP_TOOLS_JWT_SECRET or configure it in %s", configPathHint())
			}
			token, err := mcpserver.IssueToken([]byte(cfg.Auth.JWTSecret), subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "mcp-client", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 7*24*time.Hour, "token lifetime")
	return cmd
}

func configPathHint() string {
	if configPath != "" {
		return configPath
	}
	return ".mcp-tools.yaml"
}
