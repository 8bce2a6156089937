// mcp-tools — developer text tools served over the Model Context Protocol
//
// Usage:
//
//	mcp-tools serve              # serve tools over stdio (or --transport http)
//	mcp-tools diff OLD NEW       # line diff of two files
//	mcp-tools analyze [FILE]     # statistics of a git diff
//	mcp-tools usage              # tool call statistics
//	mcp-tools token              # mint a bearer token for the HTTP transport
//	mcp-tools version            # show version
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/RobinCoderZhao/mcp-tools/internal/toolkit/config"
)

var version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "mcp-tools",
		Short:         "Developer text tools served over MCP",
		Long:          "mcp-tools serves text diffing and git diff analysis as Model Context Protocol tools, and runs them locally from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./"+config.FileName+" or ~/"+config.FileName+")")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(diffCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(usageCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mcp-tools %s\n", version)
		},
	}
}

// loadConfig reads the --config file if given, else the standard locations,
// and installs the configured logger as the slog default.
func loadConfig() (config.Config, *slog.Logger, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}

	level, _ := cfg.LogLevel()
	// stdout carries the stdio transport, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
