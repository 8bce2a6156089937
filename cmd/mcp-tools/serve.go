package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/RobinCoderZhao/mcp-tools/internal/toolkit/config"
	"github.com/RobinCoderZhao/mcp-tools/internal/tools"
	"github.com/RobinCoderZhao/mcp-tools/internal/usage"
	"github.com/RobinCoderZhao/mcp-tools/pkg/mcpserver"
	"github.com/RobinCoderZhao/mcp-tools/pkg/storage"
)

const pruneInterval = time.Hour

func serveCmd() *cobra.Command {
	var transport, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over MCP",
		Long:  "Start an MCP server exposing diff-text and analyze-git-diff over stdio or HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if transport != "" {
				cfg.Server.Transport = transport
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "transport: stdio or http (overrides config)")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcpserver.New(cfg.Server.Name, version)
	server.SetLogger(logger)
	server.Use(mcpserver.RecoveryMiddleware(logger))
	server.Use(mcpserver.LoggingMiddleware(logger))
	server.RegisterTools(tools.All(cfg.Limits)...)
	server.SetHTTPAuthSecret([]byte(cfg.Auth.JWTSecret))
	if cfg.Limits.MaxInputBytes > 0 {
		// Leave room for the JSON envelope around two inputs.
		server.SetMaxBodyBytes(int64(cfg.Limits.MaxInputBytes)*2 + 64<<10)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Usage.Enabled {
		store, closeDB, err := openUsage(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeDB()
		server.Use(usage.Middleware(store, logger))
		if cfg.Usage.Retention > 0 {
			g.Go(func() error {
				pruneLoop(ctx, store, cfg.Usage.Retention, logger)
				return nil
			})
		}
	}

	switch cfg.Server.Transport {
	case "http":
		if len(cfg.Auth.JWTSecret) == 0 {
			logger.Warn("HTTP transport running without authentication")
		}
		g.Go(func() error {
			defer stop()
			return server.RunHTTP(ctx, cfg.Server.Addr)
		})
	default:
		g.Go(func() error {
			errCh := make(chan error, 1)
			go func() { errCh <- server.RunStdio() }()
			select {
			case err := <-errCh:
				stop()
				return err
			case <-ctx.Done():
				return nil
			}
		})
	}

	return g.Wait()
}

func openUsage(ctx context.Context, cfg config.Config) (*usage.Store, func(), error) {
	db, err := storage.Open(storage.Config{Driver: storage.SQLite, DSN: cfg.Usage.DBPath})
	if err != nil {
		return nil, nil, fmt.Errorf("open usage db: %w", err)
	}
	store, err := usage.NewStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { db.Close() }, nil
}

func pruneLoop(ctx context.Context, store *usage.Store, retention time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		removed, err := store.Prune(ctx, time.Now().Add(-retention))
		if err != nil {
			logger.Warn("prune usage", "error", err)
		} else if removed > 0 {
			logger.Info("pruned usage records", "removed", removed)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
