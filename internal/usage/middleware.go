package usage

import (
	"context"
	"log/slog"
	"time"

	"github.com/RobinCoderZhao/mcp-tools/pkg/mcpserver"
)

// Middleware records every tools/call handled by the server. Failures to
// record are logged and never affect the response.
func Middleware(store *Store, logger *slog.Logger) mcpserver.Middleware {
	return func(next mcpserver.HandlerFunc) mcpserver.HandlerFunc {
		return func(req *mcpserver.JSONRPCRequest) *mcpserver.JSONRPCResponse {
			tool := mcpserver.ToolName(req)
			if tool == "" {
				return next(req)
			}

			start := time.Now()
			resp := next(req)

			call := Call{
				Tool:      tool,
				StartedAt: start,
				Duration:  time.Since(start),
				IsError:   isError(resp),
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := store.Record(ctx, call); err != nil {
				logger.Warn("record tool call", "tool", tool, "error", err)
			}
			return resp
		}
	}
}

func isError(resp *mcpserver.JSONRPCResponse) bool {
	if resp == nil {
		return false
	}
	if resp.Error != nil {
		return true
	}
	result, ok := resp.Result.(*mcpserver.ToolCallResult)
	return ok && result.IsError
}
