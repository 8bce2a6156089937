package mcpserver

import (
	"log/slog"
	"time"
)

// LoggingMiddleware logs all incoming requests and their results.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(req *JSONRPCRequest) *JSONRPCResponse {
			start := time.Now()
			attrs := []any{"method", req.Method, "id", req.ID}
			if name := ToolName(req); name != "" {
				attrs = append(attrs, "tool", name)
			}
			logger.Info("mcp request", attrs...)

			resp := next(req)
			if resp != nil && resp.Error != nil {
				logger.Error("mcp error", "method", req.Method, "code", resp.Error.Code, "message", resp.Error.Message)
			} else {
				logger.Debug("mcp response", "method", req.Method, "elapsed", time.Since(start))
			}
			return resp
		}
	}
}

// RecoveryMiddleware catches panics and returns a JSON-RPC error.
func RecoveryMiddleware(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(req *JSONRPCRequest) (resp *JSONRPCResponse) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic in MCP handler", "method", req.Method, "panic", r)
					resp = &JSONRPCResponse{
						JSONRPC: "2.0",
						ID:      req.ID,
						Error: &RPCError{
							Code:    CodeInternalError,
							Message: "Internal error",
						},
					}
				}
			}()
			return next(req)
		}
	}
}

// ToolName returns the tool targeted by a tools/call request, or "".
func ToolName(req *JSONRPCRequest) string {
	if req.Method != "tools/call" {
		return ""
	}
	switch p := req.Params.(type) {
	case map[string]any:
		name, _ := p["name"].(string)
		return name
	case *ToolCallParams:
		return p.Name
	case ToolCallParams:
		return p.Name
	}
	return ""
}
