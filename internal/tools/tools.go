// Package tools assembles the MCP tools served by mcp-tools.
package tools

import (
	"github.com/RobinCoderZhao/mcp-tools/internal/toolkit/config"
	"github.com/RobinCoderZhao/mcp-tools/internal/tools/difftext"
	"github.com/RobinCoderZhao/mcp-tools/internal/tools/gitdiff"
	"github.com/RobinCoderZhao/mcp-tools/pkg/mcpserver"
)

// All returns every tool configured with the given limits.
func All(limits config.LimitsConfig) []mcpserver.ToolHandler {
	return []mcpserver.ToolHandler{
		difftext.New(difftext.Limits{
			MaxInputBytes: limits.MaxInputBytes,
			MaxLines:      limits.MaxLines,
		}),
		gitdiff.New(limits.MaxInputBytes),
	}
}
