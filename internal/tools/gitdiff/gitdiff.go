// Package gitdiff implements the analyze-git-diff MCP tool.
package gitdiff

import (
	"github.com/RobinCoderZhao/mcp-tools/pkg/gitdiff"
	"github.com/RobinCoderZhao/mcp-tools/pkg/mcpserver"
)

// Name is the registered tool name.
const Name = "analyze-git-diff"

// Tool analyzes git diff output.
type Tool struct {
	mcpserver.BaseTool
	maxInputBytes int
}

// New creates the analyze-git-diff tool. maxInputBytes of zero disables the size check.
func New(maxInputBytes int) *Tool {
	return &Tool{
		BaseTool: mcpserver.BaseTool{
			ToolName:        Name,
			ToolDescription: "Analyze a git diff to extract statistics: files changed, additions, deletions, file types, and more.",
			ToolSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"diff": map[string]any{
						"type":        "string",
						"description": "Git diff output to analyze",
					},
				},
				"required": []string{"diff"},
			},
			Category: "git",
			Tags:     []string{"diff", "git", "stats"},
		},
		maxInputBytes: maxInputBytes,
	}
}

func (t *Tool) Execute(args map[string]any) (*mcpserver.ToolCallResult, error) {
	diff, err := mcpserver.RequireString(args, "diff")
	if err != nil {
		return nil, err
	}
	if t.maxInputBytes > 0 && len(diff) > t.maxInputBytes {
		return nil, mcpserver.Invalidf("diff exceeds %d bytes", t.maxInputBytes)
	}
	return mcpserver.SuccessResult(gitdiff.Analyze(diff)), nil
}
