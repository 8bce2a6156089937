// Package difftext implements the diff-text MCP tool.
package difftext

import (
	"strings"

	"github.com/RobinCoderZhao/mcp-tools/pkg/differ"
	"github.com/RobinCoderZhao/mcp-tools/pkg/mcpserver"
)

// Name is the registered tool name.
const Name = "diff-text"

const (
	defaultContextLines = 3
	maxContextLines     = 20
)

// Limits bounds the inputs accepted by the tool. Zero disables a limit.
type Limits struct {
	MaxInputBytes int
	MaxLines      int
}

// Tool compares two texts line by line.
type Tool struct {
	mcpserver.BaseTool
	limits Limits
}

// New creates the diff-text tool.
func New(limits Limits) *Tool {
	return &Tool{
		BaseTool: mcpserver.BaseTool{
			ToolName:        Name,
			ToolDescription: "Compare two texts line-by-line and produce a unified diff output.",
			ToolSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"original": map[string]any{
						"type":        "string",
						"description": "Original text",
					},
					"modified": map[string]any{
						"type":        "string",
						"description": "Modified text",
					},
					"contextLines": map[string]any{
						"type":        "number",
						"minimum":     0,
						"maximum":     maxContextLines,
						"default":     defaultContextLines,
						"description": "Number of context lines around changes",
					},
				},
				"required": []string{"original", "modified"},
			},
			Category: "text",
			Tags:     []string{"diff", "lcs"},
		},
		limits: limits,
	}
}

// Execute runs the diff. contextLines is validated but the full diff is
// always returned.
func (t *Tool) Execute(args map[string]any) (*mcpserver.ToolCallResult, error) {
	original, err := mcpserver.RequireString(args, "original")
	if err != nil {
		return nil, err
	}
	modified, err := mcpserver.RequireString(args, "modified")
	if err != nil {
		return nil, err
	}
	if _, err := mcpserver.IntInRange(args, "contextLines", 0, maxContextLines, defaultContextLines); err != nil {
		return nil, err
	}
	if err := t.checkSize("original", original); err != nil {
		return nil, err
	}
	if err := t.checkSize("modified", modified); err != nil {
		return nil, err
	}

	return mcpserver.SuccessResult(differ.TextDiff(original, modified)), nil
}

// checkSize keeps the O(m·n) table of the matcher within bounds.
func (t *Tool) checkSize(name, text string) error {
	if t.limits.MaxInputBytes > 0 && len(text) > t.limits.MaxInputBytes {
		return mcpserver.Invalidf("%s exceeds %d bytes", name, t.limits.MaxInputBytes)
	}
	if t.limits.MaxLines > 0 && strings.Count(text, "\n")+1 > t.limits.MaxLines {
		return mcpserver.Invalidf("%s exceeds %d lines", name, t.limits.MaxLines)
	}
	return nil
}
