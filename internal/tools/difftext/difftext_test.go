package difftext

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobinCoderZhao/mcp-tools/pkg/differ"
	"github.com/RobinCoderZhao/mcp-tools/pkg/mcpserver"
)

func decode(t *testing.T, result *mcpserver.ToolCallResult) differ.Result {
	t.Helper()
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	var out differ.Result
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &out))
	return out
}

func TestExecute(t *testing.T) {
	tool := New(Limits{})

	result, err := tool.Execute(map[string]any{
		"original": "a\nb\nc",
		"modified": "a\nx\nc",
	})
	require.NoError(t, err)

	out := decode(t, result)
	assert.Equal(t, " a\n+x\n-b\n c", out.Diff)
	assert.Equal(t, differ.Summary{Added: 1, Removed: 1, Unchanged: 2, TotalOriginal: 3, TotalModified: 3}, out.Summary)
	assert.True(t, strings.HasPrefix(result.Content[0].Text, "{\n  \"summary\""))
}

func TestExecute_MarkupKeptVerbatim(t *testing.T) {
	tool := New(Limits{})

	result, err := tool.Execute(map[string]any{
		"original": "<p>a & b</p>",
		"modified": "<p>a && b</p>",
	})
	require.NoError(t, err)

	assert.Contains(t, result.Content[0].Text, `"diff": "+<p>a && b</p>\n-<p>a & b</p>"`)
	assert.NotContains(t, result.Content[0].Text, `\u003c`)
}

func TestExecute_ContextLinesIgnored(t *testing.T) {
	tool := New(Limits{})
	args := map[string]any{
		"original": "1\n2\n3\n4\n5\n6\n7\n8\n9\n10",
		"modified": "1\n2\n3\n4\n5\nfive\n7\n8\n9\n10",
	}

	full, err := tool.Execute(args)
	require.NoError(t, err)

	args["contextLines"] = 0.0
	narrow, err := tool.Execute(args)
	require.NoError(t, err)

	assert.Equal(t, full.Content[0].Text, narrow.Content[0].Text)
	assert.Equal(t, 11, strings.Count(decode(t, narrow).Diff, "\n")+1)
}

func TestExecute_Validation(t *testing.T) {
	tool := New(Limits{MaxInputBytes: 16, MaxLines: 3})

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing original", map[string]any{"modified": "x"}, "original must be a non-empty string"},
		{"blank modified", map[string]any{"original": "x", "modified": "  "}, "modified must be a non-empty string"},
		{"context too large", map[string]any{"original": "x", "modified": "y", "contextLines": 21.0}, "contextLines must be between 0 and 20"},
		{"context negative", map[string]any{"original": "x", "modified": "y", "contextLines": -1.0}, "contextLines must be between 0 and 20"},
		{"too many bytes", map[string]any{"original": strings.Repeat("x", 17), "modified": "y"}, "original exceeds 16 bytes"},
		{"too many lines", map[string]any{"original": "x", "modified": "a\nb\nc\nd"}, "modified exceeds 3 lines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tool.Execute(tt.args)
			var verr *mcpserver.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.want, verr.Message)
		})
	}
}

func TestExecute_ThroughServer(t *testing.T) {
	s := mcpserver.New("test", "0.0.0")
	s.RegisterTool(New(Limits{}))

	resp := s.HandleRequest(&mcpserver.JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params: map[string]any{
			"name": Name,
			"arguments": map[string]any{
				"original":     "one\ntwo",
				"modified":     "one\ntwo\nthree",
				"contextLines": 3,
			},
		},
	})
	require.Nil(t, resp.Error)

	out := decode(t, resp.Result.(*mcpserver.ToolCallResult))
	assert.Equal(t, " one\n two\n+three", out.Diff)
	assert.Equal(t, differ.Summary{Added: 1, Unchanged: 2, TotalOriginal: 2, TotalModified: 3}, out.Summary)
}
