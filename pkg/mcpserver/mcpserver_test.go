package mcpserver_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/RobinCoderZhao/mcp-tools/pkg/mcpserver"
)

// EchoTool is a simple tool for testing that echoes back its input.
type EchoTool struct {
	mcpserver.BaseTool
}

func NewEchoTool() *EchoTool {
	return &EchoTool{
		BaseTool: mcpserver.BaseTool{
			ToolName:        "echo",
			ToolDescription: "Echoes back the input message",
			ToolSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"message": map[string]any{
						"type":        "string",
						"description": "Message to echo",
					},
				},
				"required": []string{"message"},
			},
		},
	}
}

func (t *EchoTool) Execute(args map[string]any) (*mcpserver.ToolCallResult, error) {
	msg, err := mcpserver.RequireString(args, "message")
	if err != nil {
		return nil, err
	}
	switch msg {
	case "fail":
		return nil, errors.New("boom")
	case "crash":
		return nil, mcpserver.NewToolError("echo crashed", errors.New("boom"))
	case "panic":
		panic("echo panicked")
	}
	return mcpserver.TextResult("Echo: " + msg), nil
}

func callEcho(s *mcpserver.Server, msg any) *mcpserver.JSONRPCResponse {
	return s.HandleRequest(&mcpserver.JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      10,
		Method:  "tools/call",
		Params: map[string]any{
			"name":      "echo",
			"arguments": map[string]any{"message": msg},
		},
	})
}

func TestServer_Initialize(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")
	s.RegisterTool(NewEchoTool())

	resp := s.HandleRequest(&mcpserver.JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "initialize",
	})

	if resp == nil {
		t.Fatal("expected response")
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	result, ok := resp.Result.(*mcpserver.InitializeResult)
	if !ok {
		t.Fatal("expected InitializeResult")
	}
	if result.ServerInfo.Name != "test-server" {
		t.Fatalf("expected 'test-server', got '%s'", result.ServerInfo.Name)
	}
	if result.SessionID == "" {
		t.Fatal("expected non-empty session ID")
	}
}

func TestServer_ToolsList(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")
	s.RegisterTool(NewEchoTool())

	resp := s.HandleRequest(&mcpserver.JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      2,
		Method:  "tools/list",
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	result, ok := resp.Result.(*mcpserver.ToolsListResult)
	if !ok {
		t.Fatal("expected ToolsListResult")
	}
	if len(result.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(result.Tools))
	}
	if result.Tools[0].Name != "echo" {
		t.Fatalf("expected 'echo', got '%s'", result.Tools[0].Name)
	}
}

func TestServer_ToolCall(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")
	s.RegisterTool(NewEchoTool())

	resp := s.HandleRequest(&mcpserver.JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      3,
		Method:  "tools/call",
		Params: map[string]any{
			"name":      "echo",
			"arguments": map[string]any{"message": "hello world"},
		},
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(*mcpserver.ToolCallResult)
	if !ok {
		t.Fatal("expected ToolCallResult")
	}
	if result.IsError {
		t.Fatal("expected no error")
	}
	if len(result.Content) != 1 || result.Content[0].Text != "Echo: hello world" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestServer_ToolNotFound(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")

	resp := s.HandleRequest(&mcpserver.JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      4,
		Method:  "tools/call",
		Params: map[string]any{
			"name":      "nonexistent",
			"arguments": map[string]any{},
		},
	})

	result, ok := resp.Result.(*mcpserver.ToolCallResult)
	if !ok {
		t.Fatal("expected ToolCallResult")
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
}

func TestServer_MethodNotFound(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")

	resp := s.HandleRequest(&mcpserver.JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      5,
		Method:  "unknown/method",
	})

	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Fatalf("expected code -32601, got %d", resp.Error.Code)
	}
}

func TestServer_Middleware(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")
	s.RegisterTool(NewEchoTool())

	calls := 0
	s.Use(func(next mcpserver.HandlerFunc) mcpserver.HandlerFunc {
		return func(req *mcpserver.JSONRPCRequest) *mcpserver.JSONRPCResponse {
			calls++
			return next(req)
		}
	})

	s.HandleRequest(&mcpserver.JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      6,
		Method:  "tools/list",
	})

	if calls != 1 {
		t.Fatalf("expected middleware to be called once, got %d", calls)
	}
}

func TestServer_Session(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")

	resp := s.HandleRequest(&mcpserver.JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      7,
		Method:  "initialize",
	})

	result := resp.Result.(*mcpserver.InitializeResult)
	if !s.CheckSession(result.SessionID) {
		t.Fatal("expected session to be valid")
	}
	if s.CheckSession("invalid-session") {
		t.Fatal("expected invalid session to fail")
	}
}

func TestServer_ValidationErrorIsInvalidParams(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")
	s.RegisterTool(NewEchoTool())

	resp := callEcho(s, "   ")
	if resp.Error == nil {
		t.Fatal("expected JSON-RPC error")
	}
	if resp.Error.Code != mcpserver.CodeInvalidParams {
		t.Fatalf("expected code %d, got %d", mcpserver.CodeInvalidParams, resp.Error.Code)
	}
	if resp.Error.Message != "message must be a non-empty string" {
		t.Fatalf("unexpected message: %s", resp.Error.Message)
	}
}

func TestServer_ToolErrorIsInternal(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")
	s.RegisterTool(NewEchoTool())

	resp := callEcho(s, "crash")
	if resp.Error == nil || resp.Error.Code != mcpserver.CodeInternalError {
		t.Fatalf("expected internal error, got %+v", resp.Error)
	}
}

func TestServer_PlainErrorIsToolResult(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")
	s.RegisterTool(NewEchoTool())

	resp := callEcho(s, "fail")
	if resp.Error != nil {
		t.Fatalf("unexpected JSON-RPC error: %v", resp.Error)
	}
	result := resp.Result.(*mcpserver.ToolCallResult)
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if result.Content[0].Text != "Error: boom" {
		t.Fatalf("unexpected text: %s", result.Content[0].Text)
	}
}

func TestServer_RecoveryMiddleware(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")
	s.RegisterTool(NewEchoTool())
	s.Use(mcpserver.RecoveryMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))

	resp := callEcho(s, "panic")
	if resp.Error == nil || resp.Error.Code != mcpserver.CodeInternalError {
		t.Fatalf("expected internal error, got %+v", resp.Error)
	}
}

func TestServer_ToolsListSorted(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")
	for _, name := range []string{"zeta", "alpha", "mid"} {
		tool := NewEchoTool()
		tool.ToolName = name
		s.RegisterTool(tool)
	}

	resp := s.HandleRequest(&mcpserver.JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	result := resp.Result.(*mcpserver.ToolsListResult)
	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	if strings.Join(names, ",") != "alpha,mid,zeta" {
		t.Fatalf("unexpected order: %v", names)
	}
}

func TestServer_Serve(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")
	s.RegisterTool(NewEchoTool())

	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"echo","arguments":{"message":"hi"}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	}, "\n")
	var out bytes.Buffer
	if err := s.Serve(strings.NewReader(in), &out); err != nil {
		t.Fatal(err)
	}

	dec := json.NewDecoder(&out)
	var responses []map[string]any
	for dec.More() {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			t.Fatal(err)
		}
		responses = append(responses, m)
	}
	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}
	result := responses[1]["result"].(map[string]any)
	text := result["content"].([]any)[0].(map[string]any)["text"]
	if text != "Echo: hi" {
		t.Fatalf("unexpected text: %v", text)
	}
}

func TestServer_ServeMalformedLine(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")

	in := "{bad json\n\n[1,2]\n" + `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"
	var out bytes.Buffer
	if err := s.Serve(strings.NewReader(in), &out); err != nil {
		t.Fatalf("malformed line must not stop the server: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 responses, got %d: %q", len(lines), out.String())
	}
	want := []string{
		`{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`,
		`{"jsonrpc":"2.0","id":null,"error":{"code":-32600,"message":"Invalid request"}}`,
		`{"jsonrpc":"2.0","id":1,"result":{}}`,
	}
	for i, w := range want {
		if lines[i] != w {
			t.Fatalf("response %d: expected %s, got %s", i, w, lines[i])
		}
	}
}

func TestSuccessResult_NoHTMLEscaping(t *testing.T) {
	res := mcpserver.SuccessResult(map[string]any{"diff": "+<b>a && b</b>"})

	want := "{\n  \"diff\": \"+<b>a && b</b>\"\n}"
	if res.Content[0].Text != want {
		t.Fatalf("expected %q, got %q", want, res.Content[0].Text)
	}
	if res.IsError {
		t.Fatal("expected success result")
	}
}

func TestServer_ToolsListMetadata(t *testing.T) {
	s := mcpserver.New("test-server", "1.0.0")
	tool := NewEchoTool()
	tool.Category = "text"
	tool.Tags = []string{"echo"}
	s.RegisterTool(tool)

	resp := s.HandleRequest(&mcpserver.JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	data, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"category":"text","tags":["echo"]`) {
		t.Fatalf("expected metadata in tools/list, got %s", data)
	}
}
