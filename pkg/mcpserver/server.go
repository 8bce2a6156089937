// Package mcpserver provides a reusable MCP (Model Context Protocol) server framework.
//
// It supports stdio and HTTP/SSE transports, JSON-RPC 2.0, session management,
// middleware chains, and a clean tool registration interface.
//
// Quick Start:
//
//	server := mcpserver.New("my-server", "1.0.0")
//	server.RegisterTool(&MyTool{})
//	server.RunStdio() // or server.RunHTTP(ctx, ":8080")
package mcpserver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Server is the core MCP server that manages tools and handles JSON-RPC requests.
type Server struct {
	name            string
	version         string
	protocolVersion string
	tools           map[string]ToolHandler
	sessions        map[string]time.Time
	sessionMu       sync.RWMutex
	middleware      []Middleware
	logger          *slog.Logger

	authSecret   []byte
	maxBodyBytes int64
}

// New creates a new MCP server with the given name and version.
func New(name, version string) *Server {
	return &Server{
		name:            name,
		version:         version,
		protocolVersion: "2024-11-05",
		tools:           make(map[string]ToolHandler),
		sessions:        make(map[string]time.Time),
		logger:          slog.Default(),
		maxBodyBytes:    4 << 20,
	}
}

// SetLogger replaces the server's logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// RegisterTool adds a tool to the server.
func (s *Server) RegisterTool(tool ToolHandler) {
	s.tools[tool.Name()] = tool
	s.logger.Debug("registered tool", "name", tool.Name())
}

// RegisterTools adds multiple tools to the server.
func (s *Server) RegisterTools(tools ...ToolHandler) {
	for _, tool := range tools {
		s.RegisterTool(tool)
	}
}

// Use adds middleware to the server's processing chain.
func (s *Server) Use(mw Middleware) {
	s.middleware = append(s.middleware, mw)
}

// RunStdio starts the server using stdin/stdout (stdio transport).
func (s *Server) RunStdio() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// maxLineBytes bounds a single stdio message.
const maxLineBytes = 64 << 20

// Serve reads newline-delimited JSON-RPC requests from r and writes the
// responses to w until r is exhausted. A malformed line is answered with a
// parse error and reading continues.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	s.logger.Info("starting MCP server (stdio)", "name", s.name, "version", s.version, "tools", len(s.tools))

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp := s.handleLine(line)
		if resp == nil {
			continue // Notification, no response needed
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	return nil
}

func (s *Server) handleLine(line []byte) *JSONRPCResponse {
	if !json.Valid(line) {
		s.logger.Warn("malformed request", "bytes", len(line))
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			Error:   &RPCError{Code: CodeParseError, Message: "Parse error"},
		}
	}
	var req JSONRPCRequest
	if err := json.Unmarshal(line, &req); err != nil || req.Method == "" {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: CodeInvalidRequest, Message: "Invalid request"},
		}
	}
	return s.HandleRequest(&req)
}

// HandleRequest processes a single JSON-RPC request and returns a response.
func (s *Server) HandleRequest(req *JSONRPCRequest) *JSONRPCResponse {
	// Apply middleware chain
	handler := s.coreHandler
	for i := len(s.middleware) - 1; i >= 0; i-- {
		handler = s.middleware[i](handler)
	}
	return handler(req)
}

func (s *Server) coreHandler(req *JSONRPCRequest) *JSONRPCResponse {
	resp := &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
	}

	switch req.Method {
	case "initialize":
		resp.Result = s.handleInitialize(req.Params)
	case "notifications/initialized":
		s.logger.Info("client initialized")
		return nil
	case "ping":
		resp.Result = struct{}{}
	case "tools/list":
		resp.Result = s.handleToolsList()
	case "tools/call":
		result, rpcErr := s.handleToolCall(req.Params)
		if rpcErr != nil {
			resp.Error = rpcErr
		} else {
			resp.Result = result
		}
	default:
		resp.Error = &RPCError{
			Code:    CodeMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
	}

	return resp
}

func (s *Server) handleInitialize(params any) *InitializeResult {
	return &InitializeResult{
		ProtocolVersion: s.protocolVersion,
		Capabilities: ServerCapabilities{
			Tools: ToolsCapability{ListChanged: false},
		},
		ServerInfo: ServerInfo{
			Name:    s.name,
			Version: s.version,
		},
		SessionID: s.createSession(),
	}
}

func (s *Server) handleToolsList() *ToolsListResult {
	tools := make([]ToolDef, 0, len(s.tools))
	for _, h := range s.tools {
		def := ToolDef{
			Name:        h.Name(),
			Description: h.Description(),
			InputSchema: h.InputSchema(),
		}
		if m, ok := h.(interface{ Meta() ToolMeta }); ok {
			meta := m.Meta()
			def.Category, def.Tags = meta.Category, meta.Tags
		}
		tools = append(tools, def)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return &ToolsListResult{Tools: tools}
}

func (s *Server) handleToolCall(params any) (*ToolCallResult, *RPCError) {
	callParams, err := decodeCallParams(params)
	if err != nil {
		return nil, &RPCError{Code: CodeInvalidParams, Message: err.Error()}
	}

	tool, ok := s.tools[callParams.Name]
	if !ok {
		return ErrorResult(fmt.Errorf("tool not found: %s", callParams.Name)), nil
	}
	if callParams.Arguments == nil {
		callParams.Arguments = map[string]any{}
	}

	result, err := tool.Execute(callParams.Arguments)
	if err != nil {
		if rpcErr := rpcErrorFor(err); rpcErr != nil {
			s.logger.Warn("tool call rejected", "tool", callParams.Name, "code", rpcErr.Code, "error", err)
			return nil, rpcErr
		}
		return ErrorResult(err), nil
	}
	return result, nil
}

// decodeCallParams converts the untyped params of a tools/call request.
func decodeCallParams(params any) (ToolCallParams, error) {
	var callParams ToolCallParams
	paramsBytes, err := json.Marshal(params)
	if err != nil {
		return callParams, fmt.Errorf("parse params: %w", err)
	}
	if err := json.Unmarshal(paramsBytes, &callParams); err != nil {
		return callParams, fmt.Errorf("unmarshal params: %w", err)
	}
	return callParams, nil
}

// Session management

func (s *Server) createSession() string {
	id := uuid.NewString()
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	s.sessions[id] = time.Now()
	return id
}

// CheckSession verifies if a session ID is valid.
func (s *Server) CheckSession(id string) bool {
	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}
