package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// HTTPServer wraps the MCP Server to serve over HTTP with SSE support.
type HTTPServer struct {
	server *Server
	addr   string
	logger *slog.Logger
}

// NewHTTPServer creates an HTTP transport for s listening on addr.
func (s *Server) NewHTTPServer(addr string) *HTTPServer {
	return &HTTPServer{
		server: s,
		addr:   addr,
		logger: s.logger,
	}
}

// RunHTTP starts the MCP server on an HTTP endpoint and shuts it down when
// ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	return s.NewHTTPServer(addr).ListenAndServe(ctx)
}

// SetHTTPAuthSecret enables HS256 bearer-token authentication on the HTTP
// transport. An empty secret disables it.
func (s *Server) SetHTTPAuthSecret(secret []byte) {
	s.authSecret = secret
}

// SetMaxBodyBytes limits the size of HTTP request bodies.
func (s *Server) SetMaxBodyBytes(n int64) {
	if n > 0 {
		s.maxBodyBytes = n
	}
}

// Handler returns the HTTP handler with all routes and middleware applied.
func (hs *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// MCP protocol endpoint (JSON-RPC 2.0)
	mux.HandleFunc("/mcp", hs.handleMCPRequest)

	// RESTful endpoints
	mux.HandleFunc("/api/tools", hs.handleToolsList)
	mux.HandleFunc("/api/tools/", hs.handleToolCall)

	// Health check
	mux.HandleFunc("/health", hs.handleHealth)

	return hs.corsMiddleware(hs.requireAuth(mux))
}

// ListenAndServe starts the HTTP server.
func (hs *HTTPServer) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              hs.addr,
		Handler:           hs.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		hs.logger.Info("starting HTTP server", "addr", hs.addr, "tools", len(hs.server.tools), "auth", len(hs.server.authSecret) > 0)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		hs.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (hs *HTTPServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Mcp-Session-Id")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (hs *HTTPServer) handleMCPRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	body := http.MaxBytesReader(w, r.Body, hs.server.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		hs.writeError(w, CodeParseError, "Parse error")
		return
	}

	// Validate session for non-initialize requests
	if req.Method != "initialize" {
		sessionID := r.Header.Get("Mcp-Session-Id")
		if sessionID == "" || !hs.server.CheckSession(sessionID) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
	}

	if subject := SubjectFromContext(r.Context()); subject != "" {
		hs.logger.Debug("mcp http request", "method", req.Method, "subject", subject)
	}

	resp := hs.server.HandleRequest(&req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	// Set session ID header for initialize response
	if req.Method == "initialize" && resp.Error == nil {
		if result, ok := resp.Result.(*InitializeResult); ok && result.SessionID != "" {
			w.Header().Set("Mcp-Session-Id", result.SessionID)
		}
	}

	// Choose response format based on Accept header
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		hs.sendSSE(w, resp)
	} else {
		hs.sendJSON(w, resp)
	}
}

func (hs *HTTPServer) sendJSON(w http.ResponseWriter, resp any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		hs.logger.Error("encode response", "error", err)
	}
}

func (hs *HTTPServer) sendSSE(w http.ResponseWriter, resp *JSONRPCResponse) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		hs.sendJSON(w, resp)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: endpoint\ndata: %s\n\n", "/mcp")
	flusher.Flush()

	respBytes, _ := json.Marshal(resp)
	fmt.Fprintf(w, "data: %s\n\n", string(respBytes))
	flusher.Flush()
}

func (hs *HTTPServer) handleToolsList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	hs.sendJSON(w, hs.server.handleToolsList())
}

func (hs *HTTPServer) handleToolCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	toolName := strings.TrimPrefix(r.URL.Path, "/api/tools/")
	if toolName == "" {
		http.Error(w, "Tool name required", http.StatusBadRequest)
		return
	}

	var args map[string]any
	body := http.MaxBytesReader(w, r.Body, hs.server.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&args); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Route through the middleware chain so logging and usage apply.
	resp := hs.server.HandleRequest(&JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  "tools/call",
		Params: map[string]any{
			"name":      toolName,
			"arguments": args,
		},
	})
	if resp.Error != nil {
		status := http.StatusInternalServerError
		if resp.Error.Code == CodeInvalidParams {
			status = http.StatusBadRequest
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp.Error)
		return
	}
	hs.sendJSON(w, resp.Result)
}

func (hs *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	hs.sendJSON(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"server":    hs.server.name,
		"version":   hs.server.version,
	})
}

func (hs *HTTPServer) writeError(w http.ResponseWriter, code int, message string) {
	hs.sendJSON(w, JSONRPCResponse{
		JSONRPC: "2.0",
		Error:   &RPCError{Code: code, Message: message},
	})
}
