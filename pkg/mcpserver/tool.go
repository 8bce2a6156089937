package mcpserver

// ToolHandler is the interface for MCP tools.
type ToolHandler interface {
	// Name returns the unique tool name.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// InputSchema returns the JSON Schema for the tool's input.
	InputSchema() map[string]any

	// Execute runs the tool with the given arguments.
	//
	// A *ValidationError or *ToolError is reported to the client as a JSON-RPC
	// error. Any other error becomes an error tool result.
	Execute(args map[string]any) (*ToolCallResult, error)
}

// BaseTool provides a base implementation for common tool fields.
// Embed this in your tool structs and implement Execute().
type BaseTool struct {
	ToolName        string
	ToolDescription string
	ToolSchema      map[string]any

	// Metadata for tool discovery
	Category string
	Tags     []string
}

func (t *BaseTool) Name() string                { return t.ToolName }
func (t *BaseTool) Description() string         { return t.ToolDescription }
func (t *BaseTool) InputSchema() map[string]any { return t.ToolSchema }

// Meta returns the discovery metadata advertised in tools/list.
func (t *BaseTool) Meta() ToolMeta {
	return ToolMeta{Category: t.Category, Tags: t.Tags}
}

// ToolMeta is optional discovery metadata for a tool.
type ToolMeta struct {
	Category string
	Tags     []string
}

// Middleware is a function that wraps a request handler.
type Middleware func(next HandlerFunc) HandlerFunc

// HandlerFunc is a function that handles a JSON-RPC request.
type HandlerFunc func(req *JSONRPCRequest) *JSONRPCResponse
