package mcpserver

import (
	"errors"
	"fmt"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// ValidationError reports tool arguments that are missing or malformed.
// It is returned to the client as an invalid-params JSON-RPC error.
type ValidationError struct {
	Message string
	Details any
}

func (e *ValidationError) Error() string { return e.Message }

// Invalidf builds a ValidationError from a format string.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ToolError reports an unrecoverable failure inside a tool. It is returned to
// the client as an internal JSON-RPC error.
type ToolError struct {
	Message string
	Err     error
}

func (e *ToolError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ToolError) Unwrap() error { return e.Err }

// NewToolError wraps err as a ToolError.
func NewToolError(message string, err error) error {
	return &ToolError{Message: message, Err: err}
}

// rpcErrorFor maps protocol-level tool errors to a JSON-RPC error. It returns
// nil for ordinary errors, which are reported as tool output instead.
func rpcErrorFor(err error) *RPCError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return &RPCError{Code: CodeInvalidParams, Message: verr.Message, Data: verr.Details}
	}
	var terr *ToolError
	if errors.As(err, &terr) {
		return &RPCError{Code: CodeInternalError, Message: terr.Error()}
	}
	return nil
}
