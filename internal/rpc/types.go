package rpc

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// RPC error codes
const (
	RpcUNKNOWN          = -1
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603

	RpcMISSING_COMMAND   = 2
	RpcCOMMAND_UNTRUSTED = 3
	RpcNOT_READY         = 4
	RpcACT_NOT_FOUND     = 19
	RpcSTREAM_MALFORMED  = 26
	RpcACT_MALFORMED     = 50
	RpcENTRY_NOT_FOUND   = 92
	RpcCLOCK_NOT_MANUAL  = 93
)

// RpcError is the error object carried inside a result.
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message,omitempty"`
}

func (e *RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// NewRpcError creates an error with the given code and token.
func NewRpcError(code int, token, message string) *RpcError {
	return &RpcError{Code: code, ErrorString: token, Message: message}
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", message)
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", message)
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", "Unknown method: "+method)
}

func RpcErrorActNotFound() *RpcError {
	return NewRpcError(RpcACT_NOT_FOUND, "actNotFound", "Account not found.")
}

func RpcErrorActMalformed(message string) *RpcError {
	return NewRpcError(RpcACT_MALFORMED, "actMalformed", message)
}

func RpcErrorEntryNotFound(message string) *RpcError {
	return NewRpcError(RpcENTRY_NOT_FOUND, "entryNotFound", message)
}

func RpcErrorUntrusted(method string) *RpcError {
	return NewRpcError(RpcCOMMAND_UNTRUSTED, "commandUntrusted", "Method '"+method+"' requires admin access")
}

// Role gates access to methods.
type Role int

const (
	RoleGuest Role = iota
	RoleAdmin
)

// RpcContext carries request-scoped information into a handler.
type RpcContext struct {
	Context  context.Context
	Role     Role
	ClientIP string
}

// MethodHandler is implemented by every RPC method.
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (any, *RpcError)
	RequiredRole() Role
}

// MethodRegistry maps method names to handlers.
type MethodRegistry struct {
	mu      sync.RWMutex
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{methods: make(map[string]MethodHandler)}
}

func (r *MethodRegistry) Register(name string, h MethodHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[name] = h
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.methods[name]
	return h, ok
}

// Names lists the registered methods in order.
func (r *MethodRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Request is a JSON-RPC request: {"method": "...", "params": [{...}]}.
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// Response wraps a result object. The result always carries a status
// field and, on failure, the error fields.
type Response struct {
	Result json.RawMessage `json:"result"`
}
