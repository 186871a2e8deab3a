// Package rpc serves the ledger over JSON-RPC and a websocket event
// stream.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/service"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds one JSON-RPC request.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps a JSON-RPC request body.
const maxBodySize = 1 << 20

// Config holds the RPC server settings.
type Config struct {
	// Addr is the listen address, host:port
	Addr string

	// Admin enables admin methods for loopback clients
	Admin bool

	// Timeout bounds each request; zero means DefaultTimeout
	Timeout time.Duration

	// SendQueueLimit is the per-connection websocket queue length
	SendQueueLimit int

	Logger *slog.Logger
}

// Server handles HTTP JSON-RPC requests and websocket connections.
type Server struct {
	registry *MethodRegistry
	svc      *service.Service
	ws       *WebSocketServer
	cfg      Config
	logger   *slog.Logger
}

// NewServer creates a server exposing svc.
func NewServer(svc *service.Service, cfg Config) *Server {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.SendQueueLimit <= 0 {
		cfg.SendQueueLimit = 256
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		registry: NewMethodRegistry(),
		svc:      svc,
		cfg:      cfg,
		logger:   logger.With("component", "rpc"),
	}
	s.registerAllMethods(svc)
	s.ws = newWebSocketServer(s)
	return s
}

// Registry returns the method registry.
func (s *Server) Registry() *MethodRegistry {
	return s.registry
}

// Handler returns the HTTP routes: JSON-RPC on "/", the event stream on
// "/ws" and a liveness check on "/health".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", s)
	mux.Handle("/ws", s.ws)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// ListenAndServe listens on the configured address and serves until ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down and waits for
// websocket connections to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("rpc server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.ws.closeAll()
		s.logger.Info("rpc server stopped")
		return err
	})
	return g.Wait()
}

// ServeHTTP implements http.Handler for JSON-RPC.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleGetRequest(w, r)
	case http.MethodPost:
		s.handlePostRequest(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetRequest runs a parameterless method named by ?command=,
// defaulting to server_info.
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "server_info"
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	result, rpcErr := s.executeMethod(method, nil, s.newContext(ctx, r))
	s.writeResponse(w, map[string]any{"command": method}, result, rpcErr)
}

func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeResponse(w, nil, nil, RpcErrorInternal("Failed to read request body"))
		return
	}

	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, nil, nil, NewRpcError(RpcINVALID_PARAMS, "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, nil, nil, NewRpcError(RpcMISSING_COMMAND, "missingCommand", "Missing method field"))
		return
	}

	// params is an array holding one object
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	result, rpcErr := s.executeMethod(request.Method, params, s.newContext(ctx, r))
	var echo any
	if rpcErr != nil {
		echo = requestEcho(request.Method, params)
	}
	s.writeResponse(w, echo, result, rpcErr)
}

func (s *Server) newContext(ctx context.Context, r *http.Request) *RpcContext {
	ip := clientIP(r)
	return &RpcContext{Context: ctx, Role: s.roleFor(ip), ClientIP: ip}
}

// roleFor grants admin to loopback clients when admin is enabled.
func (s *Server) roleFor(ip string) Role {
	if !s.cfg.Admin {
		return RoleGuest
	}
	if parsed := net.ParseIP(ip); parsed != nil && parsed.IsLoopback() {
		return RoleAdmin
	}
	return RoleGuest
}

func (s *Server) executeMethod(method string, params json.RawMessage, ctx *RpcContext) (any, *RpcError) {
	handler, ok := s.registry.Get(method)
	if !ok {
		return nil, RpcErrorMethodNotFound(method)
	}
	if ctx.Role < handler.RequiredRole() {
		return nil, RpcErrorUntrusted(method)
	}
	result, rpcErr := handler.Handle(ctx, params)
	if rpcErr != nil {
		s.logger.Debug("rpc error", "method", method, "code", rpcErr.ErrorString, "message", rpcErr.Message)
	}
	return result, rpcErr
}

// resultObject builds the result member: the handler's map with a status
// field, or the error fields.
func resultObject(request any, result any, rpcErr *RpcError) map[string]any {
	if rpcErr != nil {
		obj := map[string]any{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
		if request != nil {
			obj["request"] = request
		}
		return obj
	}
	if m, ok := result.(map[string]any); ok {
		m["status"] = "success"
		return m
	}
	return map[string]any{"status": "success", "data": result}
}

func (s *Server) writeResponse(w http.ResponseWriter, request any, result any, rpcErr *RpcError) {
	data, err := json.Marshal(map[string]any{"result": resultObject(request, result, rpcErr)})
	if err != nil {
		s.logger.Error("failed to marshal response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !s.svc.Started() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"starting"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func requestEcho(method string, params json.RawMessage) any {
	req := map[string]any{}
	if params != nil {
		if err := json.Unmarshal(params, &req); err != nil {
			req = map[string]any{}
		}
	}
	req["command"] = method
	return req
}

// clientIP returns the peer address. Forwarding headers are not trusted
// since the role depends on it.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
