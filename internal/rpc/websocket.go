package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/service"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

// WebSocketServer serves commands and event subscriptions over websocket.
type WebSocketServer struct {
	server   *Server
	upgrader websocket.Upgrader

	nextID atomic.Uint64
	mu     sync.Mutex
	conns  map[uint64]*wsConnection
	active sync.WaitGroup
}

// wsConnection is one websocket client. At most one ledger subscription
// is live per connection; it is replaced whenever the stream set changes.
type wsConnection struct {
	id     uint64
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	closed sync.Once
	events *service.EventPublisher
	queue  int

	mu      sync.Mutex
	streams map[service.Stream]bool
	sub     *service.Subscription
	pumps   sync.WaitGroup
}

func newWebSocketServer(s *Server) *WebSocketServer {
	return &WebSocketServer{
		server: s,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[uint64]*wsConnection),
	}
}

// ServeHTTP upgrades the request and serves the connection until it
// closes.
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.server.logger.Debug("websocket upgrade failed", "err", err)
		return
	}

	c := &wsConnection{
		id:      ws.nextID.Add(1),
		conn:    conn,
		send:    make(chan []byte, ws.server.cfg.SendQueueLimit),
		done:    make(chan struct{}),
		events:  ws.server.svc.Events(),
		queue:   ws.server.cfg.SendQueueLimit,
		streams: make(map[service.Stream]bool),
	}
	if !ws.register(c) {
		conn.Close()
		return
	}
	defer ws.active.Done()
	defer ws.unregister(c)

	ip := clientIP(r)
	role := ws.server.roleFor(ip)

	var writer sync.WaitGroup
	writer.Add(1)
	go func() {
		defer writer.Done()
		c.writePump()
	}()

	c.readPump(func(message []byte) {
		ws.handleMessage(r.Context(), c, role, ip, message)
	})

	c.close()
	c.setStreams(nil, c.subscribedStreams())
	c.pumps.Wait()
	writer.Wait()
}

// register returns false once closeAll has run.
func (ws *WebSocketServer) register(c *wsConnection) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.conns == nil {
		return false
	}
	ws.conns[c.id] = c
	ws.active.Add(1)
	return true
}

func (ws *WebSocketServer) unregister(c *wsConnection) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	delete(ws.conns, c.id)
}

// closeAll closes every connection and waits for their handlers to
// return. New connections are refused afterwards.
func (ws *WebSocketServer) closeAll() {
	ws.mu.Lock()
	conns := ws.conns
	ws.conns = nil
	ws.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
	ws.active.Wait()
}

// Connections returns the number of open websocket connections.
func (ws *WebSocketServer) Connections() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.conns)
}

func (c *wsConnection) close() {
	c.closed.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *wsConnection) readPump(handle func([]byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		handle(message)
	}
}

func (c *wsConnection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

// enqueue queues msg for the writer. A client that lets its queue fill up
// is disconnected.
func (c *wsConnection) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	case <-c.done:
		return false
	default:
		c.close()
		return false
	}
}

func (c *wsConnection) subscribedStreams() []service.Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]service.Stream, 0, len(c.streams))
	for s := range c.streams {
		out = append(out, s)
	}
	return out
}

// setStreams applies a stream change and replaces the ledger
// subscription. It returns the resulting stream set.
func (c *wsConnection) setStreams(add, remove []service.Stream) []service.Stream {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range add {
		c.streams[s] = true
	}
	for _, s := range remove {
		delete(c.streams, s)
	}
	if c.sub != nil {
		c.sub.Cancel()
		c.sub = nil
	}

	streams := make([]service.Stream, 0, len(c.streams))
	for s := range c.streams {
		streams = append(streams, s)
	}
	sort.Slice(streams, func(i, j int) bool { return streams[i] < streams[j] })

	select {
	case <-c.done:
		return streams
	default:
	}
	if len(streams) > 0 {
		c.sub = c.events.Subscribe(c.queue, streams...)
		c.pumps.Add(1)
		go c.pump(c.sub)
	}
	return streams
}

// pump forwards ledger events to the client until the subscription is
// cancelled.
func (c *wsConnection) pump(sub *service.Subscription) {
	defer c.pumps.Done()
	for ev := range sub.C {
		msg, err := json.Marshal(eventJSON(ev))
		if err != nil {
			continue
		}
		c.enqueue(msg)
	}
}

// handleMessage runs one command: {"command": "...", "id": ..., params}.
func (ws *WebSocketServer) handleMessage(ctx context.Context, c *wsConnection, role Role, ip string, message []byte) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(message, &fields); err != nil {
		ws.respond(c, nil, nil, NewRpcError(RpcINVALID_PARAMS, "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	id := fields["id"]

	var command string
	if raw, ok := fields["command"]; ok {
		_ = json.Unmarshal(raw, &command)
	}
	if command == "" {
		ws.respond(c, id, nil, NewRpcError(RpcMISSING_COMMAND, "missingCommand", "Missing command field"))
		return
	}
	delete(fields, "command")
	delete(fields, "id")
	params, err := json.Marshal(fields)
	if err != nil {
		ws.respond(c, id, nil, RpcErrorInternal(err.Error()))
		return
	}

	var (
		result any
		rpcErr *RpcError
	)
	switch command {
	case "subscribe", "unsubscribe":
		result, rpcErr = ws.handleSubscription(c, command, params)
	default:
		reqCtx, cancel := context.WithTimeout(ctx, ws.server.cfg.Timeout)
		result, rpcErr = ws.server.executeMethod(command, params, &RpcContext{Context: reqCtx, Role: role, ClientIP: ip})
		cancel()
	}
	ws.respond(c, id, result, rpcErr)
}

func (ws *WebSocketServer) handleSubscription(c *wsConnection, command string, params json.RawMessage) (any, *RpcError) {
	var request struct {
		Streams []string `json:"streams"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if len(request.Streams) == 0 {
		return nil, RpcErrorInvalidParams("Missing required parameter: streams")
	}
	streams := make([]service.Stream, 0, len(request.Streams))
	for _, name := range request.Streams {
		s := service.Stream(name)
		if s != service.StreamTransactions && s != service.StreamAuctions {
			return nil, NewRpcError(RpcSTREAM_MALFORMED, "malformedStream", "Unknown stream: "+name)
		}
		streams = append(streams, s)
	}

	var current []service.Stream
	if command == "subscribe" {
		current = c.setStreams(streams, nil)
	} else {
		current = c.setStreams(nil, streams)
	}
	names := make([]string, len(current))
	for i, s := range current {
		names[i] = string(s)
	}
	return map[string]any{"streams": names}, nil
}

func (ws *WebSocketServer) respond(c *wsConnection, id json.RawMessage, result any, rpcErr *RpcError) {
	msg := map[string]any{"type": "response"}
	if id != nil {
		msg["id"] = id
	}
	if rpcErr != nil {
		msg["status"] = "error"
		msg["error"] = rpcErr.ErrorString
		msg["error_code"] = rpcErr.Code
		msg["error_message"] = rpcErr.Message
	} else {
		msg["status"] = "success"
		msg["result"] = resultObject(nil, result, nil)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		ws.server.logger.Error("failed to marshal websocket response", "err", err)
		return
	}
	c.enqueue(data)
}
