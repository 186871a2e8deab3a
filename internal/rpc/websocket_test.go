package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goDutchAuction/internal/core/tx/auction"
	jtx "github.com/LeJamon/goDutchAuction/internal/testing"
	"github.com/LeJamon/goDutchAuction/internal/testing/builders"
)

// serve runs a server on a loopback listener until the test ends.
func serve(t *testing.T, env *jtx.TestEnv) (*Server, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(env.Service(), Config{SendQueueLimit: 16})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("server did not stop")
		}
	})
	return server, ln.Addr().String()
}

func dial(t *testing.T, addr string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketSubscribeTransactions(t *testing.T) {
	env := jtx.NewTestEnv(t)
	_, addr := serve(t, env)
	conn := dial(t, addr)

	require.NoError(t, conn.WriteJSON(map[string]any{"id": 1, "command": "subscribe", "streams": []string{"transactions"}}))
	resp := readMessage(t, conn)
	assert.Equal(t, "response", resp["type"])
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, float64(1), resp["id"])

	alice := env.Account("alice")
	env.Fund(alice)

	ev := readMessage(t, conn)
	assert.Equal(t, "transaction", ev["type"])
	assert.Equal(t, "Payment", ev["transaction_type"])
	assert.Equal(t, "tesSUCCESS", ev["engine_result"])
	assert.Equal(t, env.MasterAccount().ID.String(), ev["account"])
}

func TestWebSocketAuctionStream(t *testing.T) {
	env := jtx.NewTestEnv(t)
	_, addr := serve(t, env)
	conn := dial(t, addr)

	require.NoError(t, conn.WriteJSON(map[string]any{"command": "subscribe", "streams": []string{"auctions"}}))
	require.Equal(t, "success", readMessage(t, conn)["status"])

	seller := env.Account("seller")
	buyer := env.Account("buyer")
	env.Fund(seller, buyer)
	mint := env.CreateMint(seller, 0)
	env.MintTo(seller, mint, seller, 1)
	create := builders.AuctionCreate(seller.ID, mint).Build()
	jtx.RequireTxSuccess(t, env.Submit(create))
	escrow := create.EscrowAccount()

	ev := readMessage(t, conn)
	assert.Equal(t, "auction", ev["type"])
	assert.Equal(t, auction.FormatEscrow(escrow), ev["escrow_account"])
	rec := ev["auction"].(map[string]any)
	assert.Equal(t, "Active", rec["Status"])

	env.SetTime(50)
	jtx.RequireTxSuccess(t, env.Submit(builders.AuctionSettle(buyer.ID, escrow).Build()))

	ev = readMessage(t, conn)
	rec = ev["auction"].(map[string]any)
	assert.Equal(t, "Settled", rec["Status"])
	assert.Equal(t, "55", rec["SettledPrice"])
	assert.Equal(t, float64(50), ev["clock_time"])
}

func TestWebSocketUnsubscribe(t *testing.T) {
	env := jtx.NewTestEnv(t)
	_, addr := serve(t, env)
	conn := dial(t, addr)

	require.NoError(t, conn.WriteJSON(map[string]any{"command": "subscribe", "streams": []string{"transactions", "auctions"}}))
	resp := readMessage(t, conn)
	assert.Equal(t, []any{"auctions", "transactions"}, resp["result"].(map[string]any)["streams"])

	require.NoError(t, conn.WriteJSON(map[string]any{"command": "unsubscribe", "streams": []string{"transactions"}}))
	resp = readMessage(t, conn)
	assert.Equal(t, []any{"auctions"}, resp["result"].(map[string]any)["streams"])

	env.Fund(env.Account("alice"))

	// only the server_info reply arrives; the payment event was filtered
	require.NoError(t, conn.WriteJSON(map[string]any{"id": "x", "command": "server_info"}))
	resp = readMessage(t, conn)
	assert.Equal(t, "x", resp["id"])
	assert.Equal(t, "success", resp["status"])
}

func TestWebSocketErrors(t *testing.T) {
	env := jtx.NewTestEnv(t)
	_, addr := serve(t, env)
	conn := dial(t, addr)

	require.NoError(t, conn.WriteJSON(map[string]any{"command": "subscribe", "streams": []string{"ledger"}}))
	resp := readMessage(t, conn)
	assert.Equal(t, "error", resp["status"])
	assert.Equal(t, "malformedStream", resp["error"])

	require.NoError(t, conn.WriteJSON(map[string]any{"id": 7}))
	resp = readMessage(t, conn)
	assert.Equal(t, "missingCommand", resp["error"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	resp = readMessage(t, conn)
	assert.Equal(t, "jsonInvalid", resp["error"])

	require.NoError(t, conn.WriteJSON(map[string]any{"command": "clock_advance", "seconds": 5}))
	resp = readMessage(t, conn)
	assert.Equal(t, "commandUntrusted", resp["error"])
}

func TestServeClosesWebSockets(t *testing.T) {
	env := jtx.NewTestEnv(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(env.Service(), Config{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	conn := dial(t, ln.Addr().String())
	require.NoError(t, conn.WriteJSON(map[string]any{"command": "subscribe", "streams": []string{"transactions"}}))
	readMessage(t, conn)
	assert.Equal(t, 1, server.ws.Connections())
	assert.Equal(t, 1, env.Service().Events().Subscribers())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}

	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, env.Service().Events().Subscribers())
}
