package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/auction"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// Client calls a JSON-RPC server.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a client for the server at url.
func NewClient(url string) *Client {
	return &Client{url: url, http: &http.Client{Timeout: DefaultTimeout}}
}

// Call invokes method with params and decodes the result into out. An
// error result is returned as *RpcError.
func (c *Client) Call(ctx context.Context, method string, params any, out any) error {
	req := map[string]any{"method": method}
	if params != nil {
		req["params"] = []any{params}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: http status %d", method, resp.StatusCode)
	}

	var envelope Response
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	var status struct {
		Status string `json:"status"`
		RpcError
	}
	if err := json.Unmarshal(envelope.Result, &status); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	if status.Status != "success" {
		e := status.RpcError
		return &e
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(envelope.Result, out)
}

// SubmitResponse is the result of submit.
type SubmitResponse struct {
	EngineResult        string `json:"engine_result"`
	EngineResultCode    int    `json:"engine_result_code"`
	EngineResultMessage string `json:"engine_result_message"`
	Applied             bool   `json:"applied"`
	TxHash              string `json:"tx_hash"`
	ClockTime           int64  `json:"clock_time"`
}

// Submit sends a signed transaction.
func (c *Client) Submit(ctx context.Context, t tx.Transaction) (*SubmitResponse, error) {
	txJSON, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var out SubmitResponse
	if err := c.Call(ctx, "submit", map[string]any{"tx_json": json.RawMessage(txJSON)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AccountData is the account_data member of account_info.
type AccountData struct {
	Account    string `json:"Account"`
	Balance    uint64 `json:"Balance,string"`
	Sequence   uint32 `json:"Sequence"`
	OwnerCount uint32 `json:"OwnerCount"`
}

// AccountInfo fetches an account root.
func (c *Client) AccountInfo(ctx context.Context, account crypto.AccountID) (*AccountData, error) {
	var out struct {
		AccountData AccountData `json:"account_data"`
	}
	if err := c.Call(ctx, "account_info", map[string]any{"account": account.String()}, &out); err != nil {
		return nil, err
	}
	return &out.AccountData, nil
}

// TokenBalance is the result of token_balance.
type TokenBalance struct {
	Account  string `json:"account"`
	Mint     string `json:"mint"`
	Balance  uint64 `json:"balance,string"`
	Display  string `json:"display"`
	Decimals uint8  `json:"decimals"`
	Supply   uint64 `json:"supply,string"`
}

// TokenBalance fetches account's holding of mint.
func (c *Client) TokenBalance(ctx context.Context, account, mint crypto.AccountID) (*TokenBalance, error) {
	var out TokenBalance
	params := map[string]any{"account": account.String(), "mint": mint.String()}
	if err := c.Call(ctx, "token_balance", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuctionInfo fetches an auction record as rendered by the server.
func (c *Client) AuctionInfo(ctx context.Context, escrow [32]byte) (map[string]any, error) {
	var out struct {
		Auction map[string]any `json:"auction"`
	}
	if err := c.Call(ctx, "auction_info", map[string]any{"escrow_account": auction.FormatEscrow(escrow)}, &out); err != nil {
		return nil, err
	}
	return out.Auction, nil
}

// PriceQuote is the result of auction_price.
type PriceQuote struct {
	EscrowAccount string `json:"escrow_account"`
	Price         uint64 `json:"price,string"`
	AuctionStatus string `json:"auction_status"`
	ClockTime     int64  `json:"clock_time"`
}

// AuctionPrice quotes an auction at the server's clock.
func (c *Client) AuctionPrice(ctx context.Context, escrow [32]byte) (*PriceQuote, error) {
	var out PriceQuote
	if err := c.Call(ctx, "auction_price", map[string]any{"escrow_account": auction.FormatEscrow(escrow)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ServerInfo fetches the server_info block.
func (c *Client) ServerInfo(ctx context.Context) (map[string]any, error) {
	var out struct {
		Info map[string]any `json:"info"`
	}
	if err := c.Call(ctx, "server_info", nil, &out); err != nil {
		return nil, err
	}
	return out.Info, nil
}

// AccountTx lists journaled submissions of account, newest first.
func (c *Client) AccountTx(ctx context.Context, account crypto.AccountID, limit int) ([]map[string]any, error) {
	var out struct {
		Transactions []map[string]any `json:"transactions"`
	}
	params := map[string]any{"account": account.String(), "limit": limit}
	if err := c.Call(ctx, "account_tx", params, &out); err != nil {
		return nil, err
	}
	return out.Transactions, nil
}

// ClockAdvance moves the server's manual clock forward.
func (c *Client) ClockAdvance(ctx context.Context, seconds int64) (int64, error) {
	var out struct {
		ClockTime int64 `json:"clock_time"`
	}
	if err := c.Call(ctx, "clock_advance", map[string]any{"seconds": seconds}, &out); err != nil {
		return 0, err
	}
	return out.ClockTime, nil
}

// WithTimeout sets the HTTP timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.http.Timeout = d
	return c
}
