package rpc

import (
	"encoding/json"
	"errors"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/service"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/auction"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
	"github.com/LeJamon/goDutchAuction/internal/storage/journal"
)

// registerAllMethods registers every method against svc.
func (s *Server) registerAllMethods(svc *service.Service) {
	s.registry.Register("submit", &SubmitMethod{svc})
	s.registry.Register("account_info", &AccountInfoMethod{svc})
	s.registry.Register("token_balance", &TokenBalanceMethod{svc})
	s.registry.Register("auction_info", &AuctionInfoMethod{svc})
	s.registry.Register("auction_price", &AuctionPriceMethod{svc})
	s.registry.Register("account_tx", &AccountTxMethod{svc})
	s.registry.Register("server_info", &ServerInfoMethod{svc})
	s.registry.Register("clock_advance", &ClockAdvanceMethod{svc})
}

func parseParams(params json.RawMessage, v any) *RpcError {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

func parseAccount(field, s string) (crypto.AccountID, *RpcError) {
	if s == "" {
		return crypto.AccountID{}, RpcErrorInvalidParams("Missing required parameter: " + field)
	}
	id, err := crypto.DecodeAddress(s)
	if err != nil {
		return crypto.AccountID{}, RpcErrorActMalformed("Malformed " + field + ": " + err.Error())
	}
	return id, nil
}

func parseEscrow(s string) ([32]byte, *RpcError) {
	if s == "" {
		return [32]byte{}, RpcErrorInvalidParams("Missing required parameter: escrow_account")
	}
	key, err := auction.ParseEscrow(s)
	if err != nil {
		return key, RpcErrorInvalidParams(err.Error())
	}
	return key, nil
}

// serviceError maps a ledger service error to an RPC error.
func serviceError(err error) *RpcError {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		return RpcErrorActNotFound()
	case errors.Is(err, service.ErrMintNotFound):
		return RpcErrorEntryNotFound("Mint not found.")
	case errors.Is(err, service.ErrAuctionNotFound):
		return RpcErrorEntryNotFound("Auction not found.")
	case errors.Is(err, service.ErrNotStarted):
		return NewRpcError(RpcNOT_READY, "notReady", "Ledger service not started.")
	case errors.Is(err, service.ErrClockNotManual):
		return NewRpcError(RpcCLOCK_NOT_MANUAL, "clockNotManual", "Clock source cannot be advanced.")
	}
	return RpcErrorInternal(err.Error())
}

// SubmitMethod handles submit. The transaction must already be signed.
type SubmitMethod struct{ svc *service.Service }

func (m *SubmitMethod) RequiredRole() Role { return RoleGuest }

func (m *SubmitMethod) Handle(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var request struct {
		TxJSON json.RawMessage `json:"tx_json"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if len(request.TxJSON) == 0 {
		return nil, RpcErrorInvalidParams("Missing required parameter: tx_json")
	}

	t, err := tx.FromJSON(request.TxJSON)
	if err != nil {
		return nil, RpcErrorInvalidParams("Invalid tx_json: " + err.Error())
	}

	res, err := m.svc.SubmitTransaction(ctx.Context, t)
	if err != nil {
		return nil, serviceError(err)
	}
	return map[string]any{
		"engine_result":         res.Result.String(),
		"engine_result_code":    int(res.Result),
		"engine_result_message": res.Message,
		"applied":               res.Applied,
		"tx_hash":               hashHex(res.TxHash),
		"clock_time":            res.ClockTime,
		"tx_json":               request.TxJSON,
	}, nil
}

// AccountInfoMethod handles account_info.
type AccountInfoMethod struct{ svc *service.Service }

func (m *AccountInfoMethod) RequiredRole() Role { return RoleGuest }

func (m *AccountInfoMethod) Handle(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var request struct {
		Account string `json:"account"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	id, rpcErr := parseAccount("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}

	acct, err := m.svc.GetAccountInfo(ctx.Context, id)
	if err != nil {
		return nil, serviceError(err)
	}
	return map[string]any{
		"account_data": map[string]any{
			"LedgerEntryType": "AccountRoot",
			"Account":         acct.Account.String(),
			"Balance":         u64(acct.Balance),
			"Sequence":        acct.Sequence,
			"OwnerCount":      acct.OwnerCount,
		},
	}, nil
}

// TokenBalanceMethod handles token_balance. The balance is reported both
// raw and scaled by the mint's decimals.
type TokenBalanceMethod struct{ svc *service.Service }

func (m *TokenBalanceMethod) RequiredRole() Role { return RoleGuest }

func (m *TokenBalanceMethod) Handle(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var request struct {
		Account string `json:"account"`
		Mint    string `json:"mint"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	owner, rpcErr := parseAccount("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	mintID, rpcErr := parseAccount("mint", request.Mint)
	if rpcErr != nil {
		return nil, rpcErr
	}

	bal, mint, err := m.svc.GetTokenBalance(ctx.Context, owner, mintID)
	if err != nil {
		return nil, serviceError(err)
	}
	return map[string]any{
		"account":  owner.String(),
		"mint":     mintID.String(),
		"balance":  u64(bal),
		"display":  FormatAmount(bal, mint.Decimals),
		"decimals": mint.Decimals,
		"supply":   u64(mint.Supply),
	}, nil
}

// AuctionInfoMethod handles auction_info.
type AuctionInfoMethod struct{ svc *service.Service }

func (m *AuctionInfoMethod) RequiredRole() Role { return RoleGuest }

func (m *AuctionInfoMethod) Handle(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var request struct {
		EscrowAccount string `json:"escrow_account"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	escrow, rpcErr := parseEscrow(request.EscrowAccount)
	if rpcErr != nil {
		return nil, rpcErr
	}

	rec, err := m.svc.GetAuction(ctx.Context, escrow)
	if err != nil {
		return nil, serviceError(err)
	}
	return map[string]any{"auction": auctionJSON(rec)}, nil
}

// AuctionPriceMethod handles auction_price. Quoting never changes the
// ledger.
type AuctionPriceMethod struct{ svc *service.Service }

func (m *AuctionPriceMethod) RequiredRole() Role { return RoleGuest }

func (m *AuctionPriceMethod) Handle(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var request struct {
		EscrowAccount string `json:"escrow_account"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	escrow, rpcErr := parseEscrow(request.EscrowAccount)
	if rpcErr != nil {
		return nil, rpcErr
	}

	q, err := m.svc.GetAuctionPrice(ctx.Context, escrow)
	if err != nil {
		return nil, serviceError(err)
	}
	return map[string]any{
		"escrow_account": auction.FormatEscrow(escrow),
		"price":          u64(q.Price),
		"auction_status": q.Auction.Status.String(),
		"clock_time":     q.ClockTime,
	}, nil
}

// AccountTxMethod handles account_tx.
type AccountTxMethod struct{ svc *service.Service }

func (m *AccountTxMethod) RequiredRole() Role { return RoleGuest }

func (m *AccountTxMethod) Handle(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var request struct {
		Account string `json:"account"`
		Limit   int    `json:"limit,omitempty"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	id, rpcErr := parseAccount("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if request.Limit < 0 {
		return nil, RpcErrorInvalidParams("limit must not be negative")
	}
	if request.Limit == 0 || request.Limit > journal.MaxLimit {
		request.Limit = journal.MaxLimit
	}

	records, err := m.svc.GetAccountTransactions(ctx.Context, id, request.Limit)
	if err != nil {
		return nil, serviceError(err)
	}
	txs := make([]map[string]any, 0, len(records))
	for _, r := range records {
		txs = append(txs, recordJSON(r))
	}
	return map[string]any{
		"account":      id.String(),
		"limit":        request.Limit,
		"transactions": txs,
	}, nil
}

// ServerInfoMethod handles server_info.
type ServerInfoMethod struct{ svc *service.Service }

func (m *ServerInfoMethod) RequiredRole() Role { return RoleGuest }

func (m *ServerInfoMethod) Handle(ctx *RpcContext, _ json.RawMessage) (any, *RpcError) {
	info := m.svc.GetServerInfo(ctx.Context)
	return map[string]any{
		"info": map[string]any{
			"master_account": info.Master.String(),
			"uptime":         int64(info.Uptime.Seconds()),
			"submitted":      info.Submitted,
			"applied":        info.Applied,
			"conflicts":      info.Conflicts,
			"subscribers":    info.Subscribers,
			"clock_time":     info.ClockTime,
			"clock_manual":   info.ManualClock,
			"events_dropped": m.svc.Events().Dropped(),
			"server_state":   "full",
		},
	}, nil
}

// ClockAdvanceMethod handles clock_advance. It needs an admin connection
// and a manual clock.
type ClockAdvanceMethod struct{ svc *service.Service }

func (m *ClockAdvanceMethod) RequiredRole() Role { return RoleAdmin }

func (m *ClockAdvanceMethod) Handle(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var request struct {
		Seconds *int64 `json:"seconds"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Seconds == nil {
		return nil, RpcErrorInvalidParams("Missing required parameter: seconds")
	}

	now, err := m.svc.AdvanceClock(*request.Seconds)
	if err != nil {
		if errors.Is(err, service.ErrClockNotManual) {
			return nil, serviceError(err)
		}
		return nil, RpcErrorInvalidParams(err.Error())
	}
	return map[string]any{"clock_time": now}, nil
}
