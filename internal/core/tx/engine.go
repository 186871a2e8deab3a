package tx

import (
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// Engine applies one transaction against a read-only ledger view and
// returns the resulting change set. It never writes to the view; the
// caller commits the change set or drops it.
type Engine struct {
	// View provides access to ledger state
	view ReadView

	// Config holds engine configuration
	config EngineConfig
}

// EngineConfig holds configuration for the transaction engine
type EngineConfig struct {
	// Now is the clock reading for the request being applied
	Now int64

	// SkipSignatureVerification skips signature checks (for testing/standalone)
	SkipSignatureVerification bool
}

// ApplyResult contains the result of applying a transaction
type ApplyResult struct {
	// Result is the transaction result code
	Result Result

	// Applied indicates if the transaction changed the ledger
	Applied bool

	// TxHash identifies the transaction
	TxHash [32]byte

	// Account and Sequence identify the sender's slot
	Account  crypto.AccountID
	Sequence uint32

	// Changes lists the entries created, modified or deleted, sorted by key
	Changes []Change

	// Observed lists every base read the changes depend on
	Observed []Observation

	// Message is a human-readable result message
	Message string
}

// NewEngine creates a new transaction engine
func NewEngine(view ReadView, config EngineConfig) *Engine {
	return &Engine{
		view:   view,
		config: config,
	}
}

func failed(r Result, t Transaction) ApplyResult {
	res := ApplyResult{Result: r, Message: r.Message()}
	if t != nil {
		res.Account = t.GetCommon().Account
		res.Sequence = t.GetCommon().GetSequence()
	}
	return res
}

// Apply processes a transaction: preflight, preclaim, then the
// transactor itself, all inside one ApplyStateTable.
func (e *Engine) Apply(t Transaction) ApplyResult {
	// Step 1: Preflight checks (syntax and signature)
	if result := e.preflight(t); !result.IsSuccess() {
		return failed(result, t)
	}

	txHash, err := Hash(t)
	if err != nil {
		return failed(TefINTERNAL, t)
	}

	table := NewApplyStateTable(e.view)
	common := t.GetCommon()

	// Step 2: Preclaim checks (validate against ledger state)
	account, result := e.preclaim(table, common)
	if !result.IsSuccess() {
		return failed(result, t)
	}

	appliable, ok := t.(Appliable)
	if !ok {
		return failed(TemUNKNOWN, t)
	}

	ctx := &ApplyContext{
		View:      table,
		AccountID: common.Account,
		Now:       e.config.Now,
		Config:    e.config,
		TxHash:    txHash,
	}

	// Step 3: Apply the transaction
	result = appliable.Apply(ctx)
	if !result.IsSuccess() {
		res := failed(result, t)
		res.TxHash = txHash
		return res
	}

	// Step 4: Consume the sequence in the same unit
	if result = e.consumeSequence(table, account.Account); !result.IsSuccess() {
		return failed(result, t)
	}

	changes, observed := table.Apply()
	return ApplyResult{
		Result:   TesSUCCESS,
		Applied:  true,
		TxHash:   txHash,
		Account:  common.Account,
		Sequence: common.GetSequence(),
		Changes:  changes,
		Observed: observed,
		Message:  TesSUCCESS.Message(),
	}
}

// preflight performs initial validation on the transaction
func (e *Engine) preflight(t Transaction) Result {
	if t == nil {
		return TemINVALID
	}
	common := t.GetCommon()
	if common.Account.IsZero() {
		return TemBAD_SRC_ACCOUNT
	}
	if name, ok := TypeFromName(common.TransactionType); !ok || name != t.TxType() {
		return TemINVALID
	}
	if common.Sequence == nil || *common.Sequence == 0 {
		return TemBAD_SEQUENCE
	}

	if !e.config.SkipSignatureVerification {
		if err := VerifySignature(t); err != nil {
			return ResultOf(err, TefBAD_SIGNATURE)
		}
	}

	// Transaction-specific validation
	if err := t.Validate(); err != nil {
		return ResultOf(err, TemMALFORMED)
	}
	return TesSUCCESS
}

// preclaim loads the source account and checks its sequence.
func (e *Engine) preclaim(view ReadView, common *Common) (*entries.AccountRoot, Result) {
	account, err := ReadEntry[entries.AccountRoot](view, keylet.Account(common.Account))
	if err != nil {
		return nil, TefINTERNAL
	}
	if account == nil {
		return nil, TerNO_ACCOUNT
	}

	seq := common.GetSequence()
	switch {
	case seq < account.Sequence:
		return nil, TefPAST_SEQ
	case seq > account.Sequence:
		return nil, TerPRE_SEQ
	}
	return account, TesSUCCESS
}

func (e *Engine) consumeSequence(view LedgerView, id crypto.AccountID) Result {
	k := keylet.Account(id)
	account, err := ReadEntry[entries.AccountRoot](view, k)
	if err != nil || account == nil {
		return TefINTERNAL
	}
	account.Sequence++
	if err := UpdateEntry(view, k, account); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}
