package tx

import (
	"errors"
	"fmt"
)

// Result represents a transaction result code
type Result int

// Transaction result codes, organized by category: tes, tec, tef, tem, ter.
// Only tesSUCCESS changes the ledger. Every other code leaves state exactly
// as it was, including the sender's sequence.
const (
	// tesSUCCESS (0)
	TesSUCCESS Result = 0

	// tec codes (100-199): the request was well formed but ledger state
	// did not allow it
	TecNO_DST              Result = 124
	TecNO_PERMISSION       Result = 139
	TecNO_ENTRY            Result = 140
	TecINTERNAL            Result = 144
	TecDUPLICATE           Result = 149
	TecINSUFFICIENT_FUNDS  Result = 159
	TecNOT_ACTIVE          Result = 180
	TecAUTHORITY_MISMATCH  Result = 181
	TecPRICE_EXCEEDS_LIMIT Result = 182
	TecBALANCE_OVERFLOW    Result = 183

	// tef codes (-199 to -100): failure independent of the transaction body
	TefFAILURE       Result = -199
	TefBAD_AUTH      Result = -196
	TefINTERNAL      Result = -192
	TefPAST_SEQ      Result = -190
	TefBAD_SIGNATURE Result = -186

	// tem codes (-299 to -200): malformed transaction
	TemMALFORMED        Result = -299
	TemBAD_AMOUNT       Result = -298
	TemBAD_SEQUENCE     Result = -283
	TemBAD_SIGNATURE    Result = -282
	TemBAD_SRC_ACCOUNT  Result = -281
	TemDST_IS_SRC       Result = -279
	TemDST_NEEDED       Result = -278
	TemINVALID          Result = -277
	TemUNKNOWN          Result = -264
	TemINVALID_SCHEDULE Result = -240

	// ter codes (-99 to -1): may succeed if resubmitted later
	TerNO_ACCOUNT Result = -96
	TerPRE_SEQ    Result = -92
)

// String returns the string representation of the result code
func (r Result) String() string {
	switch r {
	case TesSUCCESS:
		return "tesSUCCESS"
	case TecNO_DST:
		return "tecNO_DST"
	case TecNO_PERMISSION:
		return "tecNO_PERMISSION"
	case TecNO_ENTRY:
		return "tecNO_ENTRY"
	case TecINTERNAL:
		return "tecINTERNAL"
	case TecDUPLICATE:
		return "tecDUPLICATE"
	case TecINSUFFICIENT_FUNDS:
		return "tecINSUFFICIENT_FUNDS"
	case TecNOT_ACTIVE:
		return "tecNOT_ACTIVE"
	case TecAUTHORITY_MISMATCH:
		return "tecAUTHORITY_MISMATCH"
	case TecPRICE_EXCEEDS_LIMIT:
		return "tecPRICE_EXCEEDS_LIMIT"
	case TecBALANCE_OVERFLOW:
		return "tecBALANCE_OVERFLOW"
	case TefFAILURE:
		return "tefFAILURE"
	case TefBAD_AUTH:
		return "tefBAD_AUTH"
	case TefINTERNAL:
		return "tefINTERNAL"
	case TefPAST_SEQ:
		return "tefPAST_SEQ"
	case TefBAD_SIGNATURE:
		return "tefBAD_SIGNATURE"
	case TemMALFORMED:
		return "temMALFORMED"
	case TemBAD_AMOUNT:
		return "temBAD_AMOUNT"
	case TemBAD_SEQUENCE:
		return "temBAD_SEQUENCE"
	case TemBAD_SIGNATURE:
		return "temBAD_SIGNATURE"
	case TemBAD_SRC_ACCOUNT:
		return "temBAD_SRC_ACCOUNT"
	case TemDST_IS_SRC:
		return "temDST_IS_SRC"
	case TemDST_NEEDED:
		return "temDST_NEEDED"
	case TemINVALID:
		return "temINVALID"
	case TemUNKNOWN:
		return "temUNKNOWN"
	case TemINVALID_SCHEDULE:
		return "temINVALID_SCHEDULE"
	case TerNO_ACCOUNT:
		return "terNO_ACCOUNT"
	case TerPRE_SEQ:
		return "terPRE_SEQ"
	default:
		return fmt.Sprintf("Unknown(%d)", r)
	}
}

// ParseResult maps a result token back to its code.
func ParseResult(token string) (Result, bool) {
	for _, r := range allResults {
		if r.String() == token {
			return r, true
		}
	}
	return 0, false
}

var allResults = []Result{
	TesSUCCESS,
	TecNO_DST, TecNO_PERMISSION, TecNO_ENTRY, TecINTERNAL, TecDUPLICATE,
	TecINSUFFICIENT_FUNDS, TecNOT_ACTIVE, TecAUTHORITY_MISMATCH,
	TecPRICE_EXCEEDS_LIMIT, TecBALANCE_OVERFLOW,
	TefFAILURE, TefBAD_AUTH, TefINTERNAL, TefPAST_SEQ, TefBAD_SIGNATURE,
	TemMALFORMED, TemBAD_AMOUNT, TemBAD_SEQUENCE, TemBAD_SIGNATURE,
	TemBAD_SRC_ACCOUNT, TemDST_IS_SRC, TemDST_NEEDED, TemINVALID, TemUNKNOWN,
	TemINVALID_SCHEDULE,
	TerNO_ACCOUNT, TerPRE_SEQ,
}

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (failure) code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsTer returns true if this is a ter (retry) code
func (r Result) IsTer() bool {
	return r >= -99 && r <= -1
}

// IsApplied returns true if the transaction changed the ledger.
func (r Result) IsApplied() bool {
	return r.IsSuccess()
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The transaction was applied."
	case TecNO_DST:
		return "Destination account does not exist."
	case TecNO_PERMISSION:
		return "No permission to perform requested operation."
	case TecNO_ENTRY:
		return "No matching entry found."
	case TecDUPLICATE:
		return "The escrow account is already in use by another auction."
	case TecINSUFFICIENT_FUNDS:
		return "Not enough funds available to complete requested transaction."
	case TecNOT_ACTIVE:
		return "The auction is not active."
	case TecAUTHORITY_MISMATCH:
		return "The escrow account is not controlled by the derived authority."
	case TecPRICE_EXCEEDS_LIMIT:
		return "The clearing price is above the buyer's limit."
	case TecBALANCE_OVERFLOW:
		return "The credit would overflow the destination balance."
	case TefBAD_AUTH:
		return "Signing key does not belong to the source account."
	case TefPAST_SEQ:
		return "Sequence number has already passed."
	case TefBAD_SIGNATURE:
		return "Invalid signature."
	case TemMALFORMED:
		return "Malformed transaction."
	case TemBAD_AMOUNT:
		return "Can only send positive amounts."
	case TemBAD_SEQUENCE:
		return "Sequence number must be non-zero."
	case TemBAD_SRC_ACCOUNT:
		return "Source account is missing or malformed."
	case TemDST_IS_SRC:
		return "Destination may not be source."
	case TemDST_NEEDED:
		return "Destination is required."
	case TemINVALID:
		return "The transaction is ill-formed."
	case TemUNKNOWN:
		return "The transaction type is not supported."
	case TemINVALID_SCHEDULE:
		return "Price or time bounds are invalid."
	case TerNO_ACCOUNT:
		return "The source account does not exist."
	case TerPRE_SEQ:
		return "Missing/inapplicable prior transaction."
	default:
		return r.String()
	}
}

// Error carries a result code through Go error values.
type Error struct {
	Code   Result
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Code.String() + ": " + e.Detail
	}
	return e.Code.String() + ": " + e.Code.Message()
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Errorf builds an *Error with a formatted detail.
func Errorf(code Result, format string, args ...any) error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// Err returns nil for success and an *Error otherwise.
func (r Result) Err() error {
	if r.IsSuccess() {
		return nil
	}
	return &Error{Code: r}
}

// ResultOf extracts the result code carried by err, or fallback when err
// carries none.
func ResultOf(err error, fallback Result) Result {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return fallback
}

// Sentinels for errors.Is.
var (
	ErrInvalidSchedule   = &Error{Code: TemINVALID_SCHEDULE}
	ErrInvalidAmount     = &Error{Code: TemBAD_AMOUNT}
	ErrUnauthorized      = &Error{Code: TecNO_PERMISSION}
	ErrNotActive         = &Error{Code: TecNOT_ACTIVE}
	ErrAuthorityMismatch = &Error{Code: TecAUTHORITY_MISMATCH}
	ErrInsufficientFunds = &Error{Code: TecINSUFFICIENT_FUNDS}
	ErrAlreadyInUse      = &Error{Code: TecDUPLICATE}
)
