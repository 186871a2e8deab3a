// Package builders provides fluent transaction builder helpers for testing.
//
// Builders fill in sensible defaults so a test only names the fields it
// cares about:
//
//	create := builders.AuctionCreate(seller, mint).
//	    Amount(5).
//	    Prices(100, 10).
//	    Window(0, 100).
//	    Build()
//
//	settle := builders.AuctionSettle(buyer, create.EscrowAccount()).
//	    MaxPrice(60).
//	    Build()
//
// Sequence numbers are left unset unless Sequence is called; TestEnv
// fills them from the ledger at submit time.
package builders
