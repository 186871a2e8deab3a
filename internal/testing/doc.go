// Package testing provides test infrastructure for auction ledger tests.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: a ledger service on an in-memory store with a manual clock
//   - Account: deterministic test accounts with key pairs
//   - Assertions: helpers for balances, result codes and auction state
//
// Transactions are built with the builders subpackage.
//
// # Basic Usage
//
//	func TestSettle(t *testing.T) {
//	    env := testing.NewTestEnv(t)
//
//	    seller := env.Account("seller")
//	    buyer := env.Account("buyer")
//	    env.Fund(seller, buyer)
//
//	    mint := env.CreateMint(seller, 0)
//	    env.MintTo(seller, mint, seller, 5)
//
//	    create := builders.AuctionCreate(seller.ID, mint).Amount(5).Build()
//	    testing.RequireTxSuccess(t, env.Submit(create))
//
//	    env.SetTime(50)
//	    result := env.Submit(builders.AuctionSettle(buyer.ID, create.EscrowAccount()).Build())
//	    testing.RequireTxSuccess(t, result)
//	}
//
// # Clock
//
// The environment clock starts at 0 and only moves when the test calls
// SetTime or AdvanceTime. Every submission reads it exactly once.
//
// # Signing
//
// Submit fills in the sender's next sequence when the transaction has
// none and signs with the sender's key, so signature checking stays on.
// Transactions from accounts the environment does not know are submitted
// unsigned and fail the signature check.
package testing
