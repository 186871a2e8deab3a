// Package payment_test contains integration tests for native payments.
package payment_test

import (
	"testing"

	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	jtx "github.com/LeJamon/goDutchAuction/internal/testing"
	"github.com/LeJamon/goDutchAuction/internal/testing/builders"
)

func TestPaymentMovesBalance(t *testing.T) {
	env := jtx.NewTestEnv(t)
	alice := env.Account("alice")
	bob := env.Account("bob")
	env.Fund(alice, bob)

	jtx.RequireTxSuccess(t, env.Submit(builders.Pay(alice.ID, bob.ID, 300).Memo("rent").Build()))

	jtx.RequireBalance(t, env, alice, jtx.DefaultFunding-300)
	jtx.RequireBalance(t, env, bob, jtx.DefaultFunding+300)
	jtx.RequireSequence(t, env, alice, 2)
	jtx.RequireSequence(t, env, bob, 1)
}

func TestPaymentCreatesDestination(t *testing.T) {
	env := jtx.NewTestEnv(t)
	alice := env.Account("alice")
	env.Fund(alice)

	carol := jtx.NewAccount("carol")
	jtx.RequireTxSuccess(t, env.Submit(builders.Pay(alice.ID, carol.ID, 5).Build()))
	jtx.RequireBalance(t, env, carol, 5)
	jtx.RequireSequence(t, env, carol, 1)
}

func TestPaymentFailures(t *testing.T) {
	env := jtx.NewTestEnv(t)
	alice := env.Account("alice")
	bob := env.Account("bob")
	env.Fund(alice, bob)

	jtx.AssertNoBalanceChange(t, env, alice, func() {
		jtx.RequireTxFail(t, env.Submit(builders.Pay(alice.ID, bob.ID, jtx.DefaultFunding+1).Build()), tx.TecINSUFFICIENT_FUNDS)
		jtx.RequireTxFail(t, env.Submit(builders.Pay(alice.ID, bob.ID, 0).Build()), tx.TemBAD_AMOUNT)
		jtx.RequireTxFail(t, env.Submit(builders.Pay(alice.ID, alice.ID, 1).Build()), tx.TemDST_IS_SRC)
	})
	jtx.RequireSequence(t, env, alice, 1)
}

func TestPaymentSequenceRules(t *testing.T) {
	env := jtx.NewTestEnv(t)
	alice := env.Account("alice")
	bob := env.Account("bob")
	env.Fund(alice, bob)

	jtx.RequireTxFail(t, env.Submit(builders.Pay(alice.ID, bob.ID, 1).Sequence(2).Build()), tx.TerPRE_SEQ)
	jtx.RequireTxSuccess(t, env.Submit(builders.Pay(alice.ID, bob.ID, 1).Sequence(1).Build()))
	jtx.RequireTxFail(t, env.Submit(builders.Pay(alice.ID, bob.ID, 1).Sequence(1).Build()), tx.TefPAST_SEQ)
}
