package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// noteTx is a minimal transactor that bumps the sender's OwnerCount, or
// fails with the configured result after doing so.
type noteTx struct {
	BaseTx
	Fail Result `json:"-"`
}

func (n *noteTx) TxType() Type { return TypePayment }

func (n *noteTx) Apply(ctx *ApplyContext) Result {
	k := keylet.Account(ctx.AccountID)
	acct, err := ReadEntry[entries.AccountRoot](ctx.View, k)
	if err != nil || acct == nil {
		return TefINTERNAL
	}
	acct.OwnerCount++
	if err := UpdateEntry(ctx.View, k, acct); err != nil {
		return TefINTERNAL
	}
	if n.Fail != TesSUCCESS {
		return n.Fail
	}
	return TesSUCCESS
}

func newNote(account crypto.AccountID, seq uint32) *noteTx {
	n := &noteTx{BaseTx: *NewBaseTx(TypePayment, account)}
	n.SetSequence(seq)
	return n
}

func testKeyPair(t *testing.T, seed string) *crypto.KeyPair {
	t.Helper()
	kp, err := crypto.NewKeyPairFromSeed([]byte(seed))
	require.NoError(t, err)
	return kp
}

func fundedView(t *testing.T, id crypto.AccountID, seq uint32) mapView {
	t.Helper()
	data, err := entries.Encode(&entries.AccountRoot{Account: id, Balance: 1000, Sequence: seq})
	require.NoError(t, err)
	return mapView{keylet.Account(id).Key: data}
}

func readAccount(t *testing.T, v mapView, id crypto.AccountID) *entries.AccountRoot {
	t.Helper()
	acct, err := ReadEntry[entries.AccountRoot](v, keylet.Account(id))
	require.NoError(t, err)
	require.NotNil(t, acct)
	return acct
}

func TestEngineAppliesAndConsumesSequence(t *testing.T) {
	kp := testKeyPair(t, "alice")
	view := fundedView(t, kp.AccountID(), 5)

	note := newNote(kp.AccountID(), 5)
	require.NoError(t, Sign(note, kp))

	res := NewEngine(view, EngineConfig{Now: 10}).Apply(note)
	require.Equal(t, TesSUCCESS, res.Result, res.Message)
	assert.True(t, res.Applied)
	assert.Equal(t, uint32(5), res.Sequence)
	assert.NotEqual(t, [32]byte{}, res.TxHash)

	// The engine left the base alone.
	assert.Equal(t, uint32(5), readAccount(t, view, kp.AccountID()).Sequence)

	require.Len(t, res.Changes, 1)
	assert.Equal(t, ActionModify, res.Changes[0].Action)
	require.Len(t, res.Observed, 1)

	view.commit(t, res.Changes)
	acct := readAccount(t, view, kp.AccountID())
	assert.Equal(t, uint32(6), acct.Sequence)
	assert.Equal(t, uint32(1), acct.OwnerCount)
}

func TestEngineFailureHasNoSideEffects(t *testing.T) {
	kp := testKeyPair(t, "alice")
	view := fundedView(t, kp.AccountID(), 1)

	note := newNote(kp.AccountID(), 1)
	note.Fail = TecNOT_ACTIVE
	require.NoError(t, Sign(note, kp))

	res := NewEngine(view, EngineConfig{}).Apply(note)
	assert.Equal(t, TecNOT_ACTIVE, res.Result)
	assert.False(t, res.Applied)
	assert.Empty(t, res.Changes)
	assert.Empty(t, res.Observed)
	assert.Equal(t, uint32(1), readAccount(t, view, kp.AccountID()).Sequence)
}

func TestEngineSequenceChecks(t *testing.T) {
	kp := testKeyPair(t, "alice")
	view := fundedView(t, kp.AccountID(), 5)
	engine := NewEngine(view, EngineConfig{SkipSignatureVerification: true})

	assert.Equal(t, TefPAST_SEQ, engine.Apply(newNote(kp.AccountID(), 4)).Result)
	assert.Equal(t, TerPRE_SEQ, engine.Apply(newNote(kp.AccountID(), 6)).Result)

	missing := newNote(kp.AccountID(), 5)
	missing.Sequence = nil
	assert.Equal(t, TemBAD_SEQUENCE, engine.Apply(missing).Result)

	assert.Equal(t, TerNO_ACCOUNT, engine.Apply(newNote(crypto.AccountID{0x42}, 1)).Result)
}

func TestEngineSignatureChecks(t *testing.T) {
	alice := testKeyPair(t, "alice")
	mallory := testKeyPair(t, "mallory")
	view := fundedView(t, alice.AccountID(), 1)
	engine := NewEngine(view, EngineConfig{})

	unsigned := newNote(alice.AccountID(), 1)
	assert.Equal(t, TefBAD_SIGNATURE, engine.Apply(unsigned).Result)

	// A key that does not control the account.
	forged := newNote(alice.AccountID(), 1)
	forged.SigningPubKey = mallory.PublicKeyHex()
	forged.Account = mallory.AccountID()
	require.NoError(t, Sign(forged, mallory))
	forged.Account = alice.AccountID()
	assert.Equal(t, TefBAD_AUTH, engine.Apply(forged).Result)

	// A body changed after signing.
	tampered := newNote(alice.AccountID(), 1)
	require.NoError(t, Sign(tampered, alice))
	tampered.Memo = "changed"
	assert.Equal(t, TefBAD_SIGNATURE, engine.Apply(tampered).Result)
}

func TestSignRejectsForeignKey(t *testing.T) {
	alice := testKeyPair(t, "alice")
	bob := testKeyPair(t, "bob")
	assert.Error(t, Sign(newNote(alice.AccountID(), 1), bob))
}

func TestHashCoversSignature(t *testing.T) {
	kp := testKeyPair(t, "alice")
	note := newNote(kp.AccountID(), 1)
	before, err := Hash(note)
	require.NoError(t, err)

	require.NoError(t, Sign(note, kp))
	after, err := Hash(note)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	again, err := Hash(note)
	require.NoError(t, err)
	assert.Equal(t, after, again)
}
