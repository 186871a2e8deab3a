package tx

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/LeJamon/goDutchAuction/internal/crypto"
	common "github.com/LeJamon/goDutchAuction/internal/crypto/common"
)

var (
	hashPrefixTx   = []byte{'T', 'X', 'N', 0x00}
	hashPrefixSign = []byte{'S', 'T', 'X', 0x00}
)

var canonical = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Flatten returns the JSON object form of a transaction with numbers kept
// as literals.
func Flatten(t Transaction) (map[string]any, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

func encode(t Transaction, withSignature bool) ([]byte, error) {
	m, err := Flatten(t)
	if err != nil {
		return nil, err
	}
	if !withSignature {
		delete(m, "TxnSignature")
	}
	return canonical.Marshal(m)
}

// SigningData returns the bytes a signature covers: every field except
// TxnSignature in core deterministic CBOR.
func SigningData(t Transaction) ([]byte, error) {
	body, err := encode(t, false)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, hashPrefixSign...), body...), nil
}

// Hash returns the transaction ID, which covers the signature.
func Hash(t Transaction) ([32]byte, error) {
	body, err := encode(t, true)
	if err != nil {
		return [32]byte{}, err
	}
	return common.Sha512Half(hashPrefixTx, body), nil
}

// Sign fills SigningPubKey and TxnSignature using key.
func Sign(t Transaction, key *crypto.KeyPair) error {
	c := t.GetCommon()
	if c.Account != key.AccountID() {
		return fmt.Errorf("key does not control %s", c.Account)
	}
	c.SigningPubKey = key.PublicKeyHex()
	c.TxnSignature = ""
	data, err := SigningData(t)
	if err != nil {
		return err
	}
	c.TxnSignature = strings.ToUpper(hex.EncodeToString(key.Sign(data)))
	return nil
}

// ErrNotSigned is returned by VerifySignature for an unsigned transaction.
var ErrNotSigned = errors.New("transaction is not signed")

// VerifySignature checks that SigningPubKey controls Account and that
// TxnSignature is valid for it. The returned error carries tefBAD_AUTH or
// tefBAD_SIGNATURE.
func VerifySignature(t Transaction) error {
	c := t.GetCommon()
	if c.SigningPubKey == "" || c.TxnSignature == "" {
		return &Error{Code: TefBAD_SIGNATURE, Detail: ErrNotSigned.Error()}
	}
	pub, err := hex.DecodeString(c.SigningPubKey)
	if err != nil {
		return Errorf(TemBAD_SIGNATURE, "SigningPubKey is not hex")
	}
	sig, err := hex.DecodeString(c.TxnSignature)
	if err != nil {
		return Errorf(TemBAD_SIGNATURE, "TxnSignature is not hex")
	}
	if crypto.CalcAccountID(pub) != c.Account {
		return &Error{Code: TefBAD_AUTH}
	}
	data, err := SigningData(t)
	if err != nil {
		return Errorf(TefINTERNAL, "signing data: %v", err)
	}
	if err := crypto.Verify(pub, data, sig); err != nil {
		return Errorf(TefBAD_SIGNATURE, "%v", err)
	}
	return nil
}
