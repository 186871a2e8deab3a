package entries

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry"
)

var (
	// ErrWrongType is returned when decoding bytes of a different entry type.
	ErrWrongType = errors.New("ledger entry type mismatch")
	// ErrTruncated is returned for data shorter than the type header.
	ErrTruncated = errors.New("ledger entry truncated")
)

var msgpack = func() *codec.MsgpackHandle {
	h := new(codec.MsgpackHandle)
	h.Canonical = true
	h.WriteExt = true
	return h
}()

// Encode serializes an entry as a two byte big-endian type header followed
// by the msgpack body.
func Encode(e entry.Entry) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", e.Type(), err)
	}
	var body []byte
	if err := codec.NewEncoderBytes(&body, msgpack).Encode(e); err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Type(), err)
	}
	buf := make([]byte, 2, 2+len(body))
	binary.BigEndian.PutUint16(buf, uint16(e.Type()))
	return append(buf, body...), nil
}

// Decode parses data into e, checking the type header first.
func Decode(data []byte, e entry.Entry) error {
	t, err := PeekType(data)
	if err != nil {
		return err
	}
	if t != e.Type() {
		return fmt.Errorf("%w: have %s, want %s", ErrWrongType, t, e.Type())
	}
	if err := codec.NewDecoderBytes(data[2:], msgpack).Decode(e); err != nil {
		return fmt.Errorf("decode %s: %w", t, err)
	}
	return nil
}

// PeekType returns the entry type stored in data.
func PeekType(data []byte) (entry.Type, error) {
	if len(data) < 2 {
		return 0, ErrTruncated
	}
	return entry.Type(binary.BigEndian.Uint16(data)), nil
}
