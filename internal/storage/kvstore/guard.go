package kvstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
)

// CheckGuards reads every guarded key through read and returns ErrConflict
// on the first mismatch. Stores that serialize their own writes call it
// while holding their write lock.
func CheckGuards(ctx context.Context, read func(ctx context.Context, key []byte) ([]byte, error), guards []Guard) error {
	for _, g := range guards {
		cur, err := read(ctx, g.Key)
		switch {
		case errors.Is(err, ErrNotFound):
			cur = nil
		case err != nil:
			return err
		}
		if (cur == nil) != (g.Value == nil) || !bytes.Equal(cur, g.Value) {
			return fmt.Errorf("%w: key %x changed", ErrConflict, g.Key)
		}
	}
	return nil
}
