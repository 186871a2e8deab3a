package kvstoretest

import (
	"context"

	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
)

// Plain hides any conditional batch of the wrapped store, leaving only the
// kvstore.DB methods.
type Plain struct {
	kvstore.DB
}

// Hooked is Plain with a callback run before each batch reaches the
// wrapped store.
type Hooked struct {
	kvstore.DB
	BeforeBatch func(ops []kvstore.BatchOperation)
}

func (h *Hooked) Batch(ctx context.Context, ops []kvstore.BatchOperation) error {
	if h.BeforeBatch != nil {
		h.BeforeBatch(ops)
	}
	return h.DB.Batch(ctx, ops)
}
