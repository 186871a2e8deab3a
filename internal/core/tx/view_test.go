package tx

import (
	"testing"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
)

// mapView is a base ReadView backed by a map.
type mapView map[[32]byte][]byte

func (m mapView) Read(k keylet.Keylet) ([]byte, error) {
	return m[k.Key], nil
}

func (m mapView) Exists(k keylet.Keylet) (bool, error) {
	_, ok := m[k.Key]
	return ok, nil
}

// commit writes a change set back into the map.
func (m mapView) commit(t *testing.T, changes []Change) {
	t.Helper()
	for _, c := range changes {
		if c.Action == ActionErase {
			delete(m, c.Key)
			continue
		}
		m[c.Key] = c.Current
	}
}
