package tx

import (
	"bytes"
	"errors"
	"sort"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
)

var (
	// ErrEntryExists is returned when inserting over a live entry.
	ErrEntryExists = errors.New("entry already exists")
	// ErrEntryNotFound is returned when updating or erasing a missing entry.
	ErrEntryNotFound = errors.New("entry not found")
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "CreatedNode"
	case ActionModify:
		return "ModifiedNode"
	case ActionErase:
		return "DeletedNode"
	default:
		return "Cached"
	}
}

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Type     entry.Type
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state
}

// Change is one committed modification.
type Change struct {
	Key      [32]byte
	Type     entry.Type
	Action   Action
	Original []byte
	Current  []byte
}

// Observation records what the table saw in the base view for one key.
// Value is nil when the key was absent. A commit is only valid while every
// observation still holds.
type Observation struct {
	Key   [32]byte
	Value []byte
}

// ApplyStateTable buffers every read and write of one transaction on top
// of a read-only base view. Nothing reaches the base until the caller
// commits the change set returned by Apply, so a failed transaction is
// discarded by dropping the table.
type ApplyStateTable struct {
	base   ReadView
	items  map[[32]byte]*TrackedEntry
	misses map[[32]byte]struct{}
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base view
func NewApplyStateTable(base ReadView) *ApplyStateTable {
	return &ApplyStateTable{
		base:   base,
		items:  make(map[[32]byte]*TrackedEntry),
		misses: make(map[[32]byte]struct{}),
	}
}

// load fetches a key from the base and starts tracking it.
func (t *ApplyStateTable) load(k keylet.Keylet) (*TrackedEntry, error) {
	if e, ok := t.items[k.Key]; ok {
		return e, nil
	}
	if _, ok := t.misses[k.Key]; ok {
		return nil, nil
	}
	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}
	if data == nil {
		t.misses[k.Key] = struct{}{}
		return nil, nil
	}
	e := &TrackedEntry{Type: k.Type, Action: ActionCache, Original: data, Current: data}
	t.items[k.Key] = e
	return e, nil
}

// Read reads a ledger entry. It returns nil, nil when the entry is absent.
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	e, err := t.load(k)
	if err != nil || e == nil || e.Action == ActionErase {
		return nil, err
	}
	return e.Current, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	e, err := t.load(k)
	if err != nil {
		return false, err
	}
	return e != nil && e.Action != ActionErase, nil
}

// Insert adds a new entry
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	e, err := t.load(k)
	if err != nil {
		return err
	}
	if e == nil {
		// The miss stays recorded: the insert depends on the key being absent.
		t.items[k.Key] = &TrackedEntry{Type: k.Type, Action: ActionInsert, Current: data}
		return nil
	}
	if e.Action != ActionErase {
		return ErrEntryExists
	}
	// Re-inserting a deleted entry becomes a modify
	e.Action = ActionModify
	e.Current = data
	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	e, err := t.load(k)
	if err != nil {
		return err
	}
	if e == nil || e.Action == ActionErase {
		return ErrEntryNotFound
	}
	if e.Action == ActionCache {
		e.Action = ActionModify
	}
	e.Current = data
	return nil
}

// Erase removes an entry
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	e, err := t.load(k)
	if err != nil {
		return err
	}
	if e == nil || e.Action == ActionErase {
		return ErrEntryNotFound
	}
	if e.Action == ActionInsert {
		// Inserting then deleting = no change
		delete(t.items, k.Key)
		return nil
	}
	e.Action = ActionErase
	return nil
}

// Apply returns the net changes and every base observation they depend
// on, both sorted by key.
func (t *ApplyStateTable) Apply() ([]Change, []Observation) {
	changes := make([]Change, 0, len(t.items))
	observed := make([]Observation, 0, len(t.items)+len(t.misses))

	for key, e := range t.items {
		if e.Action != ActionInsert {
			observed = append(observed, Observation{Key: key, Value: e.Original})
		}
		switch e.Action {
		case ActionCache:
			continue
		case ActionModify:
			if bytes.Equal(e.Original, e.Current) {
				continue
			}
		}
		changes = append(changes, Change{
			Key:      key,
			Type:     e.Type,
			Action:   e.Action,
			Original: e.Original,
			Current:  e.Current,
		})
	}
	for key := range t.misses {
		observed = append(observed, Observation{Key: key})
	}

	sort.Slice(changes, func(i, j int) bool { return bytes.Compare(changes[i].Key[:], changes[j].Key[:]) < 0 })
	sort.Slice(observed, func(i, j int) bool { return bytes.Compare(observed[i].Key[:], observed[j].Key[:]) < 0 })
	return changes, observed
}
