// Package clock supplies the ledger's notion of the current instant, in
// whole seconds since the Unix epoch.
package clock

//go:generate mockgen -destination=mock_source.go -package=clock . Source

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

var (
	// ErrRegression is returned by a strict Monotonic source when the
	// underlying reading goes backwards
	ErrRegression = errors.New("clock regression")

	// ErrUnavailable is returned by a Manual source put into failure mode
	ErrUnavailable = errors.New("clock unavailable")

	// ErrOverflow is returned by Advance when the reading would pass
	// math.MaxInt64
	ErrOverflow = errors.New("clock overflow")
)

// Source reads the current instant. A reading may fail; callers surface
// the error instead of substituting a value.
type Source interface {
	Now(ctx context.Context) (int64, error)
}

// Advancer is implemented by sources that can be moved forward by hand.
type Advancer interface {
	Advance(seconds int64) (int64, error)
}

// System reads the host clock.
type System struct {
	// Granularity truncates readings; zero means one second
	Granularity time.Duration
}

func (s System) Now(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	now := time.Now()
	if s.Granularity > time.Second {
		now = now.Truncate(s.Granularity)
	}
	return now.Unix(), nil
}

// Manual is a clock that only moves when told to.
type Manual struct {
	mu  sync.RWMutex
	now int64
	err error
}

// NewManual returns a manual clock reading start.
func NewManual(start int64) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.now, nil
}

// Set moves the clock to t, backwards if t is earlier.
func (m *Manual) Set(t int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock forward and returns the new reading.
func (m *Manual) Advance(seconds int64) (int64, error) {
	if seconds < 0 {
		return 0, fmt.Errorf("%w: cannot advance by %d", ErrRegression, seconds)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.now > math.MaxInt64-seconds {
		return m.now, fmt.Errorf("%w: advancing %d by %d", ErrOverflow, m.now, seconds)
	}
	m.now += seconds
	return m.now, nil
}

// Fail makes every reading return err until Recover is called. A nil err
// means ErrUnavailable.
func (m *Manual) Fail(err error) {
	if err == nil {
		err = ErrUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Recover ends failure mode.
func (m *Manual) Recover() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = nil
}

// Monotonic wraps a source so readings never go backwards. A regression
// is clamped to the highest reading seen, or rejected with ErrRegression
// when Strict is set.
type Monotonic struct {
	src    Source
	Strict bool

	mu   sync.Mutex
	last int64
	seen bool
}

// NewMonotonic wraps src.
func NewMonotonic(src Source) *Monotonic {
	return &Monotonic{src: src}
}

func (m *Monotonic) Now(ctx context.Context) (int64, error) {
	now, err := m.src.Now(ctx)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen && now < m.last {
		if m.Strict {
			return 0, fmt.Errorf("%w: %d after %d", ErrRegression, now, m.last)
		}
		return m.last, nil
	}
	m.last, m.seen = now, true
	return now, nil
}

// Advance forwards to the wrapped source when it is an Advancer.
func (m *Monotonic) Advance(seconds int64) (int64, error) {
	a, ok := m.src.(Advancer)
	if !ok {
		return 0, errors.New("clock source cannot be advanced")
	}
	return a.Advance(seconds)
}

// CanAdvance reports whether src can be moved by hand, looking through
// Monotonic wrappers.
func CanAdvance(src Source) bool {
	switch s := src.(type) {
	case *Monotonic:
		return CanAdvance(s.src)
	case Advancer:
		return true
	default:
		return false
	}
}
