package service

import (
	"sync"
	"sync/atomic"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// Stream names a class of events.
type Stream string

const (
	StreamTransactions Stream = "transactions"
	StreamAuctions     Stream = "auctions"
)

// TransactionEvent reports one processed submission.
type TransactionEvent struct {
	Hash      [32]byte
	Type      string
	Account   crypto.AccountID
	Sequence  uint32
	Result    tx.Result
	Applied   bool
	ClockTime int64
}

// AuctionEvent reports an auction record written by an applied
// transaction.
type AuctionEvent struct {
	Escrow    [32]byte
	Auction   entries.Auction
	TxHash    [32]byte
	ClockTime int64
}

// Event is what subscribers receive. Exactly one field is set.
type Event struct {
	Stream      Stream
	Transaction *TransactionEvent
	Auction     *AuctionEvent
}

// Subscription delivers events until cancelled.
type Subscription struct {
	C <-chan Event

	id     uint64
	ch     chan Event
	filter map[Stream]bool
	p      *EventPublisher
}

// Cancel stops delivery and closes C.
func (s *Subscription) Cancel() {
	s.p.remove(s.id)
}

// EventPublisher fans events out to subscribers. A subscriber whose buffer
// is full misses the event rather than blocking the ledger.
type EventPublisher struct {
	mu      sync.RWMutex
	nextID  uint64
	subs    map[uint64]*Subscription
	dropped atomic.Uint64
}

// NewEventPublisher creates a new event publisher.
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{subs: make(map[uint64]*Subscription)}
}

// Subscribe registers for the given streams with a buffer of size events.
func (p *EventPublisher) Subscribe(size int, streams ...Stream) *Subscription {
	if size <= 0 {
		size = 64
	}
	ch := make(chan Event, size)
	filter := make(map[Stream]bool, len(streams))
	for _, s := range streams {
		filter[s] = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	sub := &Subscription{C: ch, id: p.nextID, ch: ch, filter: filter, p: p}
	p.subs[sub.id] = sub
	return sub
}

func (p *EventPublisher) remove(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sub, ok := p.subs[id]; ok {
		delete(p.subs, id)
		close(sub.ch)
	}
}

// Publish delivers ev to every subscriber of its stream.
func (p *EventPublisher) Publish(ev Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, sub := range p.subs {
		if !sub.filter[ev.Stream] {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			p.dropped.Add(1)
		}
	}
}

// Dropped returns how many deliveries were skipped for full buffers.
func (p *EventPublisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Subscribers returns the number of live subscriptions.
func (p *EventPublisher) Subscribers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}
