// Package service runs the ledger: it orders submissions, reads the clock
// once per submission, applies the transaction engine and commits the
// result to the store.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LeJamon/goDutchAuction/internal/clock"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/genesis"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
	"github.com/LeJamon/goDutchAuction/internal/storage/journal"
	"github.com/LeJamon/goDutchAuction/internal/storage/kvstore"
)

// Common errors
var (
	ErrNotStarted      = errors.New("ledger service not started")
	ErrClockNotManual  = errors.New("clock source cannot be advanced")
	ErrAccountNotFound = errors.New("account not found")
	ErrMintNotFound    = errors.New("mint not found")
	ErrAuctionNotFound = errors.New("auction not found")
)

// Config holds configuration for the ledger Service
type Config struct {
	Store   kvstore.DB
	Clock   clock.Source
	Journal journal.Journal
	Logger  *slog.Logger

	Genesis genesis.Config

	// SkipSignatureVerification accepts unsigned transactions (tests only)
	SkipSignatureVerification bool
}

// Service manages the ledger lifecycle
type Service struct {
	// mu orders submissions from this process
	mu sync.Mutex

	config  Config
	store   kvstore.DB
	clock   clock.Source
	journal journal.Journal
	logger  *slog.Logger
	events  *EventPublisher

	master    crypto.AccountID
	started   atomic.Bool
	startedAt time.Time

	submitted atomic.Uint64
	applied   atomic.Uint64
	conflicts atomic.Uint64
}

// New creates a new ledger Service
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("ledger service: store is required")
	}
	if cfg.Clock == nil {
		return nil, errors.New("ledger service: clock is required")
	}
	if cfg.Journal == nil {
		cfg.Journal = journal.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		config:  cfg,
		store:   cfg.Store,
		clock:   cfg.Clock,
		journal: cfg.Journal,
		logger:  cfg.Logger.With("component", "ledger"),
		events:  NewEventPublisher(),
	}, nil
}

// Start initializes the ledger, funding the master account on first run.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := genesis.Create(ctx, s.store, s.config.Genesis)
	if err != nil {
		return fmt.Errorf("failed to create genesis: %w", err)
	}
	s.master = res.Master
	s.startedAt = time.Now()
	s.started.Store(true)
	if res.Created {
		s.logger.Info("genesis created", "master", res.Master, "supply", s.config.Genesis.Supply)
	} else {
		s.logger.Info("ledger opened", "master", res.Master)
	}
	return nil
}

// Started reports whether Start has completed.
func (s *Service) Started() bool {
	return s.started.Load()
}

// Events returns the publisher transaction and auction events go to.
func (s *Service) Events() *EventPublisher {
	return s.events
}

// SubmitResult is the outcome of SubmitTransaction
type SubmitResult struct {
	Result    tx.Result
	Applied   bool
	TxHash    [32]byte
	ClockTime int64
	Message   string
}

// SubmitTransaction applies t against the current ledger state and
// commits it. A non-success result code is not an error: the ledger is
// unchanged and the result says why. Errors are reserved for clock, store
// and commit failures, which are returned wrapped but otherwise as is.
func (s *Service) SubmitTransaction(ctx context.Context, t tx.Transaction) (*SubmitResult, error) {
	if !s.started.Load() {
		return nil, ErrNotStarted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted.Add(1)

	now, err := s.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("read clock: %w", err)
	}

	engine := tx.NewEngine(ledger.NewState(ctx, s.store), tx.EngineConfig{
		Now:                       now,
		SkipSignatureVerification: s.config.SkipSignatureVerification,
	})
	res := engine.Apply(t)
	if res.Result == tx.TefINTERNAL {
		s.logger.Error("transaction failed internally", "type", t.TxType(), "account", t.GetCommon().Account)
	}

	if res.Applied {
		if err := ledger.Commit(ctx, s.store, res.Changes, res.Observed); err != nil {
			if errors.Is(err, kvstore.ErrConflict) {
				s.conflicts.Add(1)
			}
			s.logger.Warn("commit failed", "type", t.TxType(), "account", res.Account, "err", err)
			return nil, err
		}
		s.applied.Add(1)
	}

	s.logger.Debug("transaction processed",
		"type", t.TxType(),
		"account", res.Account,
		"sequence", res.Sequence,
		"result", res.Result,
		"now", now,
	)

	s.record(ctx, t, res, now)
	s.publish(t, res, now)

	return &SubmitResult{
		Result:    res.Result,
		Applied:   res.Applied,
		TxHash:    res.TxHash,
		ClockTime: now,
		Message:   res.Message,
	}, nil
}

// record journals a processed submission. The ledger has already moved
// on, so a journal failure is logged and not returned.
func (s *Service) record(ctx context.Context, t tx.Transaction, res tx.ApplyResult, now int64) {
	body, err := json.Marshal(t)
	if err != nil {
		s.logger.Warn("journal: marshal transaction", "err", err)
		return
	}
	err = s.journal.Append(ctx, journal.Record{
		TxHash:    res.TxHash,
		Account:   t.GetCommon().Account,
		Sequence:  t.GetCommon().GetSequence(),
		TxType:    t.TxType().String(),
		Result:    res.Result.String(),
		Applied:   res.Applied,
		ClockTime: now,
		TxJSON:    body,
	})
	if err != nil {
		s.logger.Warn("journal append failed", "err", err)
	}
}

func (s *Service) publish(t tx.Transaction, res tx.ApplyResult, now int64) {
	s.events.Publish(Event{
		Stream: StreamTransactions,
		Transaction: &TransactionEvent{
			Hash:      res.TxHash,
			Type:      t.TxType().String(),
			Account:   t.GetCommon().Account,
			Sequence:  t.GetCommon().GetSequence(),
			Result:    res.Result,
			Applied:   res.Applied,
			ClockTime: now,
		},
	})
	for _, c := range res.Changes {
		if c.Type != entry.TypeAuction || c.Action == tx.ActionErase {
			continue
		}
		var rec entries.Auction
		if err := entries.Decode(c.Current, &rec); err != nil {
			s.logger.Warn("decode auction for event", "err", err)
			continue
		}
		s.events.Publish(Event{
			Stream:  StreamAuctions,
			Auction: &AuctionEvent{Escrow: rec.EscrowAccount, Auction: rec, TxHash: res.TxHash, ClockTime: now},
		})
	}
}

// AdvanceClock moves a manual clock forward.
func (s *Service) AdvanceClock(seconds int64) (int64, error) {
	a, ok := s.clock.(clock.Advancer)
	if !ok || !clock.CanAdvance(s.clock) {
		return 0, ErrClockNotManual
	}
	now, err := a.Advance(seconds)
	if err != nil {
		return 0, err
	}
	s.logger.Info("clock advanced", "seconds", seconds, "now", now)
	return now, nil
}

// Now reads the ledger clock.
func (s *Service) Now(ctx context.Context) (int64, error) {
	return s.clock.Now(ctx)
}

// ServerInfo summarizes the running service.
type ServerInfo struct {
	Master      crypto.AccountID
	Uptime      time.Duration
	Submitted   uint64
	Applied     uint64
	Conflicts   uint64
	Subscribers int
	ClockTime   int64
	ManualClock bool
}

// GetServerInfo returns a snapshot of the service counters.
func (s *Service) GetServerInfo(ctx context.Context) ServerInfo {
	manual := clock.CanAdvance(s.clock)
	info := ServerInfo{
		Master:      s.master,
		Submitted:   s.submitted.Load(),
		Applied:     s.applied.Load(),
		Conflicts:   s.conflicts.Load(),
		Subscribers: s.events.Subscribers(),
		ManualClock: manual,
	}
	if s.started.Load() {
		info.Uptime = time.Since(s.startedAt)
	}
	if now, err := s.clock.Now(ctx); err == nil {
		info.ClockTime = now
	}
	return info
}
