package service

import (
	"context"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goDutchAuction/internal/core/ledger/keylet"
	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/auction"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/token"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
	"github.com/LeJamon/goDutchAuction/internal/storage/journal"
)

// GetAccountInfo returns the account root of id.
func (s *Service) GetAccountInfo(ctx context.Context, id crypto.AccountID) (*entries.AccountRoot, error) {
	acct, err := tx.ReadEntry[entries.AccountRoot](ledger.NewState(ctx, s.store), keylet.Account(id))
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrAccountNotFound
	}
	return acct, nil
}

// GetMint returns the mint with the given ID.
func (s *Service) GetMint(ctx context.Context, id crypto.AccountID) (*entries.Mint, error) {
	m, err := tx.ReadEntry[entries.Mint](ledger.NewState(ctx, s.store), keylet.Mint(id))
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMintNotFound
	}
	return m, nil
}

// GetTokenBalance returns owner's holding of mint together with the mint.
func (s *Service) GetTokenBalance(ctx context.Context, owner, mint crypto.AccountID) (uint64, *entries.Mint, error) {
	m, err := s.GetMint(ctx, mint)
	if err != nil {
		return 0, nil, err
	}
	bal, err := token.Balance(ledger.NewState(ctx, s.store), owner, mint)
	if err != nil {
		return 0, nil, err
	}
	return bal, m, nil
}

// GetAuction returns the auction recorded for an escrow account.
func (s *Service) GetAuction(ctx context.Context, escrow [32]byte) (*entries.Auction, error) {
	rec, err := auction.Load(ledger.NewState(ctx, s.store), escrow)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrAuctionNotFound
	}
	return rec, nil
}

// AuctionQuote is the price an auction would settle at right now.
type AuctionQuote struct {
	Auction   *entries.Auction
	Price     uint64
	ClockTime int64
}

// GetAuctionPrice quotes an auction at the current clock reading without
// changing anything.
func (s *Service) GetAuctionPrice(ctx context.Context, escrow [32]byte) (*AuctionQuote, error) {
	rec, err := s.GetAuction(ctx, escrow)
	if err != nil {
		return nil, err
	}
	now, err := s.clock.Now(ctx)
	if err != nil {
		return nil, err
	}
	price, err := auction.CurrentPrice(rec, now)
	if err != nil {
		return nil, err
	}
	return &AuctionQuote{Auction: rec, Price: price, ClockTime: now}, nil
}

// GetAccountTransactions lists the journaled submissions of account.
func (s *Service) GetAccountTransactions(ctx context.Context, account crypto.AccountID, limit int) ([]journal.Record, error) {
	return s.journal.ByAccount(ctx, account, limit)
}
