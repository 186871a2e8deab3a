// Package journal keeps an append-only record of every submitted
// transaction in a SQL database.
package journal

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/LeJamon/goDutchAuction/internal/crypto"
)

// Driver names accepted by Open.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	// ErrInvalidDriver is returned for an unsupported driver name
	ErrInvalidDriver = errors.New("invalid journal driver")

	// ErrInvalidLimit is returned for a non-positive query limit
	ErrInvalidLimit = errors.New("invalid query limit")

	// ErrCorrupt is returned when a stored record cannot be decoded
	ErrCorrupt = errors.New("corrupt journal record")
)

// MaxLimit caps the number of records one query returns.
const MaxLimit = 200

// Record is one journaled submission.
type Record struct {
	ID        uuid.UUID
	TxHash    [32]byte
	Account   crypto.AccountID
	Sequence  uint32
	TxType    string
	Result    string
	Applied   bool
	ClockTime int64

	// TxJSON is the submitted transaction as received
	TxJSON []byte

	RecordedAt time.Time
}

// Journal stores submission records.
type Journal interface {
	Append(ctx context.Context, r Record) error
	ByAccount(ctx context.Context, account crypto.AccountID, limit int) ([]Record, error)
	Close() error
}

// Config holds the journal settings
type Config struct {
	Driver   string
	DSN      string
	Compress bool
}

// Open returns the journal described by cfg. DriverNone yields a journal
// that discards everything.
func Open(ctx context.Context, cfg Config) (Journal, error) {
	switch cfg.Driver {
	case DriverNone, "":
		return Nop{}, nil
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDriver, cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == DriverSQLite {
		// One writer keeps SQLite from returning SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: ping %s: %w", cfg.Driver, err)
	}

	j := &SQLJournal{db: db, driver: cfg.Driver, compress: cfg.Compress}
	if err := j.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: init schema: %w", err)
	}
	return j, nil
}

// SQLJournal implements Journal on database/sql.
type SQLJournal struct {
	db       *sql.DB
	driver   string
	compress bool
}

func (j *SQLJournal) initSchema(ctx context.Context) error {
	blob, serial := "BLOB", "INTEGER PRIMARY KEY AUTOINCREMENT"
	if j.driver == DriverPostgres {
		blob, serial = "BYTEA", "BIGSERIAL PRIMARY KEY"
	}
	queries := []string{
		`CREATE TABLE IF NOT EXISTS journal (
			pos ` + serial + `,
			id VARCHAR(36) UNIQUE NOT NULL,
			tx_hash VARCHAR(64) NOT NULL,
			account VARCHAR(40) NOT NULL,
			sequence BIGINT NOT NULL,
			tx_type VARCHAR(32) NOT NULL,
			result VARCHAR(32) NOT NULL,
			applied BOOLEAN NOT NULL,
			clock_time BIGINT NOT NULL,
			payload ` + blob + ` NOT NULL,
			recorded_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_account ON journal(account, pos)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_tx_hash ON journal(tx_hash)`,
	}
	for _, q := range queries {
		if _, err := j.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $n for PostgreSQL.
func (j *SQLJournal) rebind(query string) string {
	if j.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Append stores r. A zero ID or RecordedAt is filled in.
func (j *SQLJournal) Append(ctx context.Context, r Record) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now()
	}
	payload, err := encodePayload(r.TxJSON, j.compress)
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(ctx, j.rebind(`INSERT INTO journal
		(id, tx_hash, account, sequence, tx_type, result, applied, clock_time, payload, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID.String(), strings.ToUpper(hex.EncodeToString(r.TxHash[:])), r.Account.Hex(), int64(r.Sequence),
		r.TxType, r.Result, r.Applied, r.ClockTime, payload, r.RecordedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("journal: append: %w", err)
	}
	return nil
}

// ByAccount returns the newest records sent by account, newest first.
func (j *SQLJournal) ByAccount(ctx context.Context, account crypto.AccountID, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	rows, err := j.db.QueryContext(ctx, j.rebind(`SELECT
		id, tx_hash, sequence, tx_type, result, applied, clock_time, payload, recorded_at
		FROM journal WHERE account = ? ORDER BY pos DESC LIMIT ?`), account.Hex(), limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r        Record
			id, hash string
			seq      int64
			payload  []byte
			recorded int64
		)
		if err := rows.Scan(&id, &hash, &seq, &r.TxType, &r.Result, &r.Applied, &r.ClockTime, &payload, &recorded); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("journal: record id: %w", err)
		}
		raw, err := hex.DecodeString(hash)
		if err != nil || len(raw) != len(r.TxHash) {
			return nil, fmt.Errorf("journal: tx hash %q: %w", hash, ErrCorrupt)
		}
		copy(r.TxHash[:], raw)
		if r.TxJSON, err = decodePayload(payload); err != nil {
			return nil, err
		}
		r.Account = account
		r.Sequence = uint32(seq)
		r.RecordedAt = time.Unix(0, recorded)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLJournal) Close() error {
	return j.db.Close()
}

// Nop discards records.
type Nop struct{}

func (Nop) Append(context.Context, Record) error { return nil }

func (Nop) ByAccount(context.Context, crypto.AccountID, int) ([]Record, error) {
	return nil, nil
}

func (Nop) Close() error { return nil }
