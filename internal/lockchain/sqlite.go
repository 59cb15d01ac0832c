package lockchain

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/loom/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteLedger is the durable backend. Uses WAL mode for concurrent
// reads during writes and a single connection, matching the chain's
// single-writer discipline.
type SQLiteLedger struct {
	db *sql.DB
}

// OpenSQLite creates or opens the receipt database at path. Applies
// required pragmas and the embedded schema; idempotent.
func OpenSQLite(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open receipt database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect receipt database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply receipt schema: %w", err)
	}
	return &SQLiteLedger{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteLedger) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append implements Ledger. Idempotent via ON CONFLICT(hash) DO NOTHING.
func (s *SQLiteLedger) Append(ctx context.Context, r ir.Receipt) error {
	deltaJSON, err := json.Marshal(r.Delta)
	if err != nil {
		return fmt.Errorf("append receipt %s: marshal delta: %w", r.Hash, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO receipts
		(hash, prev_hash, tx_id, actor, seq, verb, params, delta, state_before, state_after, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`,
		r.Hash,
		r.PrevHash,
		r.TxID,
		r.Actor,
		r.Seq,
		r.VerbName,
		r.ParamsJSON,
		string(deltaJSON),
		r.StateBefore,
		r.StateAfter,
		r.Reason,
	)
	if err != nil {
		return fmt.Errorf("append receipt %s: %w", r.Hash, err)
	}
	return nil
}

// Get implements Ledger.
func (s *SQLiteLedger) Get(ctx context.Context, hash string) (ir.Receipt, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT hash, prev_hash, tx_id, actor, seq, verb, params, delta, state_before, state_after, reason
		FROM receipts WHERE hash = ?
	`, hash)
	r, err := scanReceipt(row)
	if err == sql.ErrNoRows {
		return ir.Receipt{}, false, nil
	}
	if err != nil {
		return ir.Receipt{}, false, fmt.Errorf("get receipt %s: %w", hash, err)
	}
	return r, true, nil
}

// Tip implements Ledger. The tip is the highest seq; hash breaks the
// tie deterministically should storage ever hold duplicates.
func (s *SQLiteLedger) Tip(ctx context.Context) (ir.Receipt, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT hash, prev_hash, tx_id, actor, seq, verb, params, delta, state_before, state_after, reason
		FROM receipts ORDER BY seq DESC, hash DESC LIMIT 1
	`)
	r, err := scanReceipt(row)
	if err == sql.ErrNoRows {
		return ir.Receipt{}, false, nil
	}
	if err != nil {
		return ir.Receipt{}, false, fmt.Errorf("read tip: %w", err)
	}
	return r, true, nil
}

// Len implements Ledger.
func (s *SQLiteLedger) Len(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count receipts: %w", err)
	}
	return n, nil
}

// All implements Ledger, returning receipts in chain order.
func (s *SQLiteLedger) All(ctx context.Context) ([]ir.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hash, prev_hash, tx_id, actor, seq, verb, params, delta, state_before, state_after, reason
		FROM receipts ORDER BY seq ASC, hash ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read receipts: %w", err)
	}
	defer rows.Close()

	var out []ir.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read receipts: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (ir.Receipt, error) {
	var r ir.Receipt
	var deltaJSON string
	if err := row.Scan(
		&r.Hash, &r.PrevHash, &r.TxID, &r.Actor, &r.Seq,
		&r.VerbName, &r.ParamsJSON, &deltaJSON,
		&r.StateBefore, &r.StateAfter, &r.Reason,
	); err != nil {
		return ir.Receipt{}, err
	}
	if err := json.Unmarshal([]byte(deltaJSON), &r.Delta); err != nil {
		return ir.Receipt{}, fmt.Errorf("unmarshal delta: %w", err)
	}
	if v, err := ir.ParseVerb(r.VerbName); err == nil {
		r.Verb = v
	}
	return r, nil
}
