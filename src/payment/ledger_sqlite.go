package payment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
)

// SQLiteLedger persists consumed payments in the payments table. The
// PRIMARY KEY on payments.id is the serialization point for concurrent
// Record calls: INSERT OR IGNORE admits exactly one writer per identifier.
type SQLiteLedger struct {
	db *sql.DB
}

func NewSQLiteLedger(db *sql.DB) *SQLiteLedger {
	return &SQLiteLedger{db: db}
}

func (l *SQLiteLedger) Contains(ctx context.Context, id string) (bool, error) {
	var found string
	err := l.db.QueryRowContext(ctx, "SELECT id FROM payments WHERE id = ?", id).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger lookup failed: %w", err)
	}
	return true, nil
}

func (l *SQLiteLedger) Record(ctx context.Context, entry models.LedgerEntry) error {
	res, err := l.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO payments (id, recorded_at, amount, resource, payer) VALUES (?, ?, ?, ?, ?)",
		entry.ID, entry.Timestamp, entry.Amount, entry.Resource, entry.Payer)
	if err != nil {
		return fmt.Errorf("ledger insert failed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger insert result unavailable: %w", err)
	}
	if rows == 0 {
		return ErrAlreadySpent
	}
	return nil
}

func (l *SQLiteLedger) Summary(ctx context.Context) (int, int64, error) {
	var count int
	var total sql.NullInt64
	err := l.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(CAST(amount AS INTEGER)), 0) FROM payments").Scan(&count, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("ledger summary failed: %w", err)
	}
	return count, total.Int64, nil
}
