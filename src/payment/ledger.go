package payment

import (
	"context"
	"strconv"
	"sync"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
)

// Ledger is the replay-protection record of consumed payment identifiers.
// Record must behave as an atomic check-and-set: when two callers race on
// the same identifier, exactly one Record succeeds and the other observes
// ErrAlreadySpent. Entries are append-only and immutable.
type Ledger interface {
	Contains(ctx context.Context, id string) (bool, error)
	Record(ctx context.Context, entry models.LedgerEntry) error
	Summary(ctx context.Context) (count int, totalAtomic int64, err error)
}

// MemoryLedger is the process-local Ledger used in tests and single-process
// deployments without durability requirements.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]models.LedgerEntry
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]models.LedgerEntry)}
}

func (l *MemoryLedger) Contains(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[id]
	return ok, nil
}

func (l *MemoryLedger) Record(ctx context.Context, entry models.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[entry.ID]; ok {
		return ErrAlreadySpent
	}
	l.entries[entry.ID] = entry
	return nil
}

func (l *MemoryLedger) Summary(ctx context.Context) (int, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var total int64
	for _, e := range l.entries {
		if v, err := strconv.ParseInt(e.Amount, 10, 64); err == nil {
			total += v
		}
	}
	return len(l.entries), total, nil
}
