package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
)

func testEntry(id string) models.LedgerEntry {
	return models.LedgerEntry{
		ID:        id,
		Timestamp: time.Now().UTC(),
		Amount:    "30000",
		Resource:  "/api/sentiment/BTC",
		Payer:     "0x1111111111111111111111111111111111111111",
	}
}

func TestMemoryLedgerRecordAndContains(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	found, err := ledger.Contains(ctx, "sig:abc")
	if err != nil {
		t.Fatalf("contains failed: %v", err)
	}
	if found {
		t.Fatal("empty ledger must not contain anything")
	}

	if err := ledger.Record(ctx, testEntry("sig:abc")); err != nil {
		t.Fatalf("first record failed: %v", err)
	}

	found, err = ledger.Contains(ctx, "sig:abc")
	if err != nil {
		t.Fatalf("contains failed: %v", err)
	}
	if !found {
		t.Error("recorded identifier must be reported as contained")
	}
}

func TestMemoryLedgerRejectsDuplicate(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	if err := ledger.Record(ctx, testEntry("tx:0xaaa")); err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	err := ledger.Record(ctx, testEntry("tx:0xaaa"))
	if !errors.Is(err, ErrAlreadySpent) {
		t.Fatalf("expected ErrAlreadySpent, got %v", err)
	}
}

func TestMemoryLedgerConcurrentRecordSingleWinner(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	const racers = 50
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- ledger.Record(ctx, testEntry("sig:raced"))
		}()
	}
	wg.Wait()
	close(results)

	var wins, dupes int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadySpent):
			dupes++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly 1 successful record, got %d", wins)
	}
	if dupes != racers-1 {
		t.Errorf("expected %d duplicates, got %d", racers-1, dupes)
	}
}

func TestMemoryLedgerSummary(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := ledger.Record(ctx, testEntry(fmt.Sprintf("sig:%d", i))); err != nil {
			t.Fatalf("record %d failed: %v", i, err)
		}
	}

	count, total, err := ledger.Summary(ctx)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 payments, got %d", count)
	}
	if total != 90000 {
		t.Errorf("expected total 90000, got %d", total)
	}
}
