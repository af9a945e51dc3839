package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	json "github.com/goccy/go-json"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
)

const redisKeyPrefix = "payment:"

// RedisLedger backs the replay ledger with a shared Redis instance so
// multiple server processes can share one spend record. SETNX supplies the
// atomic check-and-set the gateway relies on.
type RedisLedger struct {
	client *redis.Client
}

func NewRedisLedger(addr string) (*RedisLedger, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &RedisLedger{client: client}, nil
}

func (l *RedisLedger) Contains(ctx context.Context, id string) (bool, error) {
	n, err := l.client.Exists(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("ledger lookup failed: %w", err)
	}
	return n > 0, nil
}

func (l *RedisLedger) Record(ctx context.Context, entry models.LedgerEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode ledger entry: %w", err)
	}
	// Entries never expire: a spent payment stays spent.
	ok, err := l.client.SetNX(ctx, redisKeyPrefix+entry.ID, raw, 0).Result()
	if err != nil {
		return fmt.Errorf("ledger insert failed: %w", err)
	}
	if !ok {
		return ErrAlreadySpent
	}
	return nil
}

func (l *RedisLedger) Summary(ctx context.Context) (int, int64, error) {
	var (
		cursor uint64
		count  int
		total  int64
	)
	for {
		keys, next, err := l.client.Scan(ctx, cursor, redisKeyPrefix+"*", 200).Result()
		if err != nil {
			return 0, 0, fmt.Errorf("ledger summary scan failed: %w", err)
		}
		for _, key := range keys {
			raw, err := l.client.Get(ctx, key).Bytes()
			if err != nil {
				continue
			}
			var entry models.LedgerEntry
			if err := json.Unmarshal(raw, &entry); err != nil {
				continue
			}
			count++
			if v, err := strconv.ParseInt(entry.Amount, 10, 64); err == nil {
				total += v
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return count, total, nil
}
