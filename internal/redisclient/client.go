package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client mirrors ledger state into Redis for read-side consumers (menu
// services showing remaining seats) and caches confirm results for
// idempotent retries. The in-process ledgers stay authoritative; nothing
// here participates in the commit decision.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// capacityKey names the mirrored seat-counter hash for a slot.
func capacityKey(mealSlotID int64) string {
	return fmt.Sprintf("capacity:%d", mealSlotID)
}

// confirmKey names the cached confirm result. The key is scoped to the
// student so one student's idempotency key can never replay another
// student's commit.
func confirmKey(studentID int64, key string) string {
	return fmt.Sprintf("confirm:%d:%s", studentID, key)
}

// SyncCapacity publishes a slot's seat counters for external readers
func (c *Client) SyncCapacity(ctx context.Context, mealSlotID int64, remaining, total int) error {
	key := capacityKey(mealSlotID)

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, key, "remaining", remaining)
	pipe.HSet(ctx, key, "total", total)

	_, err := pipe.Exec(ctx)
	return err
}

// GetCapacity retrieves the mirrored seat counters for a slot
func (c *Client) GetCapacity(ctx context.Context, mealSlotID int64) (remaining, total int, err error) {
	key := capacityKey(mealSlotID)

	result, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if len(result) == 0 {
		return 0, 0, fmt.Errorf("capacity not mirrored for slot %d", mealSlotID)
	}

	fmt.Sscanf(result["remaining"], "%d", &remaining)
	fmt.Sscanf(result["total"], "%d", &total)
	return remaining, total, nil
}

// SetConfirmResult caches the serialized result of a confirmed cart under
// the student's idempotency key
func (c *Client) SetConfirmResult(ctx context.Context, studentID int64, key string, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, confirmKey(studentID, key), payload, ttl).Err()
}

// GetConfirmResult retrieves a cached confirm result; returns nil payload
// when the key is absent
func (c *Client) GetConfirmResult(ctx context.Context, studentID int64, key string) ([]byte, error) {
	payload, err := c.rdb.Get(ctx, confirmKey(studentID, key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}
