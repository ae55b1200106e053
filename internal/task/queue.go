// Package task is a small redis-list-backed queue for work that must not run
// on the request path.
package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingKey    = "tasks:pending"
	processingKey = "tasks:processing"
)

const TypePublishEmail = "event_published_email"

type Task struct {
	Type      string `json:"type"`
	EventID   uint   `json:"event_id"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

type Queue struct {
	rdb *redis.Client
}

func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{
		rdb: rdb,
	}
}

// Enqueue is fire-and-forget from the caller's point of view; delivery is
// at-least-once once the payload is in redis.
func (q *Queue) Enqueue(ctx context.Context, t Task) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	if err = q.rdb.LPush(ctx, pendingKey, payload).Err(); err != nil {
		return fmt.Errorf("q.rdb.LPush -> %w", err)
	}

	return nil
}

// Dequeue blocks up to timeout and atomically moves one payload to the
// processing list. Returns a nil task when the wait timed out.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, string, error) {
	payload, err := q.rdb.BLMove(ctx, pendingKey, processingKey, "RIGHT", "LEFT", timeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("q.rdb.BLMove -> %w", err)
	}

	var t Task
	if err = json.Unmarshal([]byte(payload), &t); err != nil {
		return nil, "", fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return &t, payload, nil
}

// Ack drops a handled payload from the processing list. Failed payloads are
// left there on purpose; there is no automatic retry.
func (q *Queue) Ack(ctx context.Context, payload string) error {
	if err := q.rdb.LRem(ctx, processingKey, 1, payload).Err(); err != nil {
		return fmt.Errorf("q.rdb.LRem -> %w", err)
	}

	return nil
}

// PendingCount reports how many tasks are waiting.
func (q *Queue) PendingCount(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, pendingKey).Result()
	if err != nil {
		return 0, fmt.Errorf("q.rdb.LLen -> %w", err)
	}

	return n, nil
}
