package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultOutboxKey     = "mail:outbox"
	DefaultProcessingKey = "mail:processing"
	DefaultDeadLetterKey = "mail:dead"
)

// RedisQueue is a FIFO outbox on a Redis list. Producers LPUSH; workers BLMOVE each message onto a
// processing list and remove it from there once it is sent or dead-lettered, so delivery is at
// least once.
type RedisQueue struct {
	rdb        redis.UniversalClient
	outbox     string
	processing string
	dead       string
}

func NewRedisQueue(rdb redis.UniversalClient) *RedisQueue {
	return &RedisQueue{
		rdb:        rdb,
		outbox:     DefaultOutboxKey,
		processing: DefaultProcessingKey,
		dead:       DefaultDeadLetterKey,
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return q.rdb.LPush(ctx, q.outbox, payload).Err()
}

// Dequeue blocks up to timeout for the next notification. ok is false when the wait timed out.
// The message stays on the processing list until Ack or DeadLetter.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (n Notification, ok bool, err error) {
	raw, err := q.rdb.BLMove(ctx, q.outbox, q.processing, "RIGHT", "LEFT", timeout).Result()
	if errors.Is(err, redis.Nil) {
		return Notification{}, false, nil
	}
	if err != nil {
		return Notification{}, false, err
	}
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		// An undecodable payload would be redelivered forever.
		q.rdb.LRem(ctx, q.processing, 1, raw)
		return Notification{}, false, fmt.Errorf("decode notification: %w", err)
	}
	n.receipt = raw
	return n, true, nil
}

// Ack drops a delivered notification from the processing list.
func (q *RedisQueue) Ack(ctx context.Context, n Notification) error {
	if n.receipt == "" {
		return nil
	}
	return q.rdb.LRem(ctx, q.processing, 1, n.receipt).Err()
}

// DeadLetter parks a notification that exhausted its attempts.
func (q *RedisQueue) DeadLetter(ctx context.Context, n Notification, cause error) error {
	if cause != nil {
		n.LastError = cause.Error()
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, q.dead, payload)
		if n.receipt != "" {
			pipe.LRem(ctx, q.processing, 1, n.receipt)
		}
		return nil
	})
	return err
}

// Requeue returns messages left on the processing list by a stopped worker to the consumer end
// of the outbox, oldest first. It reports how many were moved.
func (q *RedisQueue) Requeue(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.rdb.LMove(ctx, q.processing, q.outbox, "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, err
		}
		moved++
	}
}

// Len counts messages waiting in the outbox.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.outbox).Result()
}

// DeadLetters returns up to limit parked notifications, newest first.
func (q *RedisQueue) DeadLetters(ctx context.Context, limit int64) ([]Notification, error) {
	raw, err := q.rdb.LRange(ctx, q.dead, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Notification, 0, len(raw))
	for _, item := range raw {
		var n Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}
