package renderjobinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/kernel"
	"github.com/Abraxas-365/hojavida/recruitment/renderjob"
	"github.com/redis/go-redis/v9"
)

// RedisQueue implements renderjob.JobQueue with a Redis list for ready jobs
// and a sorted set (scored by due time in ms) for delayed retries
type RedisQueue struct {
	client    *redis.Client
	queueName string
	now       func() time.Time
}

func NewRedisQueue(client *redis.Client, queueName string) renderjob.JobQueue {
	return &RedisQueue{
		client:    client,
		queueName: queueName,
		now:       time.Now,
	}
}

func (q *RedisQueue) delayedKey() string {
	return q.queueName + ":delayed"
}

func (q *RedisQueue) Enqueue(ctx context.Context, jobID kernel.RenderJobID, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for job %s: %w", jobID, err)
	}

	if err := q.client.LPush(ctx, q.queueName, data).Err(); err != nil {
		return fmt.Errorf("enqueue job %s: %w", jobID, err)
	}
	return nil
}

// Dequeue blocks up to timeout. A nil slice with a nil error means the
// queue stayed empty.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue job: %w", err)
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("invalid result from queue: expected 2 elements, got %d", len(result))
	}
	return []byte(result[1]), nil
}

func (q *RedisQueue) EnqueueDelayed(ctx context.Context, jobID kernel.RenderJobID, payload any, delay time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal delayed payload for job %s: %w", jobID, err)
	}

	score := float64(q.now().Add(delay).UnixMilli())
	if err := q.client.ZAdd(ctx, q.delayedKey(), redis.Z{Score: score, Member: data}).Err(); err != nil {
		return fmt.Errorf("enqueue delayed job %s: %w", jobID, err)
	}
	return nil
}

// MoveDelayedToReady promotes due jobs. A job is pushed only by the caller
// whose ZREM removed it, so concurrent movers never duplicate work.
func (q *RedisQueue) MoveDelayedToReady(ctx context.Context) (int, error) {
	due, err := q.client.ZRangeByScore(ctx, q.delayedKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(q.now().UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("get delayed jobs: %w", err)
	}

	moved := 0
	for _, job := range due {
		removed, err := q.client.ZRem(ctx, q.delayedKey(), job).Result()
		if err != nil {
			return moved, fmt.Errorf("claim delayed job: %w", err)
		}
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, q.queueName, job).Err(); err != nil {
			return moved, fmt.Errorf("move delayed job to ready: %w", err)
		}
		moved++
	}
	return moved, nil
}

func (q *RedisQueue) GetStats(ctx context.Context) (map[string]any, error) {
	ready, err := q.client.LLen(ctx, q.queueName).Result()
	if err != nil {
		return nil, fmt.Errorf("get queue size: %w", err)
	}
	delayed, err := q.client.ZCard(ctx, q.delayedKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("get delayed queue size: %w", err)
	}

	return map[string]any{
		"queue_name":   q.queueName,
		"ready_jobs":   ready,
		"delayed_jobs": delayed,
		"total_jobs":   ready + delayed,
	}, nil
}
