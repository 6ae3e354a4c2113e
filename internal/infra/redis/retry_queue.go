package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"firegate/internal/core/domain"
)

// RetryQueue holds failed ingestion jobs awaiting re-processing. Jobs are
// prioritized by retry count so the least-attempted job is retried first.
type RetryQueue struct {
	rdb    *redis.Client
	source string
}

// NewRetryQueue creates a Redis-backed retry queue scoped to one source.
func NewRetryQueue(client *Client, source string) *RetryQueue {
	return &RetryQueue{
		rdb:    client.rdb,
		source: source,
	}
}

// Key helpers
func (q *RetryQueue) queueKey() string {
	return fmt.Sprintf("retry_jobs:%s", q.source)
}

func (q *RetryQueue) jobKey(id string) string {
	return fmt.Sprintf("retry_job:%s:%s", q.source, id)
}

// Add adds a failed job to the queue.
func (q *RetryQueue) Add(ctx context.Context, job *domain.RetryJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal retry job: %w", err)
	}

	if err := q.rdb.Set(ctx, q.jobKey(job.ID), data, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to set retry job: %w", err)
	}

	// Sorted set: score = retry count, lower retries first
	if err := q.rdb.ZAdd(ctx, q.queueKey(), redis.Z{
		Score:  float64(job.RetryCount),
		Member: job.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to queue: %w", err)
	}

	return nil
}

// GetNext retrieves the next job to retry, or nil when the queue is empty.
func (q *RetryQueue) GetNext(ctx context.Context) (*domain.RetryJob, error) {
	results, err := q.rdb.ZRange(ctx, q.queueKey(), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange failed: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	id := results[0]

	data, err := q.rdb.Get(ctx, q.jobKey(id)).Bytes()
	if err == redis.Nil {
		// Data expired but ID still in queue, remove it
		q.rdb.ZRem(ctx, q.queueKey(), id)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get retry job: %w", err)
	}

	var job domain.RetryJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal retry job: %w", err)
	}
	return &job, nil
}

// IncrementRetry bumps the retry count and updates the last attempt time.
func (q *RetryQueue) IncrementRetry(ctx context.Context, id string) error {
	data, err := q.rdb.Get(ctx, q.jobKey(id)).Bytes()
	if err != nil {
		return fmt.Errorf("failed to get retry job: %w", err)
	}

	var job domain.RetryJob
	if err := json.Unmarshal(data, &job); err != nil {
		return fmt.Errorf("failed to unmarshal retry job: %w", err)
	}

	job.RetryCount++
	job.LastAttempt = time.Now().Unix()

	newData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal retry job: %w", err)
	}

	if err := q.rdb.Set(ctx, q.jobKey(id), newData, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to set retry job: %w", err)
	}

	if err := q.rdb.ZAdd(ctx, q.queueKey(), redis.Z{
		Score:  float64(job.RetryCount),
		Member: id,
	}).Err(); err != nil {
		return fmt.Errorf("failed to update queue: %w", err)
	}

	return nil
}

// MarkResolved removes a successfully re-processed job.
func (q *RetryQueue) MarkResolved(ctx context.Context, id string) error {
	if err := q.rdb.ZRem(ctx, q.queueKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to remove from queue: %w", err)
	}
	if err := q.rdb.Del(ctx, q.jobKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete retry job: %w", err)
	}
	return nil
}

// GetAll retrieves all queued jobs.
func (q *RetryQueue) GetAll(ctx context.Context) ([]*domain.RetryJob, error) {
	ids, err := q.rdb.ZRange(ctx, q.queueKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange failed: %w", err)
	}

	jobs := make([]*domain.RetryJob, 0, len(ids))
	for _, id := range ids {
		data, err := q.rdb.Get(ctx, q.jobKey(id)).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get retry job: %w", err)
		}

		var job domain.RetryJob
		if err := json.Unmarshal(data, &job); err != nil {
			continue
		}
		jobs = append(jobs, &job)
	}
	return jobs, nil
}

// Count returns the number of queued jobs.
func (q *RetryQueue) Count(ctx context.Context) (int, error) {
	count, err := q.rdb.ZCard(ctx, q.queueKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard failed: %w", err)
	}
	return int(count), nil
}
