package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Queue struct {
	client    *redis.Client
	queueName string
}

// ReceiptJob asks the worker to email a payment receipt.
type ReceiptJob struct {
	UserID              int64     `json:"user_id"`
	Email               string    `json:"email"`
	PaymentReference    string    `json:"payment_reference"`
	Plan                string    `json:"plan"`
	Amount              int64     `json:"amount"`
	Currency            string    `json:"currency"`
	SubscriptionExpires time.Time `json:"subscription_expires"`
	Attempts            int       `json:"attempts"`
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push appends a job to the queue.
func (q *Queue) Push(ctx context.Context, job *ReceiptJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop blocks up to timeout for the oldest job. It returns nil, nil on timeout.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*ReceiptJob, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var job ReceiptJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
