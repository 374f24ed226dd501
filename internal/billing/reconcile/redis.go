package reconcile

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const queueKey = "billing:reconcile"

type RedisQueue struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisQueue(client *redis.Client, log *zap.Logger) *RedisQueue {
	return &RedisQueue{
		client: client,
		log:    log.Named("billing.reconcile"),
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := q.client.LPush(ctx, queueKey, payload).Err(); err != nil {
		return err
	}

	q.log.Warn("queued charge for reconciliation",
		zap.String("order_id", entry.OrderID),
		zap.String("reason", entry.Reason))
	return nil
}
