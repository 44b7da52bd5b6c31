package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"deals_api/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// LoadEventPublisher pushes committed CSV loads onto a Redis list for the load-log worker.
type LoadEventPublisher struct {
	rdb       *redis.Client
	queueName string
}

func NewLoadEventPublisher(rdb *redis.Client, queueName string) *LoadEventPublisher {
	return &LoadEventPublisher{rdb: rdb, queueName: queueName}
}

func (p *LoadEventPublisher) PublishLoadEvent(ctx context.Context, event model.LoadEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal load event: %w", err)
	}
	if err := p.rdb.LPush(ctx, p.queueName, payload).Err(); err != nil {
		return fmt.Errorf("failed to push load event to %s: %w", p.queueName, err)
	}
	return nil
}
