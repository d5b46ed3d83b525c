package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adegadigital/adega-backend/pkg/logger"
	"github.com/adegadigital/adega-backend/pkg/redis"
)

const lastStatusTTL = 24 * time.Hour

// Consumer tails one user's order-status channel. Delivery from the channel
// is at-least-once; the consumer suppresses duplicates by comparing each
// event against the order's last seen status cached in Redis.
type Consumer struct {
	redis *redis.Client
	logg  *logger.Logger
}

// NewConsumer constructs a status-feed consumer.
func NewConsumer(redisClient *redis.Client, logg *logger.Logger) (*Consumer, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{redis: redisClient, logg: logg}, nil
}

// Run subscribes to the user's channel and invokes handler for each fresh
// status change until the context is cancelled.
func (c *Consumer) Run(ctx context.Context, userID uuid.UUID, handler func(StatusEvent)) error {
	if handler == nil {
		return fmt.Errorf("handler required")
	}

	channel := c.redis.OrderStatusChannel(userID.String())
	sub, err := c.redis.Subscribe(ctx, channel)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", channel, err)
	}
	defer sub.Close()

	ctx = c.logg.WithUserID(ctx, userID.String())
	messages := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var event StatusEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				c.logg.Warn(ctx, "dropping malformed status event")
				continue
			}
			fresh, err := c.isFresh(ctx, event)
			if err != nil {
				// on cache failure err on the side of delivering
				c.logg.Warn(ctx, "last-status cache unavailable, delivering anyway")
				fresh = true
			}
			if fresh {
				handler(event)
			}
		}
	}
}

// isFresh records the status and reports whether it differs from the last
// one seen for the order.
func (c *Consumer) isFresh(ctx context.Context, event StatusEvent) (bool, error) {
	key := c.redis.LastOrderStatusKey(event.OrderID.String())
	last, err := c.redis.Get(ctx, key)
	if err != nil && !redis.IsNil(err) {
		return false, err
	}
	if last == event.Status.String() {
		return false, nil
	}
	if err := c.redis.Set(ctx, key, event.Status.String(), lastStatusTTL); err != nil {
		return true, nil
	}
	return true, nil
}
