package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/adegadigital/adega-backend/pkg/db/models"
	"github.com/adegadigital/adega-backend/pkg/enums"
	pkgerrors "github.com/adegadigital/adega-backend/pkg/errors"
	"github.com/adegadigital/adega-backend/pkg/logger"
	"github.com/adegadigital/adega-backend/pkg/redis"
)

type publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	Del(ctx context.Context, keys ...string) error
	OrderStatusChannel(userID string) string
	CounterKey(name string) string
}

// Service persists notifications and feeds the realtime status channel.
type Service interface {
	NotifyOrderStatus(ctx context.Context, userID, orderID uuid.UUID, status enums.OrderStatus) error
	List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo  *Repository
	redis publisher
	logg  *logger.Logger
	now   func() time.Time
}

// NewService constructs the notification service.
func NewService(repo *Repository, redisClient publisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	if redisClient == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, redis: redisClient, logg: logg, now: time.Now}, nil
}

// NotifyOrderStatus stores the notification row, bumps the unread badge, and
// pushes the status event on the user's channel. Redis failures are logged
// and swallowed: the persisted row is the source of truth.
func (s *service) NotifyOrderStatus(ctx context.Context, userID, orderID uuid.UUID, status enums.OrderStatus) error {
	title := TitleFor(status)
	notification := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    enums.NotificationTypeOrderStatus,
		Title:   title,
		Body:    fmt.Sprintf("%s (pedido %s)", title, shortOrderRef(orderID)),
		OrderID: &orderID,
	}
	if err := s.repo.Insert(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing notification")
	}

	if _, err := s.redis.IncrBy(ctx, s.unreadKey(userID), 1); err != nil {
		s.logg.Warn(ctx, "failed to bump unread badge counter")
	}

	event := StatusEvent{OrderID: orderID, Status: status, ChangedAt: s.now()}
	payload, err := json.Marshal(event)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding status event")
	}
	if err := s.redis.Publish(ctx, s.redis.OrderStatusChannel(userID.String()), string(payload)); err != nil {
		s.logg.Warn(ctx, "failed to publish order status event")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	rows, err := s.repo.List(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing notifications")
	}
	return rows, nil
}

func (s *service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	touched, err := s.repo.MarkRead(ctx, userID, id, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking notification read")
	}
	if touched == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	if _, err := s.redis.IncrBy(ctx, s.unreadKey(userID), -1); err != nil {
		s.logg.Warn(ctx, "failed to decrement unread badge counter")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.repo.MarkAllRead(ctx, userID, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking notifications read")
	}
	if err := s.redis.Del(ctx, s.unreadKey(userID)); err != nil {
		s.logg.Warn(ctx, "failed to reset unread badge counter")
	}
	return nil
}

// UnreadCount serves the badge from Redis and falls back to the DB count,
// repairing the counter as it goes.
func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	cached, err := s.redis.Get(ctx, s.unreadKey(userID))
	if err == nil {
		if count, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil && count >= 0 {
			return count, nil
		}
	} else if !redis.IsNil(err) {
		s.logg.Warn(ctx, "unread badge counter unavailable, falling back to DB")
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting unread notifications")
	}
	if setErr := s.redis.Set(ctx, s.unreadKey(userID), count, 0); setErr != nil {
		s.logg.Warn(ctx, "failed to repair unread badge counter")
	}
	return count, nil
}

func (s *service) unreadKey(userID uuid.UUID) string {
	return s.redis.CounterKey("unread:" + userID.String())
}

func shortOrderRef(orderID uuid.UUID) string {
	id := orderID.String()
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
