package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

// NotificationCollector gathers the notifications raised while serving one
// request so they can be returned with the response.
type NotificationCollector struct {
	mu     sync.Mutex
	items  []domain.Notification
	logger zerolog.Logger
}

var _ ports.Notifier = (*NotificationCollector)(nil)

func NewNotificationCollector(logger zerolog.Logger) *NotificationCollector {
	return &NotificationCollector{logger: logger}
}

func (c *NotificationCollector) Notify(_ context.Context, n domain.Notification) {
	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()
	c.logger.Debug().Str("level", string(n.Level)).Str("title", n.Title).Msg("notification")
}

// Drain returns the collected notifications and resets the collector.
// The result is never nil.
func (c *NotificationCollector) Drain() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.items
	c.items = nil
	if out == nil {
		out = []domain.Notification{}
	}
	return out
}
