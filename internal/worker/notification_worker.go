package worker

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/service"
)

// EventSource streams events published by any API instance.
type EventSource interface {
	Subscribe(ctx context.Context, handler func(context.Context, events.Event, json.RawMessage)) error
}

// StartNotificationWorker registers the relay handlers and, when consume is
// set and a source is given, reads the bus in the background until ctx is
// cancelled. Pub/Sub delivers to every subscriber, so only one instance in a
// deployment should consume.
func StartNotificationWorker(ctx context.Context, notifications *service.NotificationService, source EventSource, consume bool, logger *zap.Logger) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers()
	if source == nil || !consume {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("notification worker panicked", zap.Any("panic", r))
			}
		}()
		err := source.Subscribe(ctx, notifications.Deliver)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("notification worker stopped", zap.Error(err))
		}
	}()
}
