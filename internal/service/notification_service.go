package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
)

// EventRecorder counts ticket events. *observability.Metrics implements it.
type EventRecorder interface {
	RecordTicketEvent(event string)
}

// NotificationService relays in-process ticket events to the outbound bus and
// delivers the notifications a consumer reads back from it.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  events.Publisher
	metrics    EventRecorder
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. publisher and metrics may be nil.
func NewNotificationService(dispatcher events.Dispatcher, publisher events.Publisher, metrics EventRecorder, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to every ticket event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.relay)
	}
}

func (n *NotificationService) relay(ctx context.Context, event events.Event) error {
	if n.metrics != nil {
		n.metrics.RecordTicketEvent(string(event.Type))
	}
	n.logger.Info("ticket event",
		zap.String("event_type", string(event.Type)),
		zap.Int64("ticket_id", event.TicketID),
		zap.Int64("actor_id", event.ActorID))
	if n.publisher == nil {
		return nil
	}
	return n.publisher.Publish(ctx, event)
}

// Deliver handles one event read back from the bus.
func (n *NotificationService) Deliver(ctx context.Context, event events.Event, payload json.RawMessage) {
	switch event.Type {
	case events.EventTicketCreated, events.EventTicketAssigned, events.EventTicketStatusChanged:
		n.sendEmailNotificationStub(ctx, event, payload)
	case events.EventTicketCommentAdded:
		var p events.TicketCommentAddedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			n.logger.Warn("malformed comment payload", zap.Int64("ticket_id", event.TicketID), zap.Error(err))
			return
		}
		if p.IsInternal {
			return
		}
		n.sendEmailNotificationStub(ctx, event, payload)
	default:
		n.logger.Debug("no notification for event", zap.String("event_type", string(event.Type)))
	}
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, payload json.RawMessage) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Info("email notification",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)),
		zap.ByteString("payload", payload))
}
