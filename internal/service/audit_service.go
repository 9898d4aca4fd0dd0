package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
)

// AuditService writes one audit line per published event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service. logger should be the dedicated audit
// logger, not the application logger.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to every event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("user", event.Actor.Username),
		zap.String("action", string(event.Type)),
		zap.Time("at", event.Timestamp),
	}
	if event.Actor.UserID != 0 {
		fields = append(fields, zap.Int64("user_id", int64(event.Actor.UserID)))
	}
	if event.Actor.Role != "" {
		fields = append(fields, zap.String("role", string(event.Actor.Role)))
	}
	if event.TicketID != 0 {
		fields = append(fields, zap.Int64("ticket_id", int64(event.TicketID)))
	}

	switch payload := event.Payload.(type) {
	case events.TicketCreatedPayload:
		fields = append(fields,
			zap.String("category", payload.Category),
			zap.String("priority", string(payload.Priority)))
	case events.TicketStatusChangedPayload:
		fields = append(fields,
			zap.String("old_status", string(payload.OldStatus)),
			zap.String("new_status", string(payload.NewStatus)))
	case events.TicketsExportedPayload:
		fields = append(fields,
			zap.Int("rows", payload.Rows),
			zap.String("destination", payload.Destination))
	}

	a.logger.Info("audit", fields...)
	return nil
}
