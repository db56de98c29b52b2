package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Gentlecoder1/social-app/internal/middleware"
)

// Event types pushed to connected clients.
const (
	EventNotificationCreated = "notification_created"
)

// EventPublisher delivers a serialized event to every live connection of a user.
type EventPublisher interface {
	PublishUser(ctx context.Context, userID uint, payload string) error
}

type pendingEvent struct {
	userID    uint
	eventType string
	payload   map[string]interface{}
}

// Outbox collects events raised inside a transaction. They are published
// only after the transaction commits.
type Outbox struct {
	events []pendingEvent
}

func (o *Outbox) add(userID uint, eventType string, payload map[string]interface{}) {
	if o == nil {
		return
	}
	o.events = append(o.events, pendingEvent{userID: userID, eventType: eventType, payload: payload})
}

// Len is the number of queued events.
func (o *Outbox) Len() int {
	if o == nil {
		return 0
	}
	return len(o.events)
}

func publishUserEvent(ctx context.Context, publisher EventPublisher, userID uint, eventType string, payload map[string]interface{}) {
	if publisher == nil {
		return
	}
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to marshal event", slog.String("type", eventType), slog.String("error", err.Error()))
		return
	}
	if err := publisher.PublishUser(ctx, userID, string(eventJSON)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish event",
			slog.String("type", eventType),
			slog.Uint64("recipient_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
	}
}
