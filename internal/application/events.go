package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Activity event types published when an EventPublisher is configured.
const (
	EventLoginSucceeded = "auth.login_succeeded"
	EventLoginFailed    = "auth.login_failed"
	EventBoardCreated   = "board.created"
	EventBoardUpdated   = "board.updated"
	EventBoardDeleted   = "board.deleted"
)

// EventPublisher ships activity events to a broker. helpers.RabbitPublisher satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, eventType string, body any) error
}

// ActivityEvent is the payload of every published event.
type ActivityEvent struct {
	Type  string         `json:"type"`
	Actor string         `json:"actor"`
	At    time.Time      `json:"at"`
	Data  map[string]any `json:"data,omitempty"`
}

const publishTimeout = 2 * time.Second

// publishActivity is best-effort: failures are logged, never returned.
func publishActivity(ctx context.Context, pub EventPublisher, logger logrus.FieldLogger, eventType, actor string, data map[string]any) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	evt := ActivityEvent{Type: eventType, Actor: actor, At: time.Now().UTC(), Data: data}
	if err := pub.PublishJSON(ctx, eventType, evt); err != nil && logger != nil {
		logger.WithError(err).WithField("event", eventType).Warn("activity publish failed")
	}
}
