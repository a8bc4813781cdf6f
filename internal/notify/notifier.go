// Package notify publishes domain events for an external delivery channel.
// Delivery itself (email, WhatsApp) is outside this service; the engine only
// hands events to a sink.
package notify

import (
	"context"

	"github.com/academiapadel/backend/internal/model"
	"go.uber.org/zap"
)

// Notifier receives every domain event the engine emits. Publishing is fire
// and forget: implementations must be safe for concurrent use, must not
// block user-facing requests and own their delivery failures.
type Notifier interface {
	Publish(ctx context.Context, event model.Event)
}

// LogNotifier writes events to the structured log. It is the default sink
// until a real delivery channel is plugged in.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Publish(_ context.Context, event model.Event) {
	n.logger.Info("Domain event",
		zap.String("type", string(event.Type)),
		zap.String("user_id", event.UserID),
		zap.Any("payload", event.Payload),
	)
}

// NopNotifier discards events. Used by tests that do not assert on them.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, model.Event) {}
