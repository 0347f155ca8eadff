package chat

import (
	"context"
	"log/slog"

	chatcore "github.com/nfrund/plug/internal/chat"
	"github.com/nfrund/plug/internal/pubsub"
)

// BusNotifier forwards conversation events to the message bus.
type BusNotifier struct {
	publisher pubsub.Publisher
	logger    *slog.Logger
}

// NewBusNotifier creates a notifier publishing on TopicConversationEvent.
func NewBusNotifier(pub pubsub.Publisher) *BusNotifier {
	return &BusNotifier{
		publisher: pub,
		logger:    slog.Default().With("component", "chat_notifier"),
	}
}

// Notify implements chat.Notifier. Publish failures are logged; the
// conversation state has already changed and is resent on reconnect.
func (n *BusNotifier) Notify(e chatcore.Event) {
	if err := pubsub.Publish(context.Background(), n.publisher, TopicConversationEvent, e); err != nil {
		n.logger.Error("Failed to publish conversation event",
			"conversation_id", e.ConversationID,
			"kind", e.Kind,
			"error", err,
		)
	}
}
