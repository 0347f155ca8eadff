package pubsub

import (
	"context"
)

// Message is the structure passed between components on the bus.
type Message struct {
	// Topic identifies the channel the message belongs to (e.g., "chat.conversation.event").
	Topic string
	// UserID identifies the visitor the message concerns, if any.
	UserID string
	// Payload contains the raw message data (JSON events or rendered HTML).
	Payload []byte
	// Metadata carries routing hints such as "recipient_id".
	Metadata map[string]string
}

// Handler defines the function signature for processing a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the bus.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the bus.
type Subscriber interface {
	// Subscribe starts listening to the given topic in the background and
	// returns once the subscription is active. Delivery stops when ctx ends.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}

// PubSub is satisfied by buses that both publish and subscribe.
type PubSub interface {
	Publisher
	Subscriber
}
