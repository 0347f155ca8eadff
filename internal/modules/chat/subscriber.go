package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	g "maragu.dev/gomponents"

	chatcore "github.com/nfrund/plug/internal/chat"
	"github.com/nfrund/plug/internal/modules/chat/templates/components"
	"github.com/nfrund/plug/internal/pubsub"
	"github.com/nfrund/plug/internal/rendering"
	"github.com/nfrund/plug/internal/websocket"
)

// Subscriber turns conversation events into HTML fragments for the
// websocket bridge and tracks which conversations have live sockets.
type Subscriber struct {
	subscriber pubsub.Subscriber
	publisher  pubsub.Publisher
	renderer   rendering.Renderer
	manager    *chatcore.Manager
	logger     *slog.Logger

	// mu serializes rendering so a snapshot push and the events around it
	// reach the sockets in a consistent order.
	mu sync.Mutex
	// synced holds the message count of the last snapshot pushed per
	// conversation. Older events are already part of it.
	synced map[string]int
}

// NewSubscriber creates the chat subscriber.
func NewSubscriber(sub pubsub.Subscriber, pub pubsub.Publisher, renderer rendering.Renderer, manager *chatcore.Manager) *Subscriber {
	return &Subscriber{
		subscriber: sub,
		publisher:  pub,
		renderer:   renderer,
		manager:    manager,
		logger:     slog.Default().With("component", "chat_subscriber"),
		synced:     make(map[string]int),
	}
}

// Start subscribes to the conversation and websocket lifecycle topics.
// Delivery stops when ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.Info("Starting chat module subscriber")

	if err := pubsub.Subscribe(ctx, s.subscriber, TopicConversationEvent, s.handleConversationEvent); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicConversationEvent.Name(), err)
	}
	if err := pubsub.Subscribe(ctx, s.subscriber, websocket.TopicClientReady, s.handleClientReady); err != nil {
		return fmt.Errorf("subscribe %s: %w", websocket.TopicClientReady.Name(), err)
	}
	if err := pubsub.Subscribe(ctx, s.subscriber, websocket.TopicClientDisconnected, s.handleClientDisconnected); err != nil {
		return fmt.Errorf("subscribe %s: %w", websocket.TopicClientDisconnected.Name(), err)
	}
	return nil
}

func (s *Subscriber) handleConversationEvent(ctx context.Context, e chatcore.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	synced, seen := s.synced[e.ConversationID]

	var nodes g.Group
	switch e.Kind {
	case chatcore.EventMessageAppended:
		if e.Message == nil {
			return fmt.Errorf("message_appended event without message for %s", e.ConversationID)
		}
		if seen && e.Count <= synced {
			return nil
		}
		nodes = g.Group{components.AppendedOOB(*e.Message)}
	case chatcore.EventWaitingChanged:
		if seen && e.Count < synced {
			return nil
		}
		nodes = g.Group{
			components.TypingOOB(e.Waiting),
			components.StateOOB(e.Waiting, false),
		}
	case chatcore.EventScrollRequested:
		if seen && e.Count < synced {
			return nil
		}
		nodes = g.Group{components.ScrollOOB(e.Count)}
	case chatcore.EventClosed:
		delete(s.synced, e.ConversationID)
		nodes = g.Group{
			components.TypingOOB(false),
			components.ClosedOOB(),
			components.StateOOB(false, true),
			components.ScrollOOB(e.Count),
		}
	default:
		s.logger.Warn("Ignoring unknown conversation event", "kind", e.Kind)
		return nil
	}

	return s.push(ctx, e.ConversationID, nodes)
}

// handleClientReady attaches the socket to its conversation and sends the
// current state, so reconnecting clients catch up on missed fragments.
func (s *Subscriber) handleClientReady(ctx context.Context, ev websocket.ClientEvent) error {
	conv, ok := s.manager.Lookup(ev.Audience)
	if !ok {
		return nil
	}
	if err := s.manager.Attach(conv.ID()); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := conv.Snapshot()
	s.synced[snap.ID] = len(snap.Messages)
	s.logger.Debug("Pushing conversation snapshot", "conversation_id", snap.ID, "messages", len(snap.Messages))

	return s.push(ctx, snap.ID, g.Group{
		components.TranscriptOOB(snap.Messages),
		components.TypingOOB(snap.Waiting),
		components.StateOOB(snap.Waiting, snap.Closed),
		components.ScrollOOB(len(snap.Messages)),
	})
}

func (s *Subscriber) handleClientDisconnected(ctx context.Context, ev websocket.ClientEvent) error {
	if _, ok := s.manager.Lookup(ev.Audience); !ok {
		return nil
	}
	s.manager.Release(ev.Audience)
	return nil
}

// push renders nodes and sends them to every socket of the conversation.
func (s *Subscriber) push(ctx context.Context, conversationID string, nodes g.Group) error {
	html, err := s.renderer.RenderComponent(ctx, nodes)
	if err != nil {
		return fmt.Errorf("render chat fragment: %w", err)
	}
	return s.publisher.Publish(ctx, pubsub.Message{
		Topic:   websocket.TopicHTMLDirect,
		Payload: html,
		Metadata: map[string]string{
			pubsub.MetaKeyRecipient: conversationID,
		},
	})
}
