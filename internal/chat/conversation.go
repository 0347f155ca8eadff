package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nfrund/plug/internal/domain"
)

// KeyEnter is the key name browsers report for the return key.
const KeyEnter = "Enter"

// KeyPress is a keyboard event from the message input.
type KeyPress struct {
	Key   string
	Shift bool
}

// Snapshot is a consistent view of a conversation.
type Snapshot struct {
	ID       string
	Messages []Message
	Waiting  bool
	Input    string
	Closed   bool
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithResponder sets the reply backend. The default is a CannedResponder.
func WithResponder(r Responder) Option {
	return func(c *Conversation) {
		if r != nil {
			c.responder = r
		}
	}
}

// WithNotifier sets the receiver of state change events.
func WithNotifier(n Notifier) Option {
	return func(c *Conversation) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithFallbackReply overrides the text used when the responder fails.
func WithFallbackReply(text string) Option {
	return func(c *Conversation) {
		if text != "" {
			c.fallback = text
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Conversation) {
		if l != nil {
			c.logger = l
		}
	}
}

// Conversation is one chat widget instance: the message store, the input
// buffer and at most one pending reply.
type Conversation struct {
	id        string
	owner     string
	store     *Store
	responder Responder
	notifier  Notifier
	scroll    *Autoscroll
	fallback  string
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	input      string
	waiting    bool
	closed     bool
	lastActive time.Time

	// emitMu is taken before mu is released so events leave in mutation order.
	emitMu sync.Mutex
}

// NewConversation creates an open conversation.
func NewConversation(id, owner string, opts ...Option) *Conversation {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Conversation{
		id:         id,
		owner:      owner,
		store:      NewStore(),
		responder:  NewCannedResponder(CannedReply, DefaultReplyDelay),
		notifier:   nopNotifier{},
		fallback:   FallbackReply,
		logger:     slog.Default(),
		ctx:        ctx,
		cancel:     cancel,
		lastActive: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "chat", "conversation_id", id)
	c.scroll = NewAutoscroll(func(length int, waiting bool) {
		c.notifier.Notify(Event{ConversationID: c.id, Kind: EventScrollRequested, Count: length, Waiting: waiting})
	})
	return c
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string { return c.id }

// Owner returns the visitor that opened the conversation.
func (c *Conversation) Owner() string { return c.owner }

// Store exposes the underlying message store. Listeners subscribed to it run
// while the conversation lock is held and must not call back into c.
func (c *Conversation) Store() *Store { return c.store }

// Messages returns the transcript in order.
func (c *Conversation) Messages() []Message { return c.store.All() }

// Waiting reports whether a reply is pending.
func (c *Conversation) Waiting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waiting
}

// Input returns the current input buffer.
func (c *Conversation) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetInput replaces the input buffer.
func (c *Conversation) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
}

// CanSend mirrors the send button: enabled for non-blank input while no
// reply is pending.
func (c *Conversation) CanSend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && !c.waiting && strings.TrimSpace(c.input) != ""
}

// LastActive returns the time of the last accepted submission or creation.
func (c *Conversation) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Snapshot returns the transcript and flags taken under one lock.
func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		ID:       c.id,
		Messages: c.store.All(),
		Waiting:  c.waiting,
		Input:    c.input,
		Closed:   c.closed,
	}
}

// SubmitInput submits the input buffer.
func (c *Conversation) SubmitInput() (Message, error) {
	return c.Submit(c.Input())
}

// HandleKey applies the keyboard contract: Enter without shift submits the
// input buffer, everything else is left to the input field. handled reports
// whether the key triggered a submission attempt.
func (c *Conversation) HandleKey(k KeyPress) (msg Message, handled bool, err error) {
	if k.Key != KeyEnter || k.Shift {
		return Message{}, false, nil
	}
	msg, err = c.SubmitInput()
	return msg, true, err
}

// Submit appends raw as a user message and starts the responder. Blank input
// returns domain.ErrBlankMessage and changes nothing. While a reply is
// pending it returns domain.ErrAwaitingReply.
func (c *Conversation) Submit(raw string) (Message, error) {
	if strings.TrimSpace(raw) == "" {
		return Message{}, domain.ErrBlankMessage
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Message{}, domain.ErrConversationClosed
	}
	if c.waiting {
		c.mu.Unlock()
		return Message{}, domain.ErrAwaitingReply
	}

	msg := c.store.Append(Message{Text: raw, Sender: SenderUser})
	c.input = ""
	c.waiting = true
	c.lastActive = time.Now()
	count := c.store.Len()
	c.wg.Add(1)

	c.emitMu.Lock()
	c.mu.Unlock()
	c.emit(
		Event{ConversationID: c.id, Kind: EventMessageAppended, Message: &msg, Count: count, Waiting: true},
		Event{ConversationID: c.id, Kind: EventWaitingChanged, Count: count, Waiting: true},
	)
	c.emitMu.Unlock()

	go c.awaitReply(msg)
	return msg, nil
}

func (c *Conversation) awaitReply(msg Message) {
	defer c.wg.Done()

	text, err := c.responder.Reply(c.ctx, msg)
	if c.ctx.Err() != nil {
		c.logger.Debug("Reply discarded after teardown", "message_id", msg.ID)
		return
	}
	if err != nil {
		c.logger.Error("Responder failed, sending fallback reply", "message_id", msg.ID, "error", err)
		text = c.fallback
	} else if strings.TrimSpace(text) == "" {
		c.logger.Warn("Responder returned an empty reply, sending fallback reply", "message_id", msg.ID)
		text = c.fallback
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	reply := c.store.Append(Message{Text: text, Sender: SenderAssistant})
	c.waiting = false
	count := c.store.Len()

	c.emitMu.Lock()
	c.mu.Unlock()
	c.emit(
		Event{ConversationID: c.id, Kind: EventMessageAppended, Message: &reply, Count: count, Waiting: false},
		Event{ConversationID: c.id, Kind: EventWaitingChanged, Count: count, Waiting: false},
	)
	c.emitMu.Unlock()
}

// emit must be called with emitMu held.
func (c *Conversation) emit(events ...Event) {
	for _, e := range events {
		c.notifier.Notify(e)
		c.scroll.Observe(e.Count, e.Waiting)
	}
}

// Close tears the conversation down. A pending reply is cancelled and never
// appended. Close is idempotent.
func (c *Conversation) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	count := c.store.Len()

	c.emitMu.Lock()
	c.mu.Unlock()
	c.notifier.Notify(Event{ConversationID: c.id, Kind: EventClosed, Count: count})
	c.emitMu.Unlock()
}

// Closed reports whether Close has been called.
func (c *Conversation) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Wait blocks until every started reply goroutine has finished.
func (c *Conversation) Wait() {
	c.wg.Wait()
}
