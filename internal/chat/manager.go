package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/plug/internal/domain"
)

const (
	// DefaultConversationTTL is how long an unattached conversation may sit idle.
	DefaultConversationTTL = 30 * time.Minute
	// DefaultTeardownGrace is how long a conversation survives its last
	// websocket closing, so page reloads and flaky networks can reattach.
	DefaultTeardownGrace = 10 * time.Second
	// DefaultSweepInterval is how often Run looks for idle conversations.
	DefaultSweepInterval = time.Minute
)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithConversationTTL sets the idle lifetime of unattached conversations.
func WithConversationTTL(d time.Duration) ManagerOption {
	return func(m *Manager) { m.ttl = d }
}

// WithTeardownGrace sets the delay between the last detach and teardown.
// Zero tears down immediately.
func WithTeardownGrace(d time.Duration) ManagerOption {
	return func(m *Manager) { m.grace = d }
}

// WithSweepInterval sets how often Run sweeps idle conversations.
func WithSweepInterval(d time.Duration) ManagerOption {
	return func(m *Manager) { m.sweepEvery = d }
}

// WithConversationOptions sets the options applied to every new conversation.
func WithConversationOptions(opts ...Option) ManagerOption {
	return func(m *Manager) { m.convOpts = append(m.convOpts, opts...) }
}

type entry struct {
	conv     *Conversation
	attached int
	lastSeen time.Time
	teardown *time.Timer
}

// Manager owns the live conversations, one per page view.
type Manager struct {
	mu            sync.Mutex
	conversations map[string]*entry
	convOpts      []Option
	ttl           time.Duration
	grace         time.Duration
	sweepEvery    time.Duration
	logger        *slog.Logger
}

// NewManager creates an empty registry.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		conversations: make(map[string]*entry),
		ttl:           DefaultConversationTTL,
		grace:         DefaultTeardownGrace,
		sweepEvery:    DefaultSweepInterval,
		logger:        slog.Default().With("component", "chat_manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open creates a conversation owned by the given visitor.
func (m *Manager) Open(owner string) *Conversation {
	id := uuid.NewString()
	conv := NewConversation(id, owner, m.convOpts...)

	m.mu.Lock()
	m.conversations[id] = &entry{conv: conv, lastSeen: time.Now()}
	m.mu.Unlock()

	m.logger.Debug("Conversation opened", "conversation_id", id)
	return conv
}

// Get returns the conversation if it exists and belongs to owner.
func (m *Manager) Get(id, owner string) (*Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.conversations[id]
	if !ok || e.conv.Owner() != owner {
		return nil, domain.ErrConversationNotFound
	}
	e.lastSeen = time.Now()
	return e.conv, nil
}

// Lookup returns the conversation without an ownership check.
func (m *Manager) Lookup(id string) (*Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.conversations[id]
	if !ok {
		return nil, false
	}
	return e.conv, true
}

// Attach records a live websocket for the conversation and cancels any
// scheduled teardown.
func (m *Manager) Attach(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.conversations[id]
	if !ok {
		return domain.ErrConversationNotFound
	}
	e.attached++
	e.lastSeen = time.Now()
	if e.teardown != nil {
		e.teardown.Stop()
		e.teardown = nil
		m.logger.Debug("Teardown cancelled by reattach", "conversation_id", id)
	}
	return nil
}

// Release records a closed websocket. When the last one goes away the
// conversation is torn down after the grace period.
func (m *Manager) Release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.conversations[id]
	if !ok {
		return
	}
	if e.attached > 0 {
		e.attached--
	}
	e.lastSeen = time.Now()
	if e.attached > 0 {
		return
	}

	if m.grace <= 0 {
		m.removeLocked(id, e, "released")
		return
	}
	if e.teardown != nil {
		e.teardown.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(m.grace, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		cur, ok := m.conversations[id]
		if !ok || cur.teardown != timer || cur.attached > 0 {
			return
		}
		m.removeLocked(id, cur, "grace_expired")
	})
	e.teardown = timer
}

// Close tears a conversation down immediately.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.conversations[id]; ok {
		m.removeLocked(id, e, "closed")
	}
}

// removeLocked must be called with m.mu held.
func (m *Manager) removeLocked(id string, e *entry, reason string) {
	if e.teardown != nil {
		e.teardown.Stop()
	}
	delete(m.conversations, id)
	// Close emits a notification; run it off the manager lock.
	go e.conv.Close()
	m.logger.Debug("Conversation torn down", "conversation_id", id, "reason", reason)
}

// Sweep tears down unattached conversations idle for longer than the TTL and
// returns how many were removed.
func (m *Manager) Sweep() int {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.conversations {
		if e.attached > 0 {
			continue
		}
		last := e.lastSeen
		if active := e.conv.LastActive(); active.After(last) {
			last = active
		}
		if now.Sub(last) > m.ttl {
			m.removeLocked(id, e, "idle")
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("Swept idle conversations", "count", removed)
	}
	return removed
}

// Run sweeps idle conversations until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Len returns the number of live conversations.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conversations)
}

// Shutdown closes every conversation and waits for pending replies to
// unwind or for ctx to expire.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	convs := make([]*Conversation, 0, len(m.conversations))
	for id, e := range m.conversations {
		if e.teardown != nil {
			e.teardown.Stop()
		}
		convs = append(convs, e.conv)
		delete(m.conversations, id)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, c := range convs {
			c.Close()
			c.Wait()
		}
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("Chat manager shut down", "closed", len(convs))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
