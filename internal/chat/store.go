package chat

import (
	"sync"
	"time"
)

// Listener is notified after every append.
type Listener func(Message)

// Store is an append-only, in-memory message list.
type Store struct {
	mu        sync.RWMutex
	messages  []Message
	listeners []listenerEntry
	nextID    int
}

type listenerEntry struct {
	id int
	fn Listener
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append assigns the message ID (and CreatedAt when unset), stores the
// message and notifies listeners. Listeners run synchronously on the calling
// goroutine after the store lock is released.
func (s *Store) Append(msg Message) Message {
	s.mu.Lock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.ID = msg.CreatedAt.UnixMilli()
	if n := len(s.messages); n > 0 && msg.ID <= s.messages[n-1].ID {
		msg.ID = s.messages[n-1].ID + 1
	}
	s.messages = append(s.messages, msg)

	listeners := make([]Listener, len(s.listeners))
	for i, l := range s.listeners {
		listeners[i] = l.fn
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(msg)
	}
	return msg
}

// All returns a copy of the messages in insertion order.
func (s *Store) All() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of stored messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: l})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, entry := range s.listeners {
			if entry.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}
