package chat

// EventKind names a conversation state change.
type EventKind string

const (
	EventMessageAppended EventKind = "message_appended"
	EventWaitingChanged  EventKind = "waiting_changed"
	EventScrollRequested EventKind = "scroll_requested"
	EventClosed          EventKind = "closed"
)

// Event describes one state change of a conversation. Count and Waiting are
// the values right after the change.
type Event struct {
	ConversationID string    `json:"conversationID"`
	Kind           EventKind `json:"kind"`
	Message        *Message  `json:"message,omitempty"`
	Count          int       `json:"count"`
	Waiting        bool      `json:"waiting"`
}

// Notifier receives conversation events in the order the changes happened.
// Notify must not call mutating Conversation methods.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}
