package chat

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is a single chat bubble. Messages are immutable once appended.
type Message struct {
	// ID is derived from CreatedAt in Unix milliseconds and is unique and
	// strictly increasing within one store.
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromUser reports whether the message was typed by the visitor.
func (m Message) FromUser() bool {
	return m.Sender == SenderUser
}
