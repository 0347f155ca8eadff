package chat

import (
	"context"
	"time"
)

const (
	// CannedReply is the fixed assistant text.
	CannedReply = "Thanks for your message! I'm here to help you find the perfect legal edibles from our registered vendors."
	// DefaultReplyDelay is how long the canned responder "types".
	DefaultReplyDelay = 2 * time.Second
	// FallbackReply is appended when a responder fails so every accepted
	// message still gets exactly one answer.
	FallbackReply = "Sorry, I couldn't come up with an answer just now. Please try again in a moment."
)

// Responder produces the assistant's answer to a user message. Reply may
// block; the conversation runs it on its own goroutine and cancels ctx on
// teardown.
type Responder interface {
	Reply(ctx context.Context, msg Message) (string, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, msg Message) (string, error)

func (f ResponderFunc) Reply(ctx context.Context, msg Message) (string, error) {
	return f(ctx, msg)
}

// CannedResponder answers every message with the same text after a delay.
type CannedResponder struct {
	Text  string
	Delay time.Duration
}

// NewCannedResponder builds a CannedResponder. An empty text or a negative
// delay falls back to the defaults.
func NewCannedResponder(text string, delay time.Duration) *CannedResponder {
	if text == "" {
		text = CannedReply
	}
	if delay < 0 {
		delay = DefaultReplyDelay
	}
	return &CannedResponder{Text: text, Delay: delay}
}

// Reply waits for Delay and returns Text, or returns early with ctx's error.
func (r *CannedResponder) Reply(ctx context.Context, _ Message) (string, error) {
	timer := time.NewTimer(r.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return r.Text, nil
	}
}
