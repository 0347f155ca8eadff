package chat

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCannedResponder_Defaults(t *testing.T) {
	r := NewCannedResponder("", -1)
	assert.Equal(t, CannedReply, r.Text)
	assert.Equal(t, DefaultReplyDelay, r.Delay)

	r = NewCannedResponder("custom", 0)
	assert.Equal(t, "custom", r.Text)
	assert.Zero(t, r.Delay)
}

func TestCannedResponder_WaitsForDelay(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := NewCannedResponder(CannedReply, DefaultReplyDelay)
		start := time.Now()

		text, err := r.Reply(context.Background(), Message{Text: "Hello"})

		require.NoError(t, err)
		assert.Equal(t, CannedReply, text)
		assert.Equal(t, DefaultReplyDelay, time.Since(start))
	})
}

func TestCannedResponder_Cancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := NewCannedResponder(CannedReply, DefaultReplyDelay)
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		text, err := r.Reply(ctx, Message{Text: "Hello"})

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Empty(t, text)
	})
}

func TestResponderFunc(t *testing.T) {
	r := ResponderFunc(func(ctx context.Context, msg Message) (string, error) {
		return "echo: " + msg.Text, nil
	})

	text, err := r.Reply(context.Background(), Message{Text: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "echo: ping", text)
}
