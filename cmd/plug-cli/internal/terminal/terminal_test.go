package terminal

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/plug/internal/chat"
)

// syncBuffer is a bytes.Buffer safe for the reply goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSession_RepliesToEachLine(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		out := &syncBuffer{}
		s := New(out, chat.WithResponder(chat.NewCannedResponder("hi there", time.Second)))

		err := s.Run(context.Background(), strings.NewReader("Hello\nAgain\n"))
		require.NoError(t, err)

		msgs := s.Conversation().Messages()
		require.Len(t, msgs, 4)
		assert.Equal(t, "Hello", msgs[0].Text)
		assert.Equal(t, "Again", msgs[2].Text)
		assert.Equal(t, 2, strings.Count(out.String(), "Assistant: hi there\n"))
		assert.Contains(t, out.String(), "Plug is typing...")
		assert.True(t, s.Conversation().Closed())
	})
}

func TestSession_ContinuationActsAsShiftEnter(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := New(&syncBuffer{}, chat.WithResponder(chat.NewCannedResponder("ok", time.Second)))

		err := s.Run(context.Background(), strings.NewReader("first line\\\nsecond line\n"))
		require.NoError(t, err)

		msgs := s.Conversation().Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, "first line\nsecond line", msgs[0].Text)
	})
}

func TestSession_BlankLinesAreIgnored(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		out := &syncBuffer{}
		s := New(out)

		err := s.Run(context.Background(), strings.NewReader("\n   \n"))
		require.NoError(t, err)

		assert.Empty(t, s.Conversation().Messages())
		assert.NotContains(t, out.String(), "typing")
		assert.Contains(t, out.String(), "Conversation closed.")
	})
}
