package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/plug/internal/domain"
)

// recorder collects conversation events for inspection.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

type mockResponder struct {
	mock.Mock
}

func (m *mockResponder) Reply(ctx context.Context, msg Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func TestConversation_BlankSubmitIsIgnored(t *testing.T) {
	rec := &recorder{}
	conv := NewConversation("c1", "v1", WithNotifier(rec))

	for _, raw := range []string{"", " ", "\t\n  "} {
		_, err := conv.Submit(raw)
		assert.ErrorIs(t, err, domain.ErrBlankMessage)
	}

	assert.Empty(t, conv.Messages())
	assert.False(t, conv.Waiting())
	assert.Empty(t, rec.kinds())
}

func TestConversation_SubmitAppendsUserMessage(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		conv := NewConversation("c1", "v1")
		conv.SetInput("Hello")

		msg, err := conv.SubmitInput()
		require.NoError(t, err)

		assert.Equal(t, "Hello", msg.Text)
		assert.Equal(t, SenderUser, msg.Sender)
		assert.Empty(t, conv.Input(), "input is cleared immediately")
		assert.True(t, conv.Waiting())
		require.Len(t, conv.Messages(), 1)

		conv.Wait()
	})
}

func TestConversation_KeepsRawText(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		conv := NewConversation("c1", "v1")

		msg, err := conv.Submit("  padded  ")
		require.NoError(t, err)
		assert.Equal(t, "  padded  ", msg.Text)

		conv.Wait()
	})
}

func TestConversation_ReplyArrivesAfterDelay(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		conv := NewConversation("c1", "v1")

		_, err := conv.Submit("Hello")
		require.NoError(t, err)

		time.Sleep(DefaultReplyDelay - time.Millisecond)
		synctest.Wait()
		assert.Len(t, conv.Messages(), 1, "no reply before the delay elapses")
		assert.True(t, conv.Waiting())

		time.Sleep(time.Millisecond)
		synctest.Wait()

		msgs := conv.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, SenderAssistant, msgs[1].Sender)
		assert.Equal(t, CannedReply, msgs[1].Text)
		assert.Equal(t, DefaultReplyDelay, msgs[1].CreatedAt.Sub(msgs[0].CreatedAt))
		assert.Greater(t, msgs[1].ID, msgs[0].ID)
		assert.False(t, conv.Waiting())
	})
}

func TestConversation_WaitingOnlyWhileReplyPending(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		conv := NewConversation("c1", "v1", WithNotifier(rec))
		assert.False(t, conv.Waiting())

		_, err := conv.Submit("Hello")
		require.NoError(t, err)
		conv.Wait()

		var appended []Event
		for _, e := range rec.events {
			if e.Kind == EventMessageAppended {
				appended = append(appended, e)
			}
		}
		require.Len(t, appended, 2)
		assert.True(t, appended[0].Waiting, "waiting starts with the user message")
		assert.False(t, appended[1].Waiting, "waiting ends with the reply")
		assert.False(t, conv.Waiting())
	})
}

func TestConversation_AlternatesSenders(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		conv := NewConversation("c1", "v1")
		const n = 5

		for i := 0; i < n; i++ {
			_, err := conv.Submit("message")
			require.NoError(t, err)
			conv.Wait()
		}

		msgs := conv.Messages()
		require.Len(t, msgs, 2*n)
		for i, m := range msgs {
			if i%2 == 0 {
				assert.Equal(t, SenderUser, m.Sender, "index %d", i)
			} else {
				assert.Equal(t, SenderAssistant, m.Sender, "index %d", i)
			}
		}
	})
}

func TestConversation_RejectsSubmitWhileWaiting(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		conv := NewConversation("c1", "v1")

		_, err := conv.Submit("first")
		require.NoError(t, err)
		conv.SetInput("second")
		assert.False(t, conv.CanSend())

		_, err = conv.Submit("second")
		assert.ErrorIs(t, err, domain.ErrAwaitingReply)
		assert.Equal(t, "second", conv.Input(), "rejected input stays in the buffer")

		conv.Wait()
		assert.True(t, conv.CanSend())
		assert.Len(t, conv.Messages(), 2)
	})
}

func TestConversation_HandleKey(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		conv := NewConversation("c1", "v1")
		conv.SetInput("line one")

		_, handled, err := conv.HandleKey(KeyPress{Key: KeyEnter, Shift: true})
		require.NoError(t, err)
		assert.False(t, handled, "shift+Enter is left to the input field")
		assert.Empty(t, conv.Messages())
		assert.Equal(t, "line one", conv.Input())

		_, handled, err = conv.HandleKey(KeyPress{Key: "a"})
		require.NoError(t, err)
		assert.False(t, handled)
		assert.Empty(t, conv.Messages())

		msg, handled, err := conv.HandleKey(KeyPress{Key: KeyEnter})
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Equal(t, "line one", msg.Text)
		assert.Empty(t, conv.Input())

		conv.Wait()
	})
}

func TestConversation_EnterMatchesExplicitSend(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		viaKey := NewConversation("a", "v1")
		viaSend := NewConversation("b", "v1")

		viaKey.SetInput("Hello")
		_, _, err := viaKey.HandleKey(KeyPress{Key: KeyEnter})
		require.NoError(t, err)

		viaSend.SetInput("Hello")
		_, err = viaSend.SubmitInput()
		require.NoError(t, err)

		viaKey.Wait()
		viaSend.Wait()

		keyMsgs, sendMsgs := viaKey.Messages(), viaSend.Messages()
		require.Len(t, keyMsgs, len(sendMsgs))
		for i := range keyMsgs {
			assert.Equal(t, sendMsgs[i].Text, keyMsgs[i].Text)
			assert.Equal(t, sendMsgs[i].Sender, keyMsgs[i].Sender)
		}
	})
}

func TestConversation_BlankEnterIsSilent(t *testing.T) {
	conv := NewConversation("c1", "v1")
	conv.SetInput("   ")

	_, handled, err := conv.HandleKey(KeyPress{Key: KeyEnter})
	assert.True(t, handled)
	assert.ErrorIs(t, err, domain.ErrBlankMessage)
	assert.Empty(t, conv.Messages())
	assert.False(t, conv.Waiting())
}

func TestConversation_CloseDropsPendingReply(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		conv := NewConversation("c1", "v1", WithNotifier(rec))

		_, err := conv.Submit("Hello")
		require.NoError(t, err)

		time.Sleep(time.Second)
		conv.Close()
		conv.Wait()

		time.Sleep(5 * time.Second)
		synctest.Wait()

		assert.Len(t, conv.Messages(), 1)
		assert.True(t, conv.Closed())
		assert.Equal(t, EventClosed, rec.kinds()[len(rec.kinds())-1])

		_, err = conv.Submit("again")
		assert.ErrorIs(t, err, domain.ErrConversationClosed)

		assert.NotPanics(t, conv.Close, "close is idempotent")
	})
}

func TestConversation_ResponderErrorSendsFallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		failing := ResponderFunc(func(ctx context.Context, msg Message) (string, error) {
			return "", errors.New("backend unavailable")
		})
		conv := NewConversation("c1", "v1", WithResponder(failing))

		_, err := conv.Submit("Hello")
		require.NoError(t, err)
		conv.Wait()

		msgs := conv.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, FallbackReply, msgs[1].Text)
		assert.False(t, conv.Waiting())
	})
}

func TestConversation_EmptyReplySendsFallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		empty := ResponderFunc(func(ctx context.Context, msg Message) (string, error) {
			return "  ", nil
		})
		conv := NewConversation("c1", "v1", WithResponder(empty), WithFallbackReply("try later"))

		_, err := conv.Submit("Hello")
		require.NoError(t, err)
		conv.Wait()

		msgs := conv.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, "try later", msgs[1].Text)
	})
}

func TestConversation_EventOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		conv := NewConversation("c1", "v1", WithNotifier(rec))

		_, err := conv.Submit("Hello")
		require.NoError(t, err)
		conv.Wait()

		assert.Equal(t, []EventKind{
			EventMessageAppended,
			EventScrollRequested,
			EventWaitingChanged,
			EventMessageAppended,
			EventScrollRequested,
			EventWaitingChanged,
		}, rec.kinds())

		var scrolls []Event
		for _, e := range rec.events {
			assert.Equal(t, "c1", e.ConversationID)
			if e.Kind == EventScrollRequested {
				scrolls = append(scrolls, e)
			}
		}
		require.Len(t, scrolls, 2)
		assert.Equal(t, 1, scrolls[0].Count, "scroll requests carry the visible length")
		assert.True(t, scrolls[0].Waiting)
		assert.Equal(t, 2, scrolls[1].Count)
		assert.False(t, scrolls[1].Waiting)
	})
}

func TestConversation_Snapshot(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		conv := NewConversation("c1", "v1")
		_, err := conv.Submit("Hello")
		require.NoError(t, err)
		conv.SetInput("draft")

		snap := conv.Snapshot()
		assert.Equal(t, "c1", snap.ID)
		assert.True(t, snap.Waiting)
		assert.Equal(t, "draft", snap.Input)
		assert.Len(t, snap.Messages, 1)
		assert.False(t, snap.Closed)

		conv.Wait()
	})
}

func TestConversation_ResponderReceivesUserMessage(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		responder := new(mockResponder)
		responder.On("Reply", mock.Anything, mock.MatchedBy(func(m Message) bool {
			return m.Text == "Do you ship?" && m.FromUser()
		})).Return("We ship to all 50 states.", nil).Once()

		conv := NewConversation("c1", "v1", WithResponder(responder))
		_, err := conv.Submit("Do you ship?")
		require.NoError(t, err)
		conv.Wait()

		responder.AssertExpectations(t)
		msgs := conv.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, "We ship to all 50 states.", msgs[1].Text)
	})
}
