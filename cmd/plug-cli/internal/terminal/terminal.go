// Package terminal renders a chat conversation on a line-oriented terminal.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nfrund/plug/internal/chat"
	"github.com/nfrund/plug/internal/domain"
)

// Continuation at the end of a line acts as shift+Enter.
const Continuation = `\`

// Prompt is printed before every new message.
const Prompt = "> "

// Session drives one conversation from an input stream and prints its
// events to out.
type Session struct {
	conv  *chat.Conversation
	title cases.Caser

	mu  sync.Mutex
	out io.Writer
}

// New creates a session with a fresh conversation. opts are applied to the
// conversation; the session installs itself as the notifier.
func New(out io.Writer, opts ...chat.Option) *Session {
	s := &Session{out: out, title: cases.Title(language.English)}
	opts = append(opts, chat.WithNotifier(s))
	s.conv = chat.NewConversation("terminal", "terminal", opts...)
	return s
}

// Conversation returns the underlying conversation.
func (s *Session) Conversation() *chat.Conversation { return s.conv }

// Notify prints conversation events.
func (s *Session) Notify(e chat.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Kind {
	case chat.EventMessageAppended:
		if e.Message != nil && !e.Message.FromUser() {
			fmt.Fprintf(s.out, "%s: %s\n", s.label(e.Message.Sender), e.Message.Text)
		}
	case chat.EventWaitingChanged:
		if e.Waiting {
			fmt.Fprintln(s.out, "Plug is typing...")
		}
	case chat.EventClosed:
		fmt.Fprintln(s.out, "Conversation closed.")
	}
}

func (s *Session) label(sender chat.Sender) string {
	return s.title.String(string(sender))
}

func (s *Session) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// Run reads lines from in until EOF or ctx is cancelled. Each line is typed
// into the input buffer and ends with Enter; a trailing backslash sends
// shift+Enter instead so the message continues on the next line. Run waits
// for each reply before prompting again and closes the conversation on
// return.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	defer func() {
		s.conv.Close()
		s.conv.Wait()
	}()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	var draft strings.Builder
	s.printf("%s", Prompt)
	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			select {
			case err := <-scanErr:
				return err
			default:
				return nil
			}
		}

		key := chat.KeyPress{Key: chat.KeyEnter}
		if strings.HasSuffix(line, Continuation) {
			line = strings.TrimSuffix(line, Continuation)
			key.Shift = true
		}
		draft.WriteString(line)
		if key.Shift {
			draft.WriteString("\n")
		}
		s.conv.SetInput(draft.String())

		_, handled, err := s.conv.HandleKey(key)
		if !handled {
			continue
		}
		draft.Reset()

		switch {
		case errors.Is(err, domain.ErrBlankMessage):
		case err != nil:
			return err
		default:
			s.conv.Wait()
		}
		s.printf("%s", Prompt)
	}
}
