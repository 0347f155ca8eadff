package firebase

import (
	"context"
	"fmt"

	"github.com/nfrund/plug/internal/chat"
)

// FunctionsResponder answers chat messages with a callable function that
// takes {"message": text} and returns {"reply": text}.
type FunctionsResponder struct {
	client   *Client
	function string
}

// NewFunctionsResponder returns a responder calling the named function.
func NewFunctionsResponder(client *Client, function string) *FunctionsResponder {
	return &FunctionsResponder{client: client, function: function}
}

type replyRequest struct {
	Message string `json:"message"`
}

type replyResult struct {
	Reply string `json:"reply"`
}

// Reply implements chat.Responder.
func (r *FunctionsResponder) Reply(ctx context.Context, msg chat.Message) (string, error) {
	var out replyResult
	if err := r.client.Call(ctx, r.function, replyRequest{Message: msg.Text}, &out); err != nil {
		return "", fmt.Errorf("functions responder: %w", err)
	}
	return out.Reply, nil
}
