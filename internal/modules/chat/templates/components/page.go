package components

import (
	g "maragu.dev/gomponents"

	"github.com/nfrund/plug/internal/chat"
	"github.com/nfrund/plug/web/src/templates/layouts"
	"github.com/nfrund/plug/web/src/templates/partials"
)

// Page is the chat root: the gradient background behind the widget.
func Page(snap chat.Snapshot, liveReload bool) g.Node {
	return layouts.Document(layouts.Page{
		Title:      "Chat",
		BodyClass:  "chat-page",
		LiveReload: liveReload,
		Body: []g.Node{
			partials.Background(partials.BackgroundProps{}),
			Widget(snap),
		},
	})
}
