package components

import (
	g "maragu.dev/gomponents"

	"github.com/nfrund/plug/web/src/templates/layouts"
	"github.com/nfrund/plug/web/src/templates/partials"
)

// Page is the landing root.
func Page(liveReload bool) g.Node {
	return layouts.Document(layouts.Page{
		Title:      "Welcome",
		BodyClass:  "landing",
		LiveReload: liveReload,
		Body: []g.Node{
			partials.Background(partials.BackgroundProps{Dark: true}),
			SiteHeader(),
			g.El("main",
				Hero(),
				Features(DefaultFeatures),
			),
		},
	})
}
