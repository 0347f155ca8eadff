package layouts

import (
	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// Script sources. htmx and its websocket extension are loaded from the CDN.
const (
	HTMXSrc   = "https://unpkg.com/htmx.org@2.0.4"
	HTMXWSSrc = "https://unpkg.com/htmx-ext-ws@2.0.2/ws.js"
	StyleHref = "/static/css/plug.css"
	ScriptSrc = "/static/js/plug.js"
	// ReloadPath is the websocket the live reload fragment arrives on.
	ReloadPath = "/dev/reload"
)

// Page describes a full HTML document.
type Page struct {
	Title      string
	BodyClass  string
	LiveReload bool
	Body       []g.Node
}

// Document wraps page content in the document shell shared by every root.
func Document(p Page) g.Node {
	return c.HTML5(c.HTML5Props{
		Title:       CalculateTitle(p.Title),
		Description: "Plug: find the perfect legal edibles from registered vendors.",
		Language:    "en",
		Head: []g.Node{
			Link(Rel("stylesheet"), Href(StyleHref)),
			Script(Src(HTMXSrc), Defer()),
			Script(Src(HTMXWSSrc), Defer()),
			Script(Src(ScriptSrc), Defer()),
		},
		Body: []g.Node{
			g.If(p.BodyClass != "", Class(p.BodyClass)),
			g.Group(p.Body),
			g.If(p.LiveReload, liveReload()),
		},
	})
}

// liveReload connects to the reload socket. The server pushes a fragment that
// replaces #dev-reload with a script calling location.reload().
func liveReload() g.Node {
	return Div(
		hx.Ext("ws"),
		g.Attr("ws-connect", ReloadPath),
		Div(ID("dev-reload")),
	)
}
