package components

import (
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// MenuPath serves the mobile menu fragment.
const MenuPath = "/landing/menu"

// NavLink is an in-page anchor in the site navigation.
type NavLink struct {
	Label string
	Href  string
}

// NavSections are the page anchors, in menu order.
var NavSections = []string{"home", "features", "about", "contact"}

// NavLinks are shown in both the desktop bar and the mobile menu.
var NavLinks = navLinks(NavSections)

func navLinks(sections []string) []NavLink {
	caser := cases.Title(language.English)
	out := make([]NavLink, len(sections))
	for i, s := range sections {
		out[i] = NavLink{Label: caser.String(s), Href: "#" + s}
	}
	return out
}

const (
	iconOpen  = `<svg fill="none" stroke="currentColor" viewBox="0 0 24 24" aria-hidden="true"><path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M4 6h16M4 12h16M4 18h16"/></svg>`
	iconClose = `<svg fill="none" stroke="currentColor" viewBox="0 0 24 24" aria-hidden="true"><path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M6 18L18 6M6 6l12 12"/></svg>`
)

// SiteHeader renders the site header with the mobile menu closed.
func SiteHeader() g.Node {
	return Header(
		Class("site-header"),
		Nav(
			Class("site-nav"),
			Div(
				Class("site-nav__bar"),
				Div(Class("site-nav__brand"), Span(Class("gradient-text"), g.Text("Plug"))),
				Div(Class("site-nav__links"), links()),
				menuToggle(false, false),
			),
			mobileMenu(false, false),
		),
	)
}

// menuToggle renders the hamburger button. Clicking it asks the server for
// the opposite state.
func menuToggle(open, oob bool) g.Node {
	icon, label := iconOpen, "Open menu"
	if open {
		icon, label = iconClose, "Close menu"
	}
	return Button(
		ID("menu-toggle"),
		Type("button"),
		Class("site-nav__toggle"),
		Aria("expanded", strconv.FormatBool(open)),
		Aria("controls", "mobile-menu"),
		Aria("label", label),
		hx.Get(MenuPath+"?open="+strconv.FormatBool(!open)),
		hx.Swap("none"),
		g.If(oob, hx.SwapOOB("true")),
		g.Raw(icon),
	)
}

// mobileMenu renders the collapsible navigation. It is empty when closed.
func mobileMenu(open, oob bool) g.Node {
	return Div(
		ID("mobile-menu"),
		Class("site-nav__mobile"),
		g.If(oob, hx.SwapOOB("true")),
		g.If(open, links()),
	)
}

// MenuFragment swaps both the menu and its toggle button out of band.
func MenuFragment(open bool) g.Node {
	return g.Group{
		mobileMenu(open, true),
		menuToggle(open, true),
	}
}

func links() g.Node {
	return g.Map(NavLinks, func(l NavLink) g.Node {
		return A(Href(l.Href), g.Text(l.Label))
	})
}
