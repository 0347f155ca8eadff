package components

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const (
	HeroTagline = "A modern, fast, and beautiful React application built with Tailwind CSS. " +
		"Experience the power of modern web development."
	scrollIcon = `<svg fill="none" stroke="currentColor" viewBox="0 0 24 24" aria-hidden="true"><path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M19 14l-7 7m0 0l-7-7m7 7V3"/></svg>`
)

// Hero renders the full-height welcome section.
func Hero() g.Node {
	return Section(
		ID("home"),
		Class("hero"),
		Div(Class("hero__blob hero__blob--purple"), Aria("hidden", "true")),
		Div(Class("hero__blob hero__blob--pink"), Aria("hidden", "true")),
		Div(
			Class("hero__content"),
			H1(
				Class("hero__title"),
				g.Text("Welcome to "),
				Span(Class("gradient-text"), g.Text("Plug")),
			),
			P(Class("hero__tagline"), g.Text(HeroTagline)),
			Div(
				Class("hero__actions"),
				A(Href("/chat"), Class("button button--primary"), g.Text("Get Started")),
				A(Href("#features"), Class("button button--outline"), g.Text("Learn More")),
			),
		),
		A(Href("#features"), Class("hero__scroll"), Aria("label", "Scroll to features"), g.Raw(scrollIcon)),
	)
}
