package partials

import (
	"fmt"
	"time"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// DefaultBackgroundSpeed is the base period of the gradient animation.
const DefaultBackgroundSpeed = 28 * time.Second

// BackgroundProps configures the animated gradient.
type BackgroundProps struct {
	// Dark switches the bottom overlay from cream to dark brown.
	Dark bool
	// Speed is the base animation period. Zero means DefaultBackgroundSpeed.
	Speed time.Duration
	Class string
}

// Background renders the decorative full-screen gradient. It is purely visual
// and hidden from assistive technology.
func Background(p BackgroundProps) g.Node {
	speed := p.Speed
	if speed <= 0 {
		speed = DefaultBackgroundSpeed
	}
	theme := "light"
	if p.Dark {
		theme = "dark"
	}
	class := "plug-gradient"
	if p.Class != "" {
		class += " " + p.Class
	}

	return Div(
		Class(class),
		Data("theme", theme),
		Aria("hidden", "true"),
		Div(
			Class("plug-gradient__bg"),
			Style(fmt.Sprintf("--plug-speed: %gs", speed.Seconds())),
		),
		Div(Class("plug-gradient__sheen")),
		Div(Class("plug-gradient__grain")),
		Div(Class("plug-gradient__overlay")),
	)
}
