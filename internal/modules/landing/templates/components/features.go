package components

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Feature is one card in the features grid.
type Feature struct {
	Title       string
	Description string
	Icon        string
}

// DefaultFeatures is the static feature table.
var DefaultFeatures = []Feature{
	{
		Title:       "React 18",
		Description: "Built with the latest React features including concurrent rendering and automatic batching.",
		Icon:        "⚛️",
	},
	{
		Title:       "Tailwind CSS",
		Description: "Utility-first CSS framework for rapid UI development with consistent design.",
		Icon:        "🎨",
	},
	{
		Title:       "Vite",
		Description: "Lightning-fast build tool with hot module replacement for the best developer experience.",
		Icon:        "⚡",
	},
	{
		Title:       "Responsive Design",
		Description: "Mobile-first responsive design that works perfectly on all devices and screen sizes.",
		Icon:        "📱",
	},
	{
		Title:       "Modern JavaScript",
		Description: "ES6+ features, JSX, and modern development practices for clean, maintainable code.",
		Icon:        "🚀",
	},
	{
		Title:       "Component Architecture",
		Description: "Modular component-based architecture for scalable and reusable UI elements.",
		Icon:        "🧩",
	},
}

// Features renders the features section.
func Features(features []Feature) g.Node {
	return Section(
		ID("features"),
		Class("features"),
		Div(
			Class("features__inner"),
			Div(
				Class("features__intro"),
				H2(
					Class("features__title"),
					g.Text("Powerful "),
					Span(Class("gradient-text"), g.Text("Features")),
				),
				P(Class("features__lead"),
					g.Text("Built with cutting-edge technologies to deliver exceptional performance and developer experience."),
				),
			),
			Div(
				Class("features__grid"),
				g.Map(features, FeatureCard),
			),
		),
	)
}

// FeatureCard renders a single feature.
func FeatureCard(f Feature) g.Node {
	return Article(
		Class("feature-card"),
		Div(Class("feature-card__icon"), Aria("hidden", "true"), g.Text(f.Icon)),
		H3(Class("feature-card__title"), g.Text(f.Title)),
		P(Class("feature-card__text"), g.Text(f.Description)),
	)
}
