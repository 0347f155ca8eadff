package chat

import "sync"

// Autoscroll calls its hook with the new view state whenever the visible
// message count or the typing indicator changes. The first observation
// always scrolls.
type Autoscroll struct {
	mu      sync.Mutex
	scroll  func(length int, waiting bool)
	seen    bool
	length  int
	waiting bool
}

// NewAutoscroll creates an Autoscroll that invokes scroll on change.
func NewAutoscroll(scroll func(length int, waiting bool)) *Autoscroll {
	return &Autoscroll{scroll: scroll}
}

// Observe records the current view state.
func (a *Autoscroll) Observe(length int, waiting bool) {
	a.mu.Lock()
	changed := !a.seen || a.length != length || a.waiting != waiting
	a.seen, a.length, a.waiting = true, length, waiting
	a.mu.Unlock()

	if changed && a.scroll != nil {
		a.scroll(length, waiting)
	}
}
