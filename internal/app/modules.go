package app

import (
	"github.com/nfrund/plug/internal/devreload"
	"github.com/nfrund/plug/internal/module"
	"github.com/nfrund/plug/internal/modules/chat"
	"github.com/nfrund/plug/internal/modules/landing"
)

// NewModules creates and returns the list of all active modules for the application.
// This is the single source of truth for which features are enabled.
func NewModules() []module.Module {
	return []module.Module{
		// Add new application modules here.
		chat.New(),
		landing.New(),
		devreload.New(),
	}
}
