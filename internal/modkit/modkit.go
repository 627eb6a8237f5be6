package modkit

import (
	phttp "storecast/internal/platform/net/http"
)

// Module is the common surface for API modules that can mount routes and
// expose ports. Kept tiny so the forecast, meta and bot modules stay
// decoupled from each other
type Module interface {
	// MountRoutes mounts HTTP routes under the provided router seam
	MountRoutes(r phttp.Router)
	// Ports returns a module specific port set for cross wiring
	Ports() any

	// Name returns the module name
	Name() string
}

// Builder constructs a Module from shared deps and options
// modules typically expose New(deps Deps, opts ...Option) Module and may delegate to this pattern
type Builder func(Deps, ...Option) Module
