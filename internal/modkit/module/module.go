// Package module defines the minimal module contract plus the port registry
package module

import (
	phttp "storecast/internal/platform/net/http"
)

// Module mirrors the modkit contract as a sibling type. The api harness
// ranges over []module.Module without importing modkit, which keeps the
// import graph acyclic when a module also exports its own ports type
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
