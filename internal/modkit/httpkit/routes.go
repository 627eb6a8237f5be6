package httpkit

import "net/http"

// MountUnder mounts a subrouter at prefix with the module's middleware
// applied before any of its routes. The forecast and bot modules route
// through here so prefix handling stays in one place
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}
