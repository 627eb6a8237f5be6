package httpkit

import (
	"storecast/internal/platform/net/middleware"
)

// Protected groups routes behind the auth middleware
// routes registered inside fn reject requests the port does not verify
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p))
		fn(gr)
	})
}
