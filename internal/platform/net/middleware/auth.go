package middleware

import (
	"net/http"

	pnet "storecast/internal/platform/net"
)

// AuthPort is the seam token verifiers implement. The forecast API uses a
// static bearer token; the chat webhook checks the secret header its
// platform echoes back
type AuthPort interface {
	// Verify inspects request credentials and errors when they are missing
	// or wrong
	Verify(r *http.Request) error
}

// Auth is a no-op until wired. It uses the port when provided
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			if err := p.Verify(r); err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
