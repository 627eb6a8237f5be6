package httpkit

import (
	"net/http"
	"strings"

	perrs "storecast/internal/platform/errors"
)

// Bearer returns the raw token from the Authorization header
// the scheme word is matched case-insensitively and surrounding whitespace is ignored
func Bearer(r *http.Request) (string, error) {
	s := strings.TrimSpace(r.Header.Get("Authorization"))
	if s == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	const prefix = "bearer"
	if !strings.HasPrefix(strings.ToLower(s), prefix) {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	raw := strings.TrimSpace(s[len(prefix):])
	if raw == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	return raw, nil
}

// MustBearer returns the raw bearer token or panics
// only use on routes protected by the auth middleware
func MustBearer(r *http.Request) string {
	raw, err := Bearer(r)
	if err != nil {
		panic(err)
	}
	return raw
}
