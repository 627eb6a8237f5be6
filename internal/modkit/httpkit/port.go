// Package httpkit provides tiny HTTP helpers and adapters
package httpkit

import (
	"crypto/subtle"
	"net/http"

	perrs "storecast/internal/platform/errors"
)

// VerifyFunc checks a presented bearer token and rejects with an error
type VerifyFunc func(token string) error

// Port implements middleware.AuthPort by reading Authorization and delegating to a VerifyFunc
type Port struct {
	verify VerifyFunc
}

// NewPortFunc builds a Port from a simple verifier function
func NewPortFunc(fn VerifyFunc) *Port {
	return &Port{verify: fn}
}

// NewStaticToken builds a Port that accepts exactly one shared token
// the comparison is constant time
func NewStaticToken(expect string) *Port {
	want := []byte(expect)
	return NewPortFunc(func(token string) error {
		if subtle.ConstantTimeCompare([]byte(token), want) != 1 {
			return perrs.Unauthorizedf("invalid bearer token")
		}
		return nil
	})
}

// Verify extracts the Authorization Bearer token and runs the verifier
// returns unauthorized when the header is missing, malformed, or the verifier rejects
func (p *Port) Verify(r *http.Request) error {
	raw, err := Bearer(r)
	if err != nil {
		return err
	}
	if p.verify == nil {
		return perrs.Unauthorizedf("invalid bearer token")
	}
	if err := p.verify(raw); err != nil {
		return perrs.Unauthorizedf("invalid bearer token")
	}
	return nil
}

// HeaderPort implements middleware.AuthPort by matching a fixed secret header
// webhook receivers authenticate this way when the caller cannot set Authorization
type HeaderPort struct {
	header string
	want   []byte
}

// NewHeaderSecret builds a HeaderPort for the named header and expected value
func NewHeaderSecret(header, expect string) *HeaderPort {
	return &HeaderPort{header: header, want: []byte(expect)}
}

// Verify compares the named header against the configured secret in constant time
func (p *HeaderPort) Verify(r *http.Request) error {
	got := r.Header.Get(p.header)
	if got == "" {
		return perrs.Unauthorizedf("missing %s header", p.header)
	}
	if subtle.ConstantTimeCompare([]byte(got), p.want) != 1 {
		return perrs.Unauthorizedf("invalid %s header", p.header)
	}
	return nil
}
