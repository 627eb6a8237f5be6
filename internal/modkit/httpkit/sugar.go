package httpkit

import (
	"net/http"

	phttp "storecast/internal/platform/net/http"
)

// Get registers a body-less handler through the envelope adapter
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// Post is Get's POST sibling for handlers that take no JSON body
func Post(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, Call(h))
}

// PostJSON mounts a typed JSON handler under POST with default parse options
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

// PostJSONOpts is PostJSON with explicit parse options. Predict raises the
// body cap for batch payloads; the bot webhook keeps unknown fields legal
// because Telegram adds them without notice.
func PostJSONOpts[T any](r Router, path string, h func(*http.Request, T) (any, error), opts JSONOptions) {
	r.Post(path, phttp.JSONHandlerOpts(h, opts))
}
