// Package blob stores and fetches artifact objects by URI.
// Bases are file:// URIs, bare directories, or s3:// buckets; keys ending
// in .sz are snappy framed transparently on both reads and writes
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/golang/snappy"

	perr "storecast/internal/platform/errors"
)

// Store is the byte level artifact seam
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// Option tweaks backend construction
type Option func(*options)

type options struct {
	region    string
	endpoint  string
	pathStyle bool
}

// WithRegion pins the s3 region instead of the default chain
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint points the s3 backend at a compatible service such as minio
func WithEndpoint(endpoint string, pathStyle bool) Option {
	return func(o *options) {
		o.endpoint = endpoint
		o.pathStyle = pathStyle
	}
}

// Open constructs a Store rooted at base
func Open(ctx context.Context, base string, opts ...Option) (Store, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	var (
		inner Store
		err   error
	)
	switch {
	case strings.HasPrefix(base, "s3://"):
		inner, err = openS3(ctx, base, o)
	case strings.HasPrefix(base, "file://"):
		inner, err = newFileStore(strings.TrimPrefix(base, "file://"))
	default:
		inner, err = newFileStore(base)
	}
	if err != nil {
		return nil, err
	}
	return codecStore{inner: inner}, nil
}

// Fetch reads one object by full URI, opening a Store around it
func Fetch(ctx context.Context, uri string, opts ...Option) ([]byte, error) {
	base, key, err := splitURI(uri)
	if err != nil {
		return nil, err
	}
	st, err := Open(ctx, base, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()
	return st.Get(ctx, key)
}

// Write stores one object by full URI, opening a Store around it
func Write(ctx context.Context, uri string, data []byte, opts ...Option) error {
	base, key, err := splitURI(uri)
	if err != nil {
		return err
	}
	st, err := Open(ctx, base, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	return st.Put(ctx, key, data)
}

// Compressed reports whether key names a snappy framed object
func Compressed(key string) bool { return strings.HasSuffix(key, ".sz") }

// codecStore applies the .sz framing around any backend
type codecStore struct {
	inner Store
}

func (c codecStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !Compressed(key) {
		return raw, nil
	}
	out, err := io.ReadAll(snappy.NewReader(bytes.NewReader(raw)))
	if err != nil {
		return nil, fmt.Errorf("blob: snappy decode %s: %w", key, err)
	}
	return out, nil
}

func (c codecStore) Put(ctx context.Context, key string, data []byte) error {
	if !Compressed(key) {
		return c.inner.Put(ctx, key, data)
	}
	var buf bytes.Buffer
	w := snappy.NewBufferedWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("blob: snappy encode %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("blob: snappy flush %s: %w", key, err)
	}
	return c.inner.Put(ctx, key, buf.Bytes())
}

func (c codecStore) Close() error { return c.inner.Close() }

// splitURI splits a full object URI into a Store base and a key
func splitURI(uri string) (base, key string, err error) {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		rest := strings.TrimPrefix(uri, "s3://")
		dir, name := path.Split(rest)
		if name == "" || !strings.Contains(rest, "/") {
			return "", "", perr.InvalidArgf("blob: s3 uri %q needs bucket and key", uri)
		}
		return "s3://" + strings.TrimSuffix(dir, "/"), name, nil

	case strings.HasPrefix(uri, "file://"):
		dir, name := path.Split(strings.TrimPrefix(uri, "file://"))
		if name == "" {
			return "", "", perr.InvalidArgf("blob: uri %q names no object", uri)
		}
		return dir, name, nil

	default:
		dir, name := path.Split(uri)
		if name == "" {
			return "", "", perr.InvalidArgf("blob: uri %q names no object", uri)
		}
		if dir == "" {
			dir = "."
		}
		return dir, name, nil
	}
}
