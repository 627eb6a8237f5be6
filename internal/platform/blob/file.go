package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	perr "storecast/internal/platform/errors"
)

// fileStore keeps objects under a base directory
type fileStore struct {
	dir string
}

func newFileStore(dir string) (*fileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, perr.InvalidArgf("blob: empty base directory")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("blob: resolve %s: %w", dir, err)
	}
	return &fileStore{dir: filepath.Clean(abs)}, nil
}

// safePath joins key under the base and refuses escapes
func (f *fileStore) safePath(key string) (string, error) {
	resolved := filepath.Clean(filepath.Join(f.dir, filepath.Clean(key)))
	if resolved != f.dir && !strings.HasPrefix(resolved, f.dir+string(os.PathSeparator)) {
		return "", perr.InvalidArgf("blob: key %q escapes the store", key)
	}
	return resolved, nil
}

func (f *fileStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := f.safePath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, perr.NotFoundf("blob: %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("blob: read %s: %w", key, err)
	}
	return data, nil
}

func (f *fileStore) Put(_ context.Context, key string, data []byte) error {
	p, err := f.safePath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("blob: mkdir for %s: %w", key, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("blob: write %s: %w", key, err)
	}
	return nil
}

func (f *fileStore) Close() error { return nil }
