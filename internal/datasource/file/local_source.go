// Package file implements local filesystem sources and sinks.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local is a filesystem data source that opens files from the local disk.
type Local struct{ path string }

// NewLocal returns a Local source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Open opens the configured path for reading.
//
// A canceled context short-circuits before touching the filesystem. Filesystem
// errors are wrapped with the path and still satisfy errors.Is checks such as
// errors.Is(err, os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Target is a filesystem sink. Create truncates an existing file.
type Target struct{ path string }

// NewTarget returns a Target sink bound to path.
func NewTarget(path string) *Target { return &Target{path: path} }

// Path returns the bound path.
func (t *Target) Path() string { return t.path }

// Create makes any missing parent directories and opens the path for writing,
// truncating previous content.
func (t *Target) Create(ctx context.Context) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir for %s: %w", t.path, err)
	}
	f, err := os.Create(t.path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", t.path, err)
	}
	return f, nil
}
