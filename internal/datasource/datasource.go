// Package datasource defines where the pipeline reads its tables from and
// where it writes its reports to.
package datasource

import (
	"context"
	"io"
)

// Source opens an input for reading.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Sink opens an output for writing, replacing any previous content.
type Sink interface {
	Create(ctx context.Context) (io.WriteCloser, error)
}
