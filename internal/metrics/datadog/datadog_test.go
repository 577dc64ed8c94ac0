package datadog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driverstats/internal/metrics"
)

var _ metrics.Backend = (*Backend)(nil)

type sent struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type fakeClient struct {
	mu     sync.Mutex
	sent   []sent
	closed int
}

func (f *fakeClient) Count(name string, value int64, tags []string, _ float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{"count", name, float64(value), tags})
	return nil
}

func (f *fakeClient) Histogram(name string, value float64, tags []string, _ float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{"histogram", name, value, tags})
	return nil
}

func (f *fakeClient) Close() error {
	f.closed++
	return nil
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	_, err := NewBackend(Config{})
	assert.ErrorContains(t, err, "Addr is required")

	// UDP clients do not dial until the first write.
	b, err := NewBackend(Config{Addr: "127.0.0.1:8125", Namespace: "driverstats.", GlobalTags: []string{"env:test"}})
	require.NoError(t, err)
	require.NotNil(t, b.client)
	assert.NoError(t, b.Flush())
}

func TestBackendSends(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{}
	b := &Backend{client: fc}

	b.IncCounter(metrics.RecordsTotal, 2.6, metrics.Labels{"kind": "drivers", "job": "driverstats"})
	b.ObserveHistogram(metrics.StepDuration, 0.25, metrics.Labels{"step": "load"})
	b.IncCounter(metrics.ArtifactsTotal, 1, nil)
	require.NoError(t, b.Flush())

	assert.Equal(t, []sent{
		{"count", metrics.RecordsTotal, 3, []string{"job:driverstats", "kind:drivers"}},
		{"histogram", metrics.StepDuration, 0.25, []string{"step:load"}},
		{"count", metrics.ArtifactsTotal, 1, nil},
	}, fc.sent)
	assert.Equal(t, 1, fc.closed)
}

func TestZeroBackendIsSafe(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	assert.NotPanics(t, func() {
		b.IncCounter(metrics.StepTotal, 1, nil)
		b.ObserveHistogram(metrics.StepDuration, 1, nil)
	})
	assert.NoError(t, b.Flush())
}
