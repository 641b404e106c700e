// Package datadog implements a DogStatsD backend for the metrics package.
//
// This package adapts the generic metrics.Backend interface to Datadog by:
//
//   - Forwarding pipeline counters (stage outcomes, cleaned/failed rows,
//     written tables) as DogStatsD Count metrics.
//   - Forwarding stage durations as DogStatsD Histogram metrics, where the
//     agent derives the percentile series that the Prometheus backend
//     computes client-side.
//   - Translating the pipeline labels (job, stage, status, kind) into
//     "key:value" tags, emitted in sorted order so identical runs produce
//     identical wire payloads.
//
// Because DogStatsD is fire-and-forget over UDP, a batch run only needs the
// final Flush (statsd close) to drain the client buffer; there is nothing to
// push the way the Pushgateway backend does. All Datadog-specific
// dependencies live here so the rest of the project stays decoupled from the
// agent protocol.
package datadog

import (
	"fmt"
	"sort"

	"railetl/internal/metrics"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// Config selects the agent endpoint and the metric naming.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or
	// "unix:///var/run/datadog/dsd.socket". Required.
	Addr string

	// Namespace prefixes every metric name; empty means "railetl.". The
	// metric names arriving from the metrics package already carry a
	// railetl_ prefix, so the namespace mainly matters when one agent
	// aggregates several services.
	Namespace string

	// GlobalTags are attached to every metric, e.g.
	// []string{"env:prod", "service:railetl"}.
	GlobalTags []string
}

// Backend is the DogStatsD implementation of metrics.Backend. A single
// instance is installed process-wide via metrics.SetBackend.
type Backend struct {
	client *statsd.Client

	// namespace mirrors the prefix configured on the client, which the v5
	// statsd API does not expose for reading.
	namespace string
}

// NewBackend connects a DogStatsD client per cfg. The address is required;
// connection problems surface here rather than on the first metric.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "railetl."
	}
	opts := []statsd.Option{statsd.WithNamespace(namespace)}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}

	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}

	return &Backend{client: c, namespace: namespace}, nil
}

// IncCounter implements metrics.Backend using a Count metric.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	// Stage and row counters only ever carry integral deltas.
	b.client.Count(name, int64(delta), labelsToTags(labels), 1)
}

// ObserveHistogram implements metrics.Backend using a Histogram metric, so
// stage durations aggregate agent-side.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	b.client.Histogram(name, value, labelsToTags(labels), 1)
}

// Flush implements metrics.Backend. Closing the client drains any buffered
// datagrams; a run calls this exactly once, at exit.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

// labelsToTags renders labels as sorted "key:value" tags.
func labelsToTags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
