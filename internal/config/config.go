// Package config defines the canonical, JSON-serializable configuration model
// for the pipeline. It is intentionally small, explicit, and dependency-free
// so that run configurations can be loaded from disk (or other sources) and
// passed through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in run files
//     under configs/*.json.
//  3. Minimalism: No third-party config libraries; decoding is performed by
//     the standard library.
//
// Example (trimmed):
//
//	{
//	  "job":     "railetl",
//	  "raw_dir": "data/raw",
//	  "warehouse": { "kind": "csv", "dir": "data/warehouse" },
//	  "report_path": "data/warehouse/quality_report.json",
//	  "metrics": { "backend": "pushgateway", "pushgateway_url": "http://pushgateway:9091" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Pipeline describes one full run in JSON. It is the top-level object decoded
// from a run file.
type Pipeline struct {
	// Job names the run for metrics labeling and log prefixes.
	Job string `json:"job"`

	// RawDir is the root directory holding the extractor outputs, one
	// subdirectory per source.
	RawDir string `json:"raw_dir"`

	// Warehouse selects and parameterizes the output target.
	Warehouse Warehouse `json:"warehouse"`

	// ReportPath is where the quality report JSON is written. Empty means
	// "<warehouse.dir>/quality_report.json" for the csv kind and
	// "quality_report.json" otherwise.
	ReportPath string `json:"report_path"`

	// Sources tunes which registered sources take part in the run.
	Sources Sources `json:"sources"`

	// Runtime controls concurrency.
	Runtime RuntimeConfig `json:"runtime"`

	// Metrics selects the metrics backend.
	Metrics Metrics `json:"metrics"`
}

// Warehouse mirrors the warehouse target configuration.
type Warehouse struct {
	// Kind is one of "csv", "sqlite", "postgres", "mysql". Empty means "csv".
	Kind string `json:"kind"`
	// DSN is the connection string for the SQL kinds.
	DSN string `json:"dsn,omitempty"`
	// Dir is the output directory for the csv kind.
	Dir string `json:"dir,omitempty"`
}

// Sources tunes source participation. All registered sources run by default.
type Sources struct {
	// Disabled lists source names to leave out of the run entirely.
	Disabled []string `json:"disabled,omitempty"`
}

// IsDisabled reports whether the named source is switched off.
func (s Sources) IsDisabled(name string) bool {
	for _, d := range s.Disabled {
		if d == name {
			return true
		}
	}
	return false
}

// RuntimeConfig controls concurrency.
type RuntimeConfig struct {
	// CleanWorkers bounds the number of sources cleaned concurrently.
	// Zero means one worker per source.
	CleanWorkers int `json:"clean_workers"`
}

// Metrics selects and parameterizes the metrics backend.
type Metrics struct {
	// Backend is one of "none", "pushgateway", "datadog". Empty means "none".
	Backend string `json:"backend"`
	// PushgatewayURL is required for the "pushgateway" backend.
	PushgatewayURL string `json:"pushgateway_url,omitempty"`
	// DatadogAddr is the DogStatsD address for the "datadog" backend.
	DatadogAddr string `json:"datadog_addr,omitempty"`
}

// Load reads and decodes a run file.
func Load(path string) (Pipeline, error) {
	var p Pipeline
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return p, nil
}
