package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// -----------------------------------------------------------------------------
// Pipeline decoding tests
// -----------------------------------------------------------------------------
//
// These tests validate that the top-level Pipeline JSON structure decodes into
// the intended Go struct graph. The goal is to ensure the JSON schema used in
// run files (configs/*.json) maps cleanly to the Go types. We prefer parsing
// from JSON strings here to keep tests hermetic and focused on the API surface
// rather than filesystem wiring.

func TestPipeline_DecodeRoundTrip(t *testing.T) {
	t.Parallel()

	const js = `{
	  "job": "railetl-nightly",
	  "raw_dir": "data/raw",
	  "warehouse": {
	    "kind": "sqlite",
	    "dsn": "file:warehouse.db"
	  },
	  "report_path": "data/warehouse/quality_report.json",
	  "sources": { "disabled": ["gtfs_de_stops"] },
	  "runtime": { "clean_workers": 4 },
	  "metrics": {
	    "backend": "pushgateway",
	    "pushgateway_url": "http://pushgateway:9091"
	  }
	}`

	var p Pipeline
	if err := json.Unmarshal([]byte(js), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if p.Job != "railetl-nightly" {
		t.Errorf("Job = %q, want railetl-nightly", p.Job)
	}
	if p.RawDir != "data/raw" {
		t.Errorf("RawDir = %q", p.RawDir)
	}
	if p.Warehouse.Kind != "sqlite" || p.Warehouse.DSN != "file:warehouse.db" {
		t.Errorf("Warehouse = %+v", p.Warehouse)
	}
	if p.ReportPath != "data/warehouse/quality_report.json" {
		t.Errorf("ReportPath = %q", p.ReportPath)
	}
	if !p.Sources.IsDisabled("gtfs_de_stops") {
		t.Error("gtfs_de_stops should be disabled")
	}
	if p.Sources.IsDisabled("night_trains") {
		t.Error("night_trains should not be disabled")
	}
	if p.Runtime.CleanWorkers != 4 {
		t.Errorf("CleanWorkers = %d, want 4", p.Runtime.CleanWorkers)
	}
	if p.Metrics.Backend != "pushgateway" || p.Metrics.PushgatewayURL != "http://pushgateway:9091" {
		t.Errorf("Metrics = %+v", p.Metrics)
	}

	// Round-trip: encoding and re-decoding preserves the structure.
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Pipeline
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("re-Unmarshal: %v", err)
	}
	if back.Job != p.Job || back.Warehouse != p.Warehouse || back.Metrics != p.Metrics {
		t.Errorf("round trip changed the pipeline: %+v vs %+v", back, p)
	}
}

func TestPipeline_DecodeDefaults(t *testing.T) {
	t.Parallel()

	var p Pipeline
	if err := json.Unmarshal([]byte(`{"job":"x","raw_dir":"raw"}`), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Warehouse.Kind != "" {
		t.Errorf("Warehouse.Kind = %q, want empty (csv default applied downstream)", p.Warehouse.Kind)
	}
	if p.Runtime.CleanWorkers != 0 {
		t.Errorf("CleanWorkers = %d, want 0", p.Runtime.CleanWorkers)
	}
	if len(p.Sources.Disabled) != 0 {
		t.Errorf("Disabled = %v, want empty", p.Sources.Disabled)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.json")
	const js = `{"job":"railetl","raw_dir":"data/raw","warehouse":{"kind":"csv","dir":"out"}}`
	if err := os.WriteFile(path, []byte(js), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Job != "railetl" || p.Warehouse.Dir != "out" {
		t.Errorf("Load = %+v", p)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
