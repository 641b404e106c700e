package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

// validPipeline returns a well-formed csv-target run config the individual
// tests can break one field at a time.
func validPipeline() Pipeline {
	return Pipeline{
		Job:    "railetl",
		RawDir: "data/raw",
		Warehouse: Warehouse{
			Kind: "csv",
			Dir:  "data/warehouse",
		},
		ReportPath: "data/warehouse/quality_report.json",
	}
}

/*
TestValidatePipeline_MissingJob verifies that a missing or empty Job field
produces a SeverityError with path "job".
*/
func TestValidatePipeline_MissingJob(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Job = ""

	issues := ValidatePipeline(p)

	if !hasIssue(t, issues, SeverityError, "job", "job must not be empty") {
		t.Fatalf("expected SeverityError for job; got issues: %+v", issues)
	}
}

/*
TestValidatePipeline_ValidMinimal verifies that a well-formed pipeline produces
no issues (errors or warnings).
*/
func TestValidatePipeline_ValidMinimal(t *testing.T) {
	t.Parallel()

	issues := ValidatePipeline(validPipeline())
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got: %+v", issues)
	}
}

func TestValidatePipeline_MissingRawDir(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.RawDir = "   "

	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityError, "raw_dir", "must not be empty") {
		t.Fatalf("expected SeverityError for raw_dir; got issues: %+v", issues)
	}
}

func TestValidateWarehouse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		warehouse Warehouse
		wantSev   IssueSeverity
		wantPath  string
		wantMsg   string
	}{
		{
			name:      "unknown kind is an error",
			warehouse: Warehouse{Kind: "oracle", DSN: "x"},
			wantSev:   SeverityError,
			wantPath:  "warehouse.kind",
			wantMsg:   "unknown warehouse kind",
		},
		{
			name:      "csv without dir is an error",
			warehouse: Warehouse{Kind: "csv"},
			wantSev:   SeverityError,
			wantPath:  "warehouse.dir",
			wantMsg:   "non-empty output directory",
		},
		{
			name:      "empty kind defaults to csv",
			warehouse: Warehouse{},
			wantSev:   SeverityError,
			wantPath:  "warehouse.dir",
			wantMsg:   "non-empty output directory",
		},
		{
			name:      "sqlite without dsn is an error",
			warehouse: Warehouse{Kind: "sqlite"},
			wantSev:   SeverityError,
			wantPath:  "warehouse.dsn",
			wantMsg:   "requires a non-empty dsn",
		},
		{
			name:      "csv with dsn warns",
			warehouse: Warehouse{Kind: "csv", Dir: "out", DSN: "postgres://"},
			wantSev:   SeverityWarning,
			wantPath:  "warehouse.dsn",
			wantMsg:   "ignored",
		},
		{
			name:      "postgres with dir warns",
			warehouse: Warehouse{Kind: "postgres", DSN: "postgres://", Dir: "out"},
			wantSev:   SeverityWarning,
			wantPath:  "warehouse.dir",
			wantMsg:   "ignored",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validPipeline()
			p.Warehouse = tt.warehouse

			issues := ValidatePipeline(p)
			if !hasIssue(t, issues, tt.wantSev, tt.wantPath, tt.wantMsg) {
				t.Fatalf("expected %s at %s containing %q; got issues: %+v",
					tt.wantSev, tt.wantPath, tt.wantMsg, issues)
			}
		})
	}
}

func TestValidateSources(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Sources.Disabled = []string{"gtfs_de_stops", "", "gtfs_de_stops"}

	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityError, "sources.disabled[1]", "must not be empty") {
		t.Fatalf("expected error for empty disabled name; got: %+v", issues)
	}
	if !hasIssue(t, issues, SeverityWarning, "sources.disabled[2]", "more than once") {
		t.Fatalf("expected warning for duplicate disabled name; got: %+v", issues)
	}
}

func TestValidateRuntime_NegativeWorkers(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Runtime.CleanWorkers = -1

	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityError, "runtime.clean_workers", "must not be negative") {
		t.Fatalf("expected error for negative clean_workers; got: %+v", issues)
	}
}

func TestValidateMetrics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		metrics  Metrics
		wantSev  IssueSeverity
		wantPath string
		wantMsg  string
	}{
		{
			name:     "unknown backend is an error",
			metrics:  Metrics{Backend: "statsd"},
			wantSev:  SeverityError,
			wantPath: "metrics.backend",
			wantMsg:  "unknown metrics backend",
		},
		{
			name:     "pushgateway without URL is an error",
			metrics:  Metrics{Backend: "pushgateway"},
			wantSev:  SeverityError,
			wantPath: "metrics.pushgateway_url",
			wantMsg:  "non-empty gateway URL",
		},
		{
			name:     "datadog without address is an error",
			metrics:  Metrics{Backend: "datadog"},
			wantSev:  SeverityError,
			wantPath: "metrics.datadog_addr",
			wantMsg:  "non-empty DogStatsD address",
		},
		{
			name:     "address without backend warns",
			metrics:  Metrics{PushgatewayURL: "http://pushgateway:9091"},
			wantSev:  SeverityWarning,
			wantPath: "metrics.backend",
			wantMsg:  "backend is none",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validPipeline()
			p.Metrics = tt.metrics

			issues := ValidatePipeline(p)
			if !hasIssue(t, issues, tt.wantSev, tt.wantPath, tt.wantMsg) {
				t.Fatalf("expected %s at %s containing %q; got issues: %+v",
					tt.wantSev, tt.wantPath, tt.wantMsg, issues)
			}
		})
	}
}

func TestHasErrors(t *testing.T) {
	t.Parallel()

	if HasErrors(nil) {
		t.Error("HasErrors(nil) = true, want false")
	}
	warn := []Issue{{Severity: SeverityWarning, Path: "x", Message: "y"}}
	if HasErrors(warn) {
		t.Error("HasErrors(warnings only) = true, want false")
	}
	mixed := append(warn, Issue{Severity: SeverityError, Path: "x", Message: "y"})
	if !HasErrors(mixed) {
		t.Error("HasErrors(mixed) = false, want true")
	}
}
