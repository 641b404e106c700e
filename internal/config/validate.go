// Package config provides configuration models and helpers for pipeline runs.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "warehouse.kind",
// "metrics.backend"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue in the list is severity error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
//
// Example:
//
//	p, err := config.Load(path)
//	if err != nil { ... }
//	issues := config.ValidatePipeline(p)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	// Top-level pipeline checks.
	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	if strings.TrimSpace(p.RawDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "raw_dir",
			Message:  "raw_dir must not be empty; it is the root of the extractor outputs",
		})
	}

	issues = append(issues, validateWarehouse(p.Warehouse)...)
	issues = append(issues, validateSources(p.Sources)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

// validateWarehouse validates the warehouse target configuration.
func validateWarehouse(w Warehouse) []Issue {
	var issues []Issue

	kind := w.Kind
	if kind == "" {
		kind = "csv"
	}
	known := map[string]struct{}{
		"csv":      {},
		"sqlite":   {},
		"postgres": {},
		"mysql":    {},
	}
	if _, ok := known[kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.kind",
			Message:  fmt.Sprintf("unknown warehouse kind %q; expected csv, sqlite, postgres, or mysql", w.Kind),
		})
		return issues
	}

	switch kind {
	case "csv":
		if strings.TrimSpace(w.Dir) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "warehouse.dir",
				Message:  "csv warehouse requires a non-empty output directory",
			})
		}
		if strings.TrimSpace(w.DSN) != "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "warehouse.dsn",
				Message:  "dsn is ignored for the csv warehouse kind",
			})
		}
	default:
		if strings.TrimSpace(w.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "warehouse.dsn",
				Message:  fmt.Sprintf("%s warehouse requires a non-empty dsn", kind),
			})
		}
		if strings.TrimSpace(w.Dir) != "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "warehouse.dir",
				Message:  fmt.Sprintf("dir is ignored for the %s warehouse kind", kind),
			})
		}
	}

	return issues
}

// validateSources checks the source toggles for obvious slips. Whether a
// disabled name matches a registered source is checked at run time, where the
// registry lives.
func validateSources(s Sources) []Issue {
	var issues []Issue

	seen := map[string]bool{}
	for i, name := range s.Disabled {
		path := fmt.Sprintf("sources.disabled[%d]", i)
		if strings.TrimSpace(name) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "disabled source name must not be empty",
			})
			continue
		}
		if seen[name] {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("source %q is disabled more than once", name),
			})
		}
		seen[name] = true
	}

	return issues
}

// validateRuntime validates concurrency settings.
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.CleanWorkers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.clean_workers",
			Message:  "clean_workers must not be negative; zero means one worker per source",
		})
	}

	return issues
}

// validateMetrics validates the metrics backend selection.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	backend := m.Backend
	if backend == "" {
		backend = "none"
	}
	known := map[string]struct{}{
		"none":        {},
		"pushgateway": {},
		"datadog":     {},
	}
	if _, ok := known[backend]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; expected none, pushgateway, or datadog", m.Backend),
		})
		return issues
	}

	switch backend {
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a non-empty gateway URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires a non-empty DogStatsD address",
			})
		}
	case "none":
		if strings.TrimSpace(m.PushgatewayURL) != "" || strings.TrimSpace(m.DatadogAddr) != "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.backend",
				Message:  "backend addresses are set but the backend is none; metrics will not be emitted",
			})
		}
	}

	return issues
}
