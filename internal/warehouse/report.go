package warehouse

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"railetl/internal/cleaner"
	"railetl/internal/fact"
)

// DataQuality carries the headline counters of the quality report. The key
// names are part of the contract with the reporting API.
type DataQuality struct {
	TotalCountries      int `json:"total_countries"`
	UnknownCountries    int `json:"unknown_countries"`
	TotalYears          int `json:"total_years"`
	TotalOperators      int `json:"total_operators"`
	NightTrainRecords   int `json:"night_train_records"`
	CountryStatsRecords int `json:"country_stats_records"`
}

// QualityReport is the machine-readable run report written next to the
// warehouse tables.
type QualityReport struct {
	GeneratedAt            time.Time                `json:"generated_at"`
	TransformationsApplied []string                 `json:"transformations_applied"`
	DataSources            []string                 `json:"data_sources"`
	SkippedSources         []string                 `json:"skipped_sources,omitempty"`
	ExcludedSources        []string                 `json:"excluded_sources,omitempty"`
	TablesCreated          []string                 `json:"tables_created"`
	DataQuality            DataQuality              `json:"data_quality"`
	Sources                []*cleaner.Report        `json:"sources"`
	NightTrains            *fact.NightTrainsReport  `json:"night_trains,omitempty"`
	CountryStats           *fact.CountryStatsReport `json:"country_stats,omitempty"`
}

// WriteFile renders the report as indented JSON. The parent directory is
// created if needed.
func (r *QualityReport) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: mkdir: %w", err)
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}
