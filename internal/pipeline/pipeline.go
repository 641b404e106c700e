// Package pipeline orchestrates a full run: clean every registered source,
// build the dimensions, build the facts, write the warehouse, emit the
// quality report.
//
// The run degrades instead of dying: a missing raw file or a source whose
// file lost an expected column is recorded and skipped, and everything
// downstream is built from what remains. Only a write failure is fatal.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"railetl/internal/cleaner"
	"railetl/internal/config"
	"railetl/internal/country"
	"railetl/internal/datasource/file"
	"railetl/internal/dimension"
	"railetl/internal/fact"
	"railetl/internal/metrics"
	csvparser "railetl/internal/parser/csv"
	"railetl/internal/records"
	"railetl/internal/warehouse"
)

// Summary is what a run leaves behind for the caller: the quality report and
// the produced tables in load order.
type Summary struct {
	Report *warehouse.QualityReport
	Tables []*records.Table
}

// cleanResult is one source's outcome from the first stage.
type cleanResult struct {
	processed *records.Table
	report    *cleaner.Report
	skipped   bool // raw file absent
	excluded  bool // schema mismatch
}

// Run executes the whole pipeline against cfg. The returned Summary is valid
// whenever err is nil, including degraded runs with skipped sources.
func Run(ctx context.Context, cfg config.Pipeline, logger *log.Logger) (*Summary, error) {
	if logger == nil {
		logger = log.Default()
	}
	raw := file.NewRawArea(cfg.RawDir)
	registry := cleaner.Registry()

	// Stage 1: clean all sources concurrently. Results land in a slice
	// indexed by registry position so the outcome order never depends on
	// goroutine scheduling.
	results := make([]cleanResult, len(registry))
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Runtime.CleanWorkers > 0 {
		g.SetLimit(cfg.Runtime.CleanWorkers)
	}
	for i, src := range registry {
		if cfg.Sources.IsDisabled(src.Name) {
			logger.Printf("pipeline: source %s disabled by config", src.Name)
			results[i].skipped = true
			continue
		}
		i, src := i, src
		g.Go(func() error {
			start := time.Now()
			res, err := cleanSource(gctx, raw, src)
			metrics.RecordStage(cfg.Job, "clean:"+src.Name, err, time.Since(start))
			if err != nil {
				return err
			}
			results[i] = res
			switch {
			case res.skipped:
				logger.Printf("pipeline: source %s: raw file missing, skipping", src.Name)
			case res.excluded:
				logger.Printf("pipeline: source %s: expected column missing, excluding", src.Name)
			default:
				logger.Printf("pipeline: source %s: %d rows cleaned", src.Name, res.processed.Len())
				metrics.RecordRows(cfg.Job, "cleaned", int64(res.processed.Len()))
				metrics.RecordRows(cfg.Job, "parse_failures", int64(res.report.ParseFailed))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: clean: %w", err)
	}

	transformations := []string{}
	var dataSources, skipped, excluded []string
	processed := map[string]*records.Table{}
	var sourceReports []*cleaner.Report
	for i, src := range registry {
		res := results[i]
		switch {
		case res.skipped:
			skipped = append(skipped, src.Name)
		case res.excluded:
			excluded = append(excluded, src.Name)
		default:
			processed[src.Name] = res.processed
			dataSources = append(dataSources, src.Name)
			sourceReports = append(sourceReports, res.report)
			transformations = append(transformations, "clean:"+src.Name)
		}
	}

	// The wide Eurostat tables reshape to one observation per (series, year)
	// before anything consumes years or measures from them.
	var passengersLong, trafficLong *records.Table
	if wide := processed["eurostat_passengers"]; wide != nil {
		passengersLong = cleaner.MeltYears(wide, "passengers", "country_code", "geo")
		transformations = append(transformations, "melt:eurostat_passengers")
	}
	if wide := processed["eurostat_traffic"]; wide != nil {
		trafficLong = cleaner.MeltYears(wide, "train_km", "country_code", "geo")
		transformations = append(transformations, "melt:eurostat_traffic")
	}

	// Stage 2: dimensions, all three in parallel over the processed tables.
	countrySources := tablesInOrder(processed)
	yearSources := []*records.Table{passengersLong, trafficLong, processed["emissions"], processed["night_trains"]}
	maxYear := int64(time.Now().Year() + 1)

	var (
		countries *dimension.Countries
		years     *dimension.Years
		operators *dimension.Operators
	)
	dg, _ := errgroup.WithContext(ctx)
	start := time.Now()
	dg.Go(func() error { countries = dimension.BuildCountries(countrySources...); return nil })
	dg.Go(func() error { years = dimension.BuildYears(maxYear, yearSources...); return nil })
	dg.Go(func() error { operators = dimension.BuildOperators(countrySources...); return nil })
	derr := dg.Wait()
	metrics.RecordStage(cfg.Job, "dimensions", derr, time.Since(start))
	if derr != nil {
		return nil, fmt.Errorf("pipeline: dimensions: %w", derr)
	}
	transformations = append(transformations,
		"build:dim_countries", "build:dim_years", "build:dim_operators")

	// Stage 3: facts.
	var (
		nightFacts *records.Table
		nightRep   *fact.NightTrainsReport
		statFacts  *records.Table
		statRep    *fact.CountryStatsReport
		factMu     sync.Mutex
	)
	fg, _ := errgroup.WithContext(ctx)
	start = time.Now()
	fg.Go(func() error {
		t, rep := fact.BuildNightTrains(processed["night_trains"], countries, years, operators)
		factMu.Lock()
		nightFacts, nightRep = t, rep
		factMu.Unlock()
		return nil
	})
	fg.Go(func() error {
		t, rep := fact.BuildCountryStats(passengersLong, processed["emissions"], countries, years)
		factMu.Lock()
		statFacts, statRep = t, rep
		factMu.Unlock()
		return nil
	})
	ferr := fg.Wait()
	metrics.RecordStage(cfg.Job, "facts", ferr, time.Since(start))
	if ferr != nil {
		return nil, fmt.Errorf("pipeline: facts: %w", ferr)
	}
	transformations = append(transformations,
		"build:facts_night_trains", "build:facts_country_stats")
	metrics.RecordRows(cfg.Job, "night_train_facts", int64(nightFacts.Len()))
	metrics.RecordRows(cfg.Job, "country_stat_facts", int64(statFacts.Len()))

	tables := warehouse.LoadOrder([]*records.Table{
		countries.Table, years.Table, operators.Table, nightFacts, statFacts,
	})
	tableNames := make([]string, len(tables))
	for i, t := range tables {
		tableNames[i] = t.Source
	}

	report := &warehouse.QualityReport{
		GeneratedAt:            time.Now().UTC(),
		TransformationsApplied: transformations,
		DataSources:            dataSources,
		SkippedSources:         skipped,
		ExcludedSources:        excluded,
		TablesCreated:          tableNames,
		DataQuality: warehouse.DataQuality{
			TotalCountries:      countries.Len(),
			UnknownCountries:    countries.Observed[country.Unknown],
			TotalYears:          years.Len(),
			TotalOperators:      operators.Len(),
			NightTrainRecords:   nightFacts.Len(),
			CountryStatsRecords: statFacts.Len(),
		},
		Sources:      sourceReports,
		NightTrains:  nightRep,
		CountryStats: statRep,
	}

	// Stage 4: write. Failures here are fatal; a half-written warehouse must
	// not pass silently.
	start = time.Now()
	werr := write(ctx, cfg, tables, report)
	metrics.RecordStage(cfg.Job, "write", werr, time.Since(start))
	if werr != nil {
		return nil, werr
	}
	metrics.RecordTables(cfg.Job, int64(len(tables)))
	logger.Printf("pipeline: wrote %d tables (%s)", len(tables), cfg.Warehouse.Kind)

	return &Summary{Report: report, Tables: tables}, nil
}

// cleanSource runs one source through open -> parse -> clean, translating
// the recoverable failure modes into result flags.
func cleanSource(ctx context.Context, raw *file.RawArea, src cleaner.Source) (cleanResult, error) {
	f, err := raw.Open(src.Path)
	if errors.Is(err, file.ErrNotFound) {
		return cleanResult{skipped: true}, nil
	}
	if err != nil {
		return cleanResult{}, err
	}
	defer f.Close()

	table, err := csvparser.ReadTable(f, src.Name, csvparser.Options{Comma: src.Comma})
	if err != nil {
		return cleanResult{}, err
	}
	out, rep, err := src.Cleaner.Clean(ctx, table)
	if errors.Is(err, cleaner.ErrMissingColumn) {
		return cleanResult{excluded: true}, nil
	}
	if err != nil {
		return cleanResult{}, err
	}
	if out.Len() != table.Len() {
		return cleanResult{}, fmt.Errorf("%s: cleaner changed row count %d -> %d", src.Name, table.Len(), out.Len())
	}
	return cleanResult{processed: out, report: rep}, nil
}

// write opens the configured target, persists the tables, and drops the
// quality report next to them.
func write(ctx context.Context, cfg config.Pipeline, tables []*records.Table, report *warehouse.QualityReport) error {
	target, err := warehouse.Open(ctx, warehouse.Config{
		Kind: cfg.Warehouse.Kind,
		DSN:  cfg.Warehouse.DSN,
		Dir:  cfg.Warehouse.Dir,
	})
	if err != nil {
		return fmt.Errorf("pipeline: open warehouse: %w", err)
	}
	defer target.Close()

	if err := warehouse.WriteAll(ctx, target, tables); err != nil {
		return err
	}
	return report.WriteFile(reportPath(cfg))
}

func reportPath(cfg config.Pipeline) string {
	if cfg.ReportPath != "" {
		return cfg.ReportPath
	}
	if (cfg.Warehouse.Kind == "" || cfg.Warehouse.Kind == "csv") && cfg.Warehouse.Dir != "" {
		return filepath.Join(cfg.Warehouse.Dir, "quality_report.json")
	}
	return "quality_report.json"
}

// tablesInOrder returns the processed tables sorted by source name so the
// dimension builders always see identical input order.
func tablesInOrder(processed map[string]*records.Table) []*records.Table {
	names := make([]string, 0, len(processed))
	for n := range processed {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]*records.Table, 0, len(names))
	for _, n := range names {
		out = append(out, processed[n])
	}
	return out
}
