package pipeline

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"railetl/internal/config"
)

// writeRaw lays out a raw data area with the given relative files.
func writeRaw(tb testing.TB, files map[string]string) string {
	tb.Helper()
	root := tb.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			tb.Fatalf("WriteFile: %v", err)
		}
	}
	return root
}

func fixtureFiles() map[string]string {
	return map[string]string{
		"night_trains/view_ontd_list.csv": "route_id,night_train,operators,countries,itinerary,route_long_name\n" +
			"1,yes,ÖBB,AT,Wien - Budapest,Nightjet\n" +
			"2,yes,SNCF,FR,Paris - Nice,Intercites de Nuit\n" +
			"3,,,,,\n",
		"night_trains/view_ontd_cities.csv": "stop_id,stop_cityname_romanized,stop_country,stop_route_ids\n" +
			"901,wien hbf,AT,\"1,2\"\n" +
			"902,paris austerlitz,FR,2\n",
		"eurostat/rail_passengers.csv": "freq,unit,vehicle,geo\\TIME_PERIOD\t2014\t2015\n" +
			"A,THS_PAS,TRN,FR\t100000\t120000\n" +
			"A,THS_PAS,TRN,AT\t:\t30000\n",
		"eurostat/rail_traffic.csv": "freq,train,vehicle,mot_nrg,unit,geo\\TIME_PERIOD\t2014\t2016\n" +
			"A,TOTAL,TRN,TOTAL,MIO_TRKM,FR\t410\t415\n",
		"eurostat/co2_emissions.csv": "dataflow,freq,airpol,src_crf,unit,geo,time_period,obs_value\n" +
			"ENV,A,CO2,1.A.3.c,MIO_T,FR,2014,5.1\n" +
			"ENV,A,CO2,1.A.3.c,MIO_T,AT,2015,0.9\n" +
			"ENV,A,CH4,1.A.3.b,THS_T,FR,2014,44\n",
		"gtfs_fr/agency.csv": "agency_id,agency_name,agency_url\n" +
			"sncf,SNCF Voyageurs,https://example.invalid\n",
	}
}

func runOnce(tb testing.TB, rawDir, outDir string) *Summary {
	tb.Helper()
	cfg := config.Pipeline{
		Job:    "railetl-test",
		RawDir: rawDir,
		Warehouse: config.Warehouse{
			Kind: "csv",
			Dir:  outDir,
		},
	}
	sum, err := Run(context.Background(), cfg, log.New(os.Stderr, "", 0))
	if err != nil {
		tb.Fatalf("Run: %v", err)
	}
	return sum
}

func TestRunDegradedEndToEnd(t *testing.T) {
	t.Parallel()
	raw := writeRaw(t, fixtureFiles())
	out := t.TempDir()
	sum := runOnce(t, raw, out)

	// Participating sources, in registry order.
	wantSources := []string{"night_trains", "night_cities", "eurostat_passengers",
		"eurostat_traffic", "emissions", "gtfs_fr_agency"}
	if len(sum.Report.DataSources) != len(wantSources) {
		t.Fatalf("DataSources = %v, want %v", sum.Report.DataSources, wantSources)
	}
	for i, s := range wantSources {
		if sum.Report.DataSources[i] != s {
			t.Errorf("DataSources[%d] = %s, want %s", i, sum.Report.DataSources[i], s)
		}
	}

	// Absent feeds are skipped, not fatal.
	skipped := map[string]bool{}
	for _, s := range sum.Report.SkippedSources {
		skipped[s] = true
	}
	for _, s := range []string{"gtfs_fr_routes", "gtfs_fr_stops", "gtfs_ch_agency", "gtfs_de_stops"} {
		if !skipped[s] {
			t.Errorf("source %s should be skipped", s)
		}
	}

	// Every warehouse table plus the quality report lands on disk.
	for _, name := range []string{
		"dim_countries.csv", "dim_operators.csv", "dim_years.csv",
		"facts_country_stats.csv", "facts_night_trains.csv", "quality_report.json",
	} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	dq := sum.Report.DataQuality
	if dq.NightTrainRecords != 3 {
		t.Errorf("NightTrainRecords = %d, want 3", dq.NightTrainRecords)
	}
	// Cells: (FR,2014), (FR,2015), (AT,2014), (AT,2015) from the melted
	// passenger table; emissions adds no new cells.
	if dq.CountryStatsRecords != 4 {
		t.Errorf("CountryStatsRecords = %d, want 4", dq.CountryStatsRecords)
	}
	// 36 supported codes + 3 sentinels.
	if dq.TotalCountries != 39 {
		t.Errorf("TotalCountries = %d, want 39", dq.TotalCountries)
	}
	// Sentinel year + 2014 + 2015 from the passenger series + 2016, which
	// only the traffic series observes.
	if dq.TotalYears != 4 {
		t.Errorf("TotalYears = %d, want 4", dq.TotalYears)
	}
	// Row 3 of the catalog has no country indicators at all.
	if dq.UnknownCountries != 1 {
		t.Errorf("UnknownCountries = %d, want 1", dq.UnknownCountries)
	}

	// Dimensions load before facts.
	if sum.Tables[0].Source != "dim_countries" || sum.Tables[len(sum.Tables)-1].Source != "facts_night_trains" {
		names := make([]string, len(sum.Tables))
		for i, tb := range sum.Tables {
			names[i] = tb.Source
		}
		t.Errorf("table order = %v", names)
	}
}

func TestRunDeterministic(t *testing.T) {
	t.Parallel()
	raw := writeRaw(t, fixtureFiles())
	outA := t.TempDir()
	outB := t.TempDir()
	runOnce(t, raw, outA)
	runOnce(t, raw, outB)

	// Byte-identical tables across runs; the report differs only in its
	// timestamp, so it is not compared.
	for _, name := range []string{
		"dim_countries.csv", "dim_operators.csv", "dim_years.csv",
		"facts_country_stats.csv", "facts_night_trains.csv",
	} {
		a, err := os.ReadFile(filepath.Join(outA, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		b, err := os.ReadFile(filepath.Join(outB, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(a) != string(b) {
			t.Errorf("%s differs between identical runs", name)
		}
	}
}

func TestRunSchemaMismatchExcludesSource(t *testing.T) {
	t.Parallel()
	files := fixtureFiles()
	// The catalog export lost its operators column: the source is excluded,
	// the run continues.
	files["night_trains/view_ontd_list.csv"] = "route_id,name\n1,x\n"
	raw := writeRaw(t, files)
	sum := runOnce(t, raw, t.TempDir())

	found := false
	for _, s := range sum.Report.ExcludedSources {
		if s == "night_trains" {
			found = true
		}
	}
	if !found {
		t.Fatalf("night_trains should be excluded, report: %+v", sum.Report)
	}
	if sum.Report.DataQuality.NightTrainRecords != 0 {
		t.Errorf("NightTrainRecords = %d, want 0", sum.Report.DataQuality.NightTrainRecords)
	}
	// Country stats still build from the statistics sources.
	if sum.Report.DataQuality.CountryStatsRecords == 0 {
		t.Error("CountryStatsRecords = 0, want > 0")
	}
}

func TestRunDisabledSource(t *testing.T) {
	t.Parallel()
	raw := writeRaw(t, fixtureFiles())
	cfg := config.Pipeline{
		Job:       "railetl-test",
		RawDir:    raw,
		Warehouse: config.Warehouse{Kind: "csv", Dir: t.TempDir()},
		Sources:   config.Sources{Disabled: []string{"emissions"}},
	}
	sum, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, s := range sum.Report.DataSources {
		if s == "emissions" {
			t.Error("disabled source still participated")
		}
	}
}

func TestRunEmptyRawArea(t *testing.T) {
	t.Parallel()
	sum := runOnce(t, t.TempDir(), t.TempDir())

	if len(sum.Report.DataSources) != 0 {
		t.Errorf("DataSources = %v, want none", sum.Report.DataSources)
	}
	if len(sum.Report.SkippedSources) == 0 {
		t.Error("expected every source skipped")
	}
	// The warehouse still materializes: reference dimensions plus empty facts.
	if sum.Report.DataQuality.TotalCountries != 39 {
		t.Errorf("TotalCountries = %d, want 39", sum.Report.DataQuality.TotalCountries)
	}
	if sum.Report.DataQuality.NightTrainRecords != 0 {
		t.Errorf("NightTrainRecords = %d, want 0", sum.Report.DataQuality.NightTrainRecords)
	}
}
