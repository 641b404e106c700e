package cleaner

import "railetl/internal/country"

// Source binds a raw file to the cleaner that handles it. Path is relative
// to the raw data root.
type Source struct {
	Name    string
	Path    string
	Cleaner SourceCleaner
	// Comma overrides the CSV delimiter; zero means ','.
	Comma rune
}

// Registry returns the full source catalog in a fixed order. The order is
// part of the pipeline's determinism: reports and warehouse outputs list
// sources exactly as registered here.
func Registry() []Source {
	sources := []Source{
		{Name: "night_trains", Path: "night_trains/view_ontd_list.csv", Cleaner: nightTrains{}},
		{Name: "night_cities", Path: "night_trains/view_ontd_cities.csv", Cleaner: nightCities{}},
		{Name: "eurostat_passengers", Path: "eurostat/rail_passengers.csv", Cleaner: eurostatWide{name: "eurostat_passengers"}, Comma: '\t'},
		{Name: "eurostat_traffic", Path: "eurostat/rail_traffic.csv", Cleaner: eurostatWide{name: "eurostat_traffic"}, Comma: '\t'},
		{Name: "emissions", Path: "eurostat/co2_emissions.csv", Cleaner: emissions{}},
	}
	feeds := []struct {
		feed string
		code country.Code
	}{
		{"gtfs_fr", "FR"},
		{"gtfs_ch", "CH"},
		{"gtfs_de", "DE"},
	}
	for _, f := range feeds {
		for _, file := range []gtfsFile{gtfsAgency, gtfsRoutes, gtfsStops} {
			c := gtfs{feed: f.feed, code: f.code, file: file}
			sources = append(sources, Source{
				Name:    c.Name(),
				Path:    f.feed + "/" + string(file) + ".csv",
				Cleaner: c,
			})
		}
	}
	return sources
}
