// Package csv reads raw tabular extracts into the records model.
//
// The reader is deliberately tolerant: extractor collaborators hand over CSV
// files of mixed provenance (statistical-agency exports, transit feeds,
// volunteer-maintained catalogs), so it accepts variable field counts, lazy
// quotes, and UTF-8 BOMs, and normalizes header names once at the boundary so
// downstream code never sees the source's original casing or padding.
package csv

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"railetl/internal/records"
)

// Options tune CSV parsing. The zero value is a sane default for the raw
// extracts handled by the pipeline.
type Options struct {
	// Comma is the field delimiter; 0 means ','.
	Comma rune
	// LazyQuotes tolerates unescaped quotes inside fields.
	LazyQuotes bool
}

// ReadTable parses CSV from r into a Table named after source. The first
// line is the header; header names are normalized (trimmed, lower-cased,
// inner spaces collapsed to underscores). Cells are trimmed strings; empty
// cells become nil. Ragged rows are padded with nil or truncated to the
// header width so no input row is ever dropped at the parse stage.
func ReadTable(r io.Reader, source string, opt Options) (*records.Table, error) {
	comma := opt.Comma
	if comma == 0 {
		comma = ','
	}

	cr := csv.NewReader(stripBOM(r))
	cr.Comma = comma
	cr.ReuseRecord = true
	cr.LazyQuotes = opt.LazyQuotes
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	hdr, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("csv: %s: empty input", source)
		}
		return nil, fmt.Errorf("csv: %s: read header: %w", source, err)
	}

	columns := make([]string, len(hdr))
	for i, h := range hdr {
		columns[i] = NormalizeHeader(h)
	}
	tbl := records.New(source, columns...)

	cells := make([]any, len(columns))
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %s: read row: %w", source, err)
		}
		for i := range cells {
			if i >= len(rec) {
				cells[i] = nil
				continue
			}
			s := strings.TrimSpace(rec[i])
			if s == "" {
				cells[i] = nil
			} else {
				cells[i] = s
			}
		}
		if err := tbl.AppendRow(cells...); err != nil {
			return nil, fmt.Errorf("csv: %s: %w", source, err)
		}
	}
	return tbl, nil
}

// NormalizeHeader canonicalizes one header cell: trim, lower-case, and
// replace interior whitespace runs with a single underscore, so
// "LAST UPDATE" and "last  update" both become "last_update".
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

// stripBOM removes a leading UTF-8 byte-order mark if present. Several of the
// agency exports carry one.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return br
}
