// Package file implements the local-filesystem raw area handed over by the
// extractor collaborators. The pipeline treats extraction as already
// completed; this package only locates and opens the per-source raw tables.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound reports that a raw input table is absent. Callers treat it as
// the SourceUnavailable condition: the source is skipped with a warning, the
// run continues.
var ErrNotFound = errors.New("raw table not found")

// RawArea is a read-only view of the extractors' output directory.
type RawArea struct{ root string }

// NewRawArea returns a raw area rooted at dir. The directory does not have to
// exist yet; absence surfaces per file as ErrNotFound.
func NewRawArea(dir string) *RawArea { return &RawArea{root: dir} }

// Root returns the raw area root directory.
func (a *RawArea) Root() string { return a.root }

// Open opens the raw table at the given relative path. A missing file or
// directory is reported as ErrNotFound; any other I/O failure is returned
// verbatim.
func (a *RawArea) Open(rel string) (*os.File, error) {
	path := filepath.Join(a.root, rel)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("open raw table %s: %w", path, err)
	}
	return f, nil
}
