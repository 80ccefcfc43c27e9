// Package dataset loads the tabular book sources and reads and writes catalog snapshots.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrLoad marks a source that is missing, unreadable or malformed.
var ErrLoad = errors.New("dataset load error")

const utf8BOM = "\uFEFF"

// Loader handles loading of a comma-separated book source
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load reads every row of the source
func (l *Loader) Load() (*Table, error) {
	return l.load(-1)
}

// LoadSample reads at most limit rows (useful for inspecting a source)
func (l *Loader) LoadSample(limit int) (*Table, error) {
	if limit < 0 {
		limit = 0
	}
	return l.load(limit)
}

func (l *Loader) load(limit int) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(l.datasetPath))
	if ext != ".csv" {
		return nil, fmt.Errorf("%w: unsupported file format: %s (supported: .csv)", ErrLoad, ext)
	}

	slog.Debug("Opening CSV file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open dataset file: %w", ErrLoad, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat file: %w", ErrLoad, err)
	}

	slog.Debug("CSV file stats", "size_bytes", info.Size(), "size_mb", info.Size()/1024/1024)

	r := csv.NewReader(bufio.NewReader(file))
	// All records must have as many fields as the header.
	r.FieldsPerRecord = 0

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s is empty", ErrLoad, l.datasetPath)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %w", ErrLoad, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	var rows [][]string
	for limit < 0 || len(rows) < limit {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrLoad, l.datasetPath, err)
		}
		rows = append(rows, rec)

		if len(rows)%1000 == 0 {
			slog.Debug("Reading CSV", "rows_read", len(rows))
		}
	}

	table := NewTable(filepath.Base(l.datasetPath), header, rows)
	slog.Debug("Finished reading CSV file", "path", l.datasetPath, "columns", len(table.Header), "rows", table.Len())

	return table, nil
}
