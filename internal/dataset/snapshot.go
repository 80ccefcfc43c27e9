package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// WriteSnapshot writes rows to path as Parquet or JSON lines, chosen by extension.
func WriteSnapshot[T any](path string, rows []T) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".parquet", ".jsonl", ".json":
	default:
		return fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer file.Close()

	if ext == ".parquet" {
		err = writeParquet(file, rows)
	} else {
		err = writeJSONL(file, rows)
	}
	if err != nil {
		return err
	}

	slog.Debug("Snapshot written", "path", path, "rows", len(rows))
	return file.Close()
}

func writeParquet[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet: %w", err)
	}
	return nil
}

func writeJSONL[T any](w io.Writer, rows []T) error {
	bw := bufio.NewWriter(w)
	encoder := json.NewEncoder(bw)
	for i := range rows {
		if err := encoder.Encode(&rows[i]); err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// ReadSnapshot loads rows previously written by WriteSnapshot
func ReadSnapshot[T any](path string) ([]T, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".parquet":
		return readParquet[T](path)
	case ".jsonl", ".json":
		return readJSONL[T](path)
	default:
		return nil, fmt.Errorf("%w: unsupported file format: %s (supported: .parquet, .jsonl)", ErrLoad, ext)
	}
}

func readJSONL[T any](path string) ([]T, error) {
	slog.Debug("Opening JSONL file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open snapshot file: %w", ErrLoad, err)
	}
	defer file.Close()

	var rows []T
	scanner := bufio.NewScanner(file)

	// Descriptions can be long
	const maxCapacity = 10 * 1024 * 1024 // 10MB per line
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var row T
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON at line %d: %w", ErrLoad, lineNum, err)
		}
		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: error reading snapshot: %w", ErrLoad, err)
	}

	slog.Debug("Finished reading JSONL file", "total_rows", len(rows), "total_lines", lineNum)

	return rows, nil
}

func readParquet[T any](path string) ([]T, error) {
	slog.Debug("Opening Parquet file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open parquet file: %w", ErrLoad, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat file: %w", ErrLoad, err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open parquet: %w", ErrLoad, err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[T](pf)
	defer reader.Close()

	records := make([]T, 0, pf.NumRows())

	for {
		// Fresh batch each time: the reader may reuse pointer targets.
		rows := make([]T, 128)
		n, err := reader.Read(rows)
		records = append(records, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read parquet rows: %w", ErrLoad, err)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_rows", len(records))

	return records, nil
}
