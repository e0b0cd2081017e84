// Package sink persists parsed run tables as CSV files, one directory per
// run, and loads them back for presentation.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trainlog/trainlog/ingest"
)

// File names written under <root>/<run>/.
const (
	RecordsFile = "trainlog.csv"
	BestFile    = "best_results.csv"
	ParamsFile  = "params.csv"
)

// ParamColumns is the header of the params table.
var ParamColumns = []string{"parameter", "value"}

// CSVSink implements ingest.Sink on a local output directory tree.
type CSVSink struct {
	root string
}

// NewCSVSink returns a sink writing each run's tables under root/<run>/.
func NewCSVSink(root string) *CSVSink {
	return &CSVSink{root: root}
}

func (s *CSVSink) runDir(run string) (string, error) {
	dir := filepath.Join(s.root, run)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	return dir, nil
}

// Records opens the full-record stream for a run, truncating any previous
// table, and writes the header row immediately.
func (s *CSVSink) Records(run string) (ingest.RecordWriter, error) {
	dir, err := s.runDir(run)
	if err != nil {
		return nil, err
	}
	file, err := os.Create(filepath.Join(dir, RecordsFile))
	if err != nil {
		return nil, fmt.Errorf("creating record table: %w", err)
	}
	w := csv.NewWriter(file)
	if err := w.Write(ingest.Columns); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	return &recordWriter{file: file, w: w}, nil
}

type recordWriter struct {
	file *os.File
	w    *csv.Writer
}

func (rw *recordWriter) Append(r ingest.Record) error {
	return rw.w.Write(r.Row())
}

func (rw *recordWriter) Close() error {
	rw.w.Flush()
	if err := rw.w.Error(); err != nil {
		_ = rw.file.Close()
		return fmt.Errorf("flushing record table: %w", err)
	}
	return rw.file.Close()
}

// WriteBest writes the best-per-episode table in the order given (the
// reducer finalizes sorted by numeric episode).
func (s *CSVSink) WriteBest(run string, records []ingest.Record) error {
	dir, err := s.runDir(run)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Row())
	}
	return writeTable(filepath.Join(dir, BestFile), ingest.Columns, rows)
}

// WriteParams writes the config-parameter table in the order given.
func (s *CSVSink) WriteParams(run string, params []ingest.Param) error {
	dir, err := s.runDir(run)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(params))
	for _, p := range params {
		rows = append(rows, []string{p.Name, p.Value})
	}
	return writeTable(filepath.Join(dir, ParamsFile), ParamColumns, rows)
}

func writeTable(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	return nil
}
