package ingest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RecordWriter receives the full record stream of one run, in parse order.
type RecordWriter interface {
	Append(r Record) error
	Close() error
}

// Sink persists the derived tables of a run. Format and on-disk layout are
// the sink's business; the orchestrator only streams rows into it.
type Sink interface {
	Records(run string) (RecordWriter, error)
	WriteBest(run string, records []Record) error
	WriteParams(run string, params []Param) error
}

// ParseReport summarizes one run's parse yield. It is advisory only and
// never feeds back into control flow.
type ParseReport struct {
	RunID       uuid.UUID
	Run         string
	TotalLines  int
	ParsedLines int
}

// Discarded returns the number of scanned lines that did not match the grammar.
func (p ParseReport) Discarded() int {
	return p.TotalLines - p.ParsedLines
}

// Orchestrator drives the grammar and reducer over every log file of a run
// and hands the resulting tables to the sink.
type Orchestrator struct {
	grammar  Grammar
	ranker   Ranker
	sink     Sink
	logExts  []string
	confExts []string
}

// NewOrchestrator wires a grammar, a ranker, and a sink into a run
// processor with the default file extension sets (.txt/.log for logs,
// .ini/.cfg/.conf for config files).
func NewOrchestrator(grammar Grammar, ranker Ranker, sink Sink) *Orchestrator {
	return &Orchestrator{
		grammar:  grammar,
		ranker:   ranker,
		sink:     sink,
		logExts:  []string{".txt", ".log"},
		confExts: []string{".ini", ".cfg", ".conf"},
	}
}

// SetExtensions overrides the recognized log and config file extensions.
// Empty slices keep the current set.
func (o *Orchestrator) SetExtensions(logExts, confExts []string) {
	if len(logExts) > 0 {
		o.logExts = logExts
	}
	if len(confExts) > 0 {
		o.confExts = confExts
	}
}

// Process ingests every log file of one run directory. Lines that do not
// match the grammar are counted and skipped; an unreadable directory or
// file is fatal for this run only. A run with no log files completes with
// empty tables.
func (o *Orchestrator) Process(run, inputDir string) (ParseReport, error) {
	report := ParseReport{RunID: uuid.New(), Run: run}

	files, err := o.listFiles(inputDir, o.logExts)
	if err != nil {
		return report, err
	}

	writer, err := o.sink.Records(run)
	if err != nil {
		return report, fmt.Errorf("opening record stream for run %s: %w", run, err)
	}

	reducer := NewBestReducer(o.ranker)
	for _, path := range files {
		if err := o.processFile(path, writer, reducer, &report); err != nil {
			_ = writer.Close()
			return report, err
		}
	}
	if err := writer.Close(); err != nil {
		return report, fmt.Errorf("closing record stream for run %s: %w", run, err)
	}
	if err := o.sink.WriteBest(run, reducer.Finalize()); err != nil {
		return report, fmt.Errorf("writing best table for run %s: %w", run, err)
	}

	logrus.Infof("run %s (%s): parsed %d/%d lines, %d episodes",
		run, report.RunID, report.ParsedLines, report.TotalLines, reducer.Len())
	return report, nil
}

// ProcessAll invokes Process, then the config pass, for every subdirectory
// of dataDir in sorted order. Runs are independent: a failing run is
// logged and skipped, and a failing config pass does not undo its run's
// log-parsing output.
func (o *Orchestrator) ProcessAll(dataDir string) ([]ParseReport, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}

	var reports []ParseReport
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		run := e.Name()
		dir := filepath.Join(dataDir, run)
		report, err := o.Process(run, dir)
		if err != nil {
			logrus.Warnf("run %s failed: %v", run, err)
			continue
		}
		if err := o.HarvestParams(run, dir); err != nil {
			logrus.Warnf("run %s: config pass failed: %v", run, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (o *Orchestrator) processFile(path string, w RecordWriter, reducer *BestReducer, report *ParseReport) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	// bufio.Scanner yields the final line whether or not it ends in \n
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		report.TotalLines++
		rec, ok := o.grammar.Extract(scanner.Text())
		if !ok {
			continue
		}
		if err := w.Append(rec); err != nil {
			return fmt.Errorf("appending record from %s: %w", filepath.Base(path), err)
		}
		reducer.Update(rec)
		report.ParsedLines++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return nil
}

// listFiles returns the run's files carrying one of the given extensions,
// non-recursively. os.ReadDir sorts by filename, which keeps enumeration
// stable so best-record ties break the same way on every invocation.
func (o *Orchestrator) listFiles(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading run directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == want {
				files = append(files, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	return files, nil
}
