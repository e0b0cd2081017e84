package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySink captures sink calls in memory so orchestrator tests need no
// real output directory.
type memorySink struct {
	records map[string][]Record
	best    map[string][]Record
	params  map[string][]Param
}

func newMemorySink() *memorySink {
	return &memorySink{
		records: make(map[string][]Record),
		best:    make(map[string][]Record),
		params:  make(map[string][]Param),
	}
}

type memoryWriter struct {
	sink *memorySink
	run  string
}

func (m *memorySink) Records(run string) (RecordWriter, error) {
	m.records[run] = []Record{}
	return &memoryWriter{sink: m, run: run}, nil
}

func (w *memoryWriter) Append(r Record) error {
	w.sink.records[w.run] = append(w.sink.records[w.run], r)
	return nil
}

func (w *memoryWriter) Close() error { return nil }

func (m *memorySink) WriteBest(run string, records []Record) error {
	m.best[run] = records
	return nil
}

func (m *memorySink) WriteParams(run string, params []Param) error {
	m.params[run] = params
	return nil
}

func logLine(step, episode int, ret float64) string {
	return fmt.Sprintf("harness - Iter: %d/%d A1-B2 - Rand Eps: 0.10 lr: 0.001 Ret = %g Last Crash = 0 t=0.05 SF = 1.0 Seen=1 Reward: 50.0", step, episode, ret)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestProcess_ParsesAllLogFilesAndCountsDiscards(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trainlog.txt",
		logLine(1, 1, 5.0)+"\n"+
			"checkpoint saved, nothing to parse here\n"+
			logLine(2, 1, 8.2)+"\n")
	// final line deliberately lacks a trailing newline
	writeFile(t, dir, "extra.log", logLine(3, 2, 1.0))
	// unrecognized extension must be ignored entirely
	writeFile(t, dir, "notes.md", logLine(9, 9, 9.0))

	s := newMemorySink()
	o := NewOrchestrator(NewIterGrammar(), ReturnRanker{}, s)

	report, err := o.Process("run1", dir)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalLines)
	assert.Equal(t, 3, report.ParsedLines)
	assert.Equal(t, 1, report.Discarded())
	assert.Equal(t, "run1", report.Run)
	assert.Len(t, s.records["run1"], 3)
	assert.Len(t, s.best["run1"], 2)
	assert.Equal(t, 8.2, s.best["run1"][0].Return)
}

func TestProcess_EmptyRunDirectoryYieldsEmptyTables(t *testing.T) {
	s := newMemorySink()
	o := NewOrchestrator(NewIterGrammar(), ReturnRanker{}, s)

	report, err := o.Process("empty", t.TempDir())
	require.NoError(t, err)

	assert.Zero(t, report.TotalLines)
	assert.Empty(t, s.records["empty"])
	assert.Empty(t, s.best["empty"])
}

func TestProcess_MissingDirectoryIsFatal(t *testing.T) {
	s := newMemorySink()
	o := NewOrchestrator(NewIterGrammar(), ReturnRanker{}, s)

	_, err := o.Process("gone", filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestProcess_TieBreaksAreStableAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	// files enumerate in name order, so a.txt's record wins the 8.2 tie
	writeFile(t, dir, "a.txt", logLine(1, 5, 8.2)+"\n")
	writeFile(t, dir, "b.txt", logLine(2, 5, 8.2)+"\n")

	s := newMemorySink()
	o := NewOrchestrator(NewIterGrammar(), ReturnRanker{}, s)

	_, err := o.Process("run1", dir)
	require.NoError(t, err)

	require.Len(t, s.best["run1"], 1)
	assert.Equal(t, int64(1), s.best["run1"][0].Step)
}

func TestProcessAll_RunsAreIndependent(t *testing.T) {
	root := t.TempDir()
	for _, run := range []string{"run-a", "run-b"} {
		dir := filepath.Join(root, run)
		require.NoError(t, os.Mkdir(dir, 0o755))
		writeFile(t, dir, "trainlog.txt", logLine(1, 1, 5.0)+"\n")
	}
	// a stray file next to the run directories is not a run
	writeFile(t, root, "README.txt", "not a run\n")
	// a run with a broken config file still gets its log tables
	writeFile(t, filepath.Join(root, "run-a"), "settings.ini", "[net\nbad ini\n")

	s := newMemorySink()
	o := NewOrchestrator(NewIterGrammar(), ReturnRanker{}, s)

	reports, err := o.ProcessAll(root)
	require.NoError(t, err)

	assert.Len(t, reports, 2)
	assert.Len(t, s.records["run-a"], 1)
	assert.Len(t, s.records["run-b"], 1)
	assert.Empty(t, s.params["run-a"])
}

func TestSetExtensions_OverridesLogFileSet(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trainlog.out", logLine(1, 1, 5.0)+"\n")
	writeFile(t, dir, "trainlog.txt", logLine(2, 2, 5.0)+"\n")

	s := newMemorySink()
	o := NewOrchestrator(NewIterGrammar(), ReturnRanker{}, s)
	o.SetExtensions([]string{".out"}, nil)

	report, err := o.Process("run1", dir)
	require.NoError(t, err)

	assert.Equal(t, 1, report.ParsedLines)
	assert.Equal(t, "1", s.records["run1"][0].Episode)
}
