package dashboard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/trainlog/trainlog/ingest"
	"github.com/trainlog/trainlog/sink"
)

// Tables is one run's parsed output loaded into memory.
type Tables struct {
	Records []ingest.Record
	Best    []ingest.Record
	Params  []ingest.Param
}

// Store lazily loads run tables from the output directory tree and caches
// them until invalidated (see Watch).
type Store struct {
	root string

	mu    sync.Mutex
	cache map[string]*Tables
}

// NewStore returns a store over the given output root.
func NewStore(root string) *Store {
	return &Store{root: root, cache: make(map[string]*Tables)}
}

// Root returns the output directory the store reads from.
func (s *Store) Root() string {
	return s.root
}

// Runs lists the available run names, sorted.
func (s *Store) Runs() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading output directory: %w", err)
	}
	var runs []string
	for _, e := range entries {
		if e.IsDir() {
			runs = append(runs, e.Name())
		}
	}
	sort.Strings(runs)
	return runs, nil
}

// Tables returns the cached tables for a run, loading them on first use.
// A missing run surfaces as fs.ErrNotExist via the record table open.
func (s *Store) Tables(run string) (*Tables, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.cache[run]; ok {
		return t, nil
	}

	dir := filepath.Join(s.root, run)
	records, err := sink.LoadRecords(filepath.Join(dir, sink.RecordsFile))
	if err != nil {
		return nil, err
	}
	best, err := sink.LoadRecords(filepath.Join(dir, sink.BestFile))
	if err != nil {
		return nil, err
	}
	params, err := sink.LoadParams(filepath.Join(dir, sink.ParamsFile))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		params = nil // the config pass is optional
	}

	t := &Tables{Records: records, Best: best, Params: params}
	s.cache[run] = t
	return t, nil
}

// Invalidate drops one run's cached tables.
func (s *Store) Invalidate(run string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, run)
}

// InvalidateAll drops every cached table.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*Tables)
}
