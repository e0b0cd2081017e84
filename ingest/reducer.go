package ingest

import (
	"sort"
	"strconv"
)

// Ranker decides how records compete inside the reducer: Key groups them
// and Rank orders them within a group.
type Ranker interface {
	Key(r Record) string
	Rank(r Record) float64
}

// ReturnRanker ranks records by Return within each Episode.
type ReturnRanker struct{}

func (ReturnRanker) Key(r Record) string   { return r.Episode }
func (ReturnRanker) Rank(r Record) float64 { return r.Return }

// BestReducer keeps, per group key, the highest-ranked record seen so far.
// Replacement uses strict >, so the first record to reach a given rank
// wins exact ties. Memory is bounded by the number of distinct keys, not
// the number of records offered.
type BestReducer struct {
	ranker Ranker
	best   map[string]bestEntry
}

type bestEntry struct {
	rank   float64
	record Record
}

// NewBestReducer returns an empty reducer using the given ranker.
func NewBestReducer(ranker Ranker) *BestReducer {
	return &BestReducer{ranker: ranker, best: make(map[string]bestEntry)}
}

// Update offers one record to the reducer.
func (b *BestReducer) Update(r Record) {
	key := b.ranker.Key(r)
	rank := b.ranker.Rank(r)
	if cur, ok := b.best[key]; ok && rank <= cur.rank {
		return
	}
	b.best[key] = bestEntry{rank: rank, record: r}
}

// Len returns the number of distinct group keys seen so far.
func (b *BestReducer) Len() int {
	return len(b.best)
}

// Merge folds a later partial reducer into b under the same strict-> rule:
// entries already in b win exact ties against entries from later. Both
// reducers must use the same ranker for the result to be meaningful.
func (b *BestReducer) Merge(later *BestReducer) {
	for key, e := range later.best {
		if cur, ok := b.best[key]; ok && e.rank <= cur.rank {
			continue
		}
		b.best[key] = e
	}
}

// Finalize returns one record per group key, ordered by the numeric value
// of the key ascending. The grammar guarantees keys are digit strings;
// anything else is a caller contract violation and sorts as zero.
func (b *BestReducer) Finalize() []Record {
	out := make([]Record, 0, len(b.best))
	for _, e := range b.best {
		out = append(out, e.record)
	}
	sort.Slice(out, func(i, j int) bool {
		return b.numKey(out[i]) < b.numKey(out[j])
	})
	return out
}

func (b *BestReducer) numKey(r Record) int64 {
	n, _ := strconv.ParseInt(b.ranker.Key(r), 10, 64)
	return n
}
