// Package dashboard serves parsed run tables as a JSON API plus Plotly
// chart pages. It consumes the sink's output and never touches raw logs.
package dashboard

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/trainlog/trainlog/ingest"
)

// Presentation defaults, overridable via the CLI config.
const (
	DefaultBucketWidth   = 10_000
	DefaultSuccessReward = 100.0
)

// Summary holds the headline metrics of one run.
type Summary struct {
	Records       int     `json:"records"`
	Episodes      int     `json:"episodes"`
	TotalHours    float64 `json:"total_hours"`
	BestSuccesses int     `json:"best_successes"`
}

// Bucket aggregates records whose Step falls in [StepBlock, StepBlock+width).
type Bucket struct {
	StepBlock   int64   `json:"step_block"`
	AvgStepTime float64 `json:"avg_t"`
	Successes   int     `json:"successes"`
	Episodes    int     `json:"episodes"`
}

// Summarize computes the headline metrics: total training hours over the
// full stream (sum of t / 3600) and success count over the best table
// (Reward >= successReward).
func Summarize(records, best []ingest.Record, successReward float64) Summary {
	var seconds float64
	for _, r := range records {
		seconds += r.StepTime
	}
	successes := 0
	for _, r := range best {
		if r.Reward >= successReward {
			successes++
		}
	}
	return Summary{
		Records:       len(records),
		Episodes:      len(best),
		TotalHours:    seconds / 3600,
		BestSuccesses: successes,
	}
}

// Bucketize groups the full record stream into fixed-width Step blocks
// (block = Step/width*width) with per-block mean step time, success count
// and distinct episode count. Blocks come back sorted ascending.
func Bucketize(records []ingest.Record, width int64, successReward float64) []Bucket {
	type acc struct {
		times     []float64
		successes int
		episodes  map[string]struct{}
	}
	byBlock := make(map[int64]*acc)
	for _, r := range records {
		block := r.Step / width * width
		a := byBlock[block]
		if a == nil {
			a = &acc{episodes: make(map[string]struct{})}
			byBlock[block] = a
		}
		a.times = append(a.times, r.StepTime)
		if r.Reward >= successReward {
			a.successes++
		}
		a.episodes[r.Episode] = struct{}{}
	}

	buckets := make([]Bucket, 0, len(byBlock))
	for block, a := range byBlock {
		buckets = append(buckets, Bucket{
			StepBlock:   block,
			AvgStepTime: stat.Mean(a.times, nil),
			Successes:   a.successes,
			Episodes:    len(a.episodes),
		})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].StepBlock < buckets[j].StepBlock })
	return buckets
}

// TopByReturn returns up to n records ordered by Ret descending. The sort
// is stable so equal returns keep their best-table (episode) order. n < 0
// means no limit.
func TopByReturn(records []ingest.Record, n int) []ingest.Record {
	out := make([]ingest.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Return > out[j].Return })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
