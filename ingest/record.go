// Package ingest implements the training-log ingestion core: a line
// extractor that turns raw harness log lines into typed records, a
// best-per-episode streaming reducer, and the orchestrator that drives
// both over a run directory and hands the resulting tables to a sink.
package ingest

import "strconv"

// Record represents one parsed training-log event line.
type Record struct {
	Step         int64
	Episode      string // digit string; the reduction key
	Decision     string // opaque label, e.g. "A1-B2"
	Eps          float64
	LearningRate float64
	Return       float64
	LastCrash    int64
	StepTime     float64 // seconds
	SF           float64
	Found        bool
	Reward       float64
}

// Columns is the canonical header shared by the full-record and best tables.
var Columns = []string{
	"Step", "Episode", "Decision", "Eps", "lr",
	"Ret", "Last Crash", "t", "SF", "Found", "Reward",
}

// Row renders the record as CSV fields in canonical column order.
func (r Record) Row() []string {
	return []string{
		strconv.FormatInt(r.Step, 10),
		r.Episode,
		r.Decision,
		formatFloat(r.Eps),
		formatFloat(r.LearningRate),
		formatFloat(r.Return),
		strconv.FormatInt(r.LastCrash, 10),
		formatFloat(r.StepTime),
		formatFloat(r.SF),
		strconv.FormatBool(r.Found),
		formatFloat(r.Reward),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
