package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rec(episode string, ret float64, decision string) Record {
	return Record{Episode: episode, Return: ret, Decision: decision}
}

func TestBestReducer_KeepsMaxReturnPerEpisode(t *testing.T) {
	r := NewBestReducer(ReturnRanker{})

	r.Update(rec("1", 2.0, "A1-B1"))
	r.Update(rec("1", 9.5, "A1-B2"))
	r.Update(rec("1", 4.0, "A1-B3"))
	r.Update(rec("2", 1.0, "C1-D1"))

	out := r.Finalize()
	assert.Len(t, out, 2)
	assert.Equal(t, "A1-B2", out[0].Decision)
	assert.Equal(t, "C1-D1", out[1].Decision)
}

func TestBestReducer_FirstSeenWinsTies(t *testing.T) {
	r := NewBestReducer(ReturnRanker{})

	// three updates for one episode: 5.0, then 8.2 twice; the first 8.2 wins
	r.Update(rec("3", 5.0, "A1-B1"))
	r.Update(rec("3", 8.2, "A1-B2"))
	r.Update(rec("3", 8.2, "A1-B3"))

	out := r.Finalize()
	assert.Len(t, out, 1)
	assert.Equal(t, 8.2, out[0].Return)
	assert.Equal(t, "A1-B2", out[0].Decision)
}

func TestBestReducer_FinalizeSortsNumerically(t *testing.T) {
	r := NewBestReducer(ReturnRanker{})

	for _, ep := range []string{"10", "2", "1", "33"} {
		r.Update(rec(ep, 1.0, "A1-B1"))
	}

	out := r.Finalize()
	episodes := make([]string, 0, len(out))
	for _, o := range out {
		episodes = append(episodes, o.Episode)
	}
	// "10" must sort after "2", not lexicographically before it
	assert.Equal(t, []string{"1", "2", "10", "33"}, episodes)
}

func TestBestReducer_LenCountsDistinctEpisodes(t *testing.T) {
	r := NewBestReducer(ReturnRanker{})

	r.Update(rec("1", 1.0, "A1-B1"))
	r.Update(rec("1", 2.0, "A1-B1"))
	r.Update(rec("7", 3.0, "A1-B1"))

	assert.Equal(t, 2, r.Len())
}

func TestBestReducer_MergePreservesTieBreak(t *testing.T) {
	earlier := NewBestReducer(ReturnRanker{})
	later := NewBestReducer(ReturnRanker{})

	earlier.Update(rec("1", 8.2, "A1-B1"))
	later.Update(rec("1", 8.2, "A1-B9")) // equal rank, must lose
	later.Update(rec("2", 3.0, "C1-D1")) // new key, must land
	later.Update(rec("3", 1.0, "E1-F1"))
	earlier.Update(rec("3", 0.5, "E1-F0")) // lower rank, must be replaced

	earlier.Merge(later)

	out := earlier.Finalize()
	assert.Len(t, out, 3)
	assert.Equal(t, "A1-B1", out[0].Decision)
	assert.Equal(t, "C1-D1", out[1].Decision)
	assert.Equal(t, "E1-F1", out[2].Decision)
}
