package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarvestParams_SectionQualifiedAndSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "agent.ini", `
; agent settings
gamma = 0.99

[net]
layers = 3
# hidden units per layer
width = 128
`)

	s := newMemorySink()
	o := NewOrchestrator(NewIterGrammar(), ReturnRanker{}, s)

	require.NoError(t, o.HarvestParams("run1", dir))

	got := s.params["run1"]
	require.Len(t, got, 3)
	assert.Equal(t, Param{Name: "gamma", Value: "0.99"}, got[0])
	assert.Equal(t, Param{Name: "net.layers", Value: "3"}, got[1])
	assert.Equal(t, Param{Name: "net.width", Value: "128"}, got[2])
}

func TestHarvestParams_LastFileWinsOnDuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	// files load in name order, so b.ini overrides a.ini
	writeFile(t, dir, "a.ini", "[net]\nlayers = 3\n")
	writeFile(t, dir, "b.ini", "[net]\nlayers = 5\n")

	s := newMemorySink()
	o := NewOrchestrator(NewIterGrammar(), ReturnRanker{}, s)

	require.NoError(t, o.HarvestParams("run1", dir))

	require.Len(t, s.params["run1"], 1)
	assert.Equal(t, "5", s.params["run1"][0].Value)
}

func TestHarvestParams_NoConfigFilesWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trainlog.txt", "only logs here\n")

	s := newMemorySink()
	o := NewOrchestrator(NewIterGrammar(), ReturnRanker{}, s)

	require.NoError(t, o.HarvestParams("run1", dir))
	_, wrote := s.params["run1"]
	assert.False(t, wrote)
}

func TestHarvestParams_UnparsableConfigIsAnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.ini", "[net\nno closing bracket\n")

	s := newMemorySink()
	o := NewOrchestrator(NewIterGrammar(), ReturnRanker{}, s)

	assert.Error(t, o.HarvestParams("run1", dir))
}
