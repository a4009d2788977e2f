package state

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsZeroState(t *testing.T) {
	t.Parallel()

	m := NewManager(filepath.Join(t.TempDir(), "state.json"))
	st, err := m.Load()
	require.NoError(t, err)
	assert.Empty(t, st.LastSuccessfulRun)
	assert.NotNil(t, st.Sources)
	assert.NotNil(t, st.ProcessedIDs)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewManager(filepath.Join(t.TempDir(), "state.json"))

	st := New()
	st.LastSuccessfulRun = "2025-03-01"
	st.LastRunNewEntries = 3
	st.Sources["federal_register"] = SourceStatus{
		LastFetchedDate: "2025-02-28",
		ItemsFetched:    42,
		Status:          "success",
	}
	st.MarkProcessed("federal_register", "2025-04000")
	st.CumulativeStats = CumulativeStats{TotalRuns: 7, TotalEntriesAdded: 19}
	require.NoError(t, m.Save(st))

	got, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestMarkProcessedBoundsHistory(t *testing.T) {
	t.Parallel()

	st := New()
	for i := 0; i < MaxProcessedIDs+50; i++ {
		st.MarkProcessed("news_api", fmt.Sprintf("url-%d", i))
	}

	ids := st.ProcessedIDs["news_api"]
	require.Len(t, ids, MaxProcessedIDs)
	// Most recent IDs survive, the oldest are dropped.
	assert.Equal(t, "url-50", ids[0])
	assert.Equal(t, fmt.Sprintf("url-%d", MaxProcessedIDs+49), ids[len(ids)-1])
}

func TestMarkProcessedIgnoresDuplicatesAndEmpty(t *testing.T) {
	t.Parallel()

	st := New()
	st.MarkProcessed("congress_gov", "hr1-119")
	st.MarkProcessed("congress_gov", "hr1-119")
	st.MarkProcessed("congress_gov", "")

	assert.Equal(t, []string{"hr1-119"}, st.ProcessedIDs["congress_gov"])
	assert.True(t, st.IsProcessed("hr1-119"))
	assert.False(t, st.IsProcessed("hr2-119"))
}
