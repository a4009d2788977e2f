package processing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrackerPipeline/internal/domain"
)

func TestIsDuplicateExactID(t *testing.T) {
	t.Parallel()

	existing := []domain.Entry{{"i": "eo-14100", "T": "Something else entirely"}}
	dup, reason := IsDuplicate(domain.Entry{"i": "eo-14100", "T": "New title"}, existing, 0.85)
	assert.True(t, dup)
	assert.Equal(t, "exact_id_match", reason)
}

func TestIsDuplicateDocumentNumber(t *testing.T) {
	t.Parallel()

	existing := []domain.Entry{{"i": "a", "n": "EO 14100 ", "T": "Old"}}
	dup, reason := IsDuplicate(domain.Entry{"i": "b", "n": "EO 14100", "T": "New"}, existing, 0.85)
	assert.True(t, dup)
	assert.Equal(t, "document_number_match", reason)

	// Empty document numbers never match each other.
	dup, _ = IsDuplicate(domain.Entry{"i": "c", "n": ""}, []domain.Entry{{"i": "d", "n": ""}}, 0.85)
	assert.False(t, dup)
}

func TestIsDuplicateTitleSimilarity(t *testing.T) {
	t.Parallel()

	existing := []domain.Entry{{
		"i": "old",
		"T": `<span style="color:#991B1B">Executive Order Restricting National Heritage Area Grant Funding</span>`,
	}}

	dup, reason := IsDuplicate(domain.Entry{
		"i": "new",
		"T": "Executive Order Restricting National Heritage Area Grant Funding",
	}, existing, 0.85)
	assert.True(t, dup)
	assert.Contains(t, reason, "title_similarity")

	dup, _ = IsDuplicate(domain.Entry{
		"i": "other",
		"T": "Notice of Proposed Rulemaking on Migratory Bird Permits",
	}, existing, 0.85)
	assert.False(t, dup)
}

func TestTitleSimilarityLengthPrecheck(t *testing.T) {
	t.Parallel()

	short := "heritage"
	long := "heritage heritage heritage heritage heritage heritage heritage"
	assert.Zero(t, titleSimilarity(short, long))
}

func TestDeduplicateAgainstOriginalSetOnly(t *testing.T) {
	t.Parallel()

	existing := []domain.Entry{{"i": "kept", "T": "Existing entry title"}}
	// Two identical new entries: both survive because comparison is only
	// against the persisted set.
	twin := domain.Entry{"i": "twin", "T": "A wholly new order on museums"}
	twinCopy := domain.Entry{"i": "twin", "T": "A wholly new order on museums"}

	unique := Deduper{}.Deduplicate([]domain.Entry{twin, twinCopy}, existing)
	require.Len(t, unique, 2)
	assert.Equal(t, "twin", unique[0].ID())
}

func TestDeduplicatePreservesOrder(t *testing.T) {
	t.Parallel()

	existing := []domain.Entry{{"i": "dup", "T": "Old title"}}
	entries := []domain.Entry{
		{"i": "first", "T": "First unique"},
		{"i": "dup", "T": "Whatever"},
		{"i": "second", "T": "Second unique"},
	}

	unique := Deduper{}.Deduplicate(entries, existing)
	require.Len(t, unique, 2)
	assert.Equal(t, "first", unique[0].ID())
	assert.Equal(t, "second", unique[1].ID())
}
