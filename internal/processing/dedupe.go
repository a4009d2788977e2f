package processing

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"TrackerPipeline/internal/domain"
)

// DefaultTitleThreshold is the Jaccard similarity above which two titles
// count as the same document.
const DefaultTitleThreshold = 0.85

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripHTML removes markup tags from a string.
func StripHTML(text string) string {
	return htmlTagPattern.ReplaceAllString(text, "")
}

func normalizeTitle(text string) string {
	return strings.ToLower(strings.TrimSpace(whitespacePattern.ReplaceAllString(StripHTML(text), " ")))
}

// titleSimilarity computes Jaccard similarity of the two titles' word sets.
// A length difference above 50% short-circuits to zero before any set work.
func titleSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	longer := max(len(a), len(b))
	if float64(abs(len(a)-len(b)))/float64(longer) > 0.5 {
		return 0
	}

	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for word := range setA {
		if _, ok := setB[word]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(s)) {
		set[word] = struct{}{}
	}
	return set
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// IsDuplicate checks a new entry against existing entries with three
// ordered strategies; the first match wins.
func IsDuplicate(newEntry domain.Entry, existing []domain.Entry, threshold float64) (bool, string) {
	newID := newEntry.ID()
	newN := strings.TrimSpace(newEntry.String("n"))
	newTitle := normalizeTitle(newEntry.String("T"))

	for _, old := range existing {
		if newID != "" && newID == old.ID() {
			return true, "exact_id_match"
		}

		oldN := strings.TrimSpace(old.String("n"))
		if newN != "" && oldN != "" && newN == oldN {
			return true, "document_number_match"
		}

		oldTitle := normalizeTitle(old.String("T"))
		if newTitle != "" && oldTitle != "" {
			if ratio := titleSimilarity(newTitle, oldTitle); ratio >= threshold {
				return true, fmt.Sprintf("title_similarity (%.2f)", ratio)
			}
		}
	}

	return false, ""
}

// Deduper filters generated entries against the persisted set.
type Deduper struct {
	Threshold float64
	Logger    *slog.Logger
}

// Deduplicate returns the entries that match nothing in existing, in input
// order. Each new entry is compared against the original existing set only,
// never against other entries added within the same run.
func (d Deduper) Deduplicate(newEntries, existing []domain.Entry) []domain.Entry {
	threshold := d.Threshold
	if threshold == 0 {
		threshold = DefaultTitleThreshold
	}

	unique := make([]domain.Entry, 0, len(newEntries))
	for _, entry := range newEntries {
		if dup, reason := IsDuplicate(entry, existing, threshold); dup {
			if d.Logger != nil {
				d.Logger.Info("duplicate skipped", "entry", entry.ID(), "reason", reason)
			}
			continue
		}
		unique = append(unique, entry)
	}

	if d.Logger != nil {
		d.Logger.Info("dedup done", "new", len(unique), "candidates", len(newEntries))
	}
	return unique
}
