package processing

import (
	"log/slog"
	"sort"
	"strings"

	"TrackerPipeline/internal/domain"
)

// Prefilter is the deterministic keyword scan that bounds the cost of the
// paid screening stage.
type Prefilter struct {
	keywords []string // stored lowercased
	maxItems int
	logger   *slog.Logger
}

// NewPrefilter builds a filter from a keyword list and a survivor cap
// (0 = uncapped).
func NewPrefilter(keywords []string, maxItems int, logger *slog.Logger) *Prefilter {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &Prefilter{keywords: lowered, maxItems: maxItems, logger: logger}
}

// Score counts distinct keywords appearing in the item's text fields.
func (p *Prefilter) Score(item domain.Item) int {
	searchable := strings.ToLower(item.SearchableText())
	score := 0
	for _, kw := range p.keywords {
		if strings.Contains(searchable, kw) {
			score++
		}
	}
	return score
}

// Filter keeps items matching at least one keyword, sorted by match count
// descending (stable, so equal scores keep input order), truncated to the
// cap. Pure: same input always yields the same output list.
func (p *Prefilter) Filter(items []domain.Item) []domain.Item {
	survivors := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if score := p.Score(item); score > 0 {
			item.KeywordScore = score
			survivors = append(survivors, item)
		}
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].KeywordScore > survivors[j].KeywordScore
	})

	if p.maxItems > 0 && len(survivors) > p.maxItems {
		if p.logger != nil {
			p.logger.Warn("pre-filter cap reached", "kept", p.maxItems, "matched", len(survivors))
		}
		survivors = survivors[:p.maxItems]
	}

	if p.logger != nil {
		p.logger.Info("pre-filter done", "passed", len(survivors), "total", len(items))
	}
	return survivors
}
