package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"TrackerPipeline/internal/config"
	"TrackerPipeline/internal/domain"
	"TrackerPipeline/internal/jsonx"
	"TrackerPipeline/internal/ports"
	"TrackerPipeline/internal/ratelimit"
)

const (
	limiterSource = "anthropic"

	screeningMaxTokens  = 300
	generationMaxTokens = 6000
	qualityMaxTokens    = 500

	// Few-shot examples are truncated to keep the generation prompt small.
	maxExampleBytes = 3000
)

// Analyzer implements ports.Analyzer over the Anthropic client.
type Analyzer struct {
	client  *Client
	models  config.ModelConfig
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

var _ ports.Analyzer = (*Analyzer)(nil)

// NewAnalyzer wires the client, per-tier models, and the shared limiter.
func NewAnalyzer(client *Client, models config.ModelConfig, limiter *ratelimit.Limiter, logger *slog.Logger) *Analyzer {
	return &Analyzer{client: client, models: models, limiter: limiter, logger: logger}
}

// Screen is tier 1. Any failure (limiter, transport, parse) fails
// closed: the item is reported not relevant so it never incurs
// generation cost.
func (a *Analyzer) Screen(ctx context.Context, item domain.Item) domain.ScreenVerdict {
	failed := domain.ScreenVerdict{BriefReason: "screening error"}

	if err := a.limiter.Wait(ctx, limiterSource); err != nil {
		return failed
	}

	itemJSON, err := json.MarshalIndent(screeningView(item), "", "  ")
	if err != nil {
		return failed
	}

	prompt := strings.ReplaceAll(screeningPrompt, "{ITEM_DATA}", string(itemJSON))
	reply, err := a.client.Complete(ctx, a.models.Screening, screeningMaxTokens, prompt)
	if err != nil {
		a.warn("relevance screening failed", "item", item.SourceID, "error", err)
		return failed
	}

	var verdict domain.ScreenVerdict
	if err := jsonx.Decode(reply, &verdict); err != nil {
		a.warn("screening reply unparsable", "item", item.SourceID, "error", err)
		return failed
	}
	return verdict
}

// screeningView trims the item to the fields the screening prompt needs.
func screeningView(item domain.Item) map[string]any {
	abstract := item.Abstract
	if abstract == "" {
		abstract = item.Description
	}
	action := item.Action
	if action == "" {
		action = item.LatestAction
	}
	return map[string]any{
		"title":    item.Title,
		"abstract": abstract,
		"source":   item.Source,
		"date":     item.Date,
		"agencies": item.Agencies,
		"action":   action,
	}
}

// Generate is tier 2. A nil return means "skip this item"; the caller must
// not retry.
func (a *Analyzer) Generate(ctx context.Context, item domain.Item, category string, examples []domain.Entry) domain.Entry {
	if err := a.limiter.Wait(ctx, limiterSource); err != nil {
		return nil
	}

	itemJSON, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return nil
	}

	prompt := strings.ReplaceAll(generationPrompt, "{ITEM_DATA}", string(itemJSON))
	prompt = strings.ReplaceAll(prompt, "{CATEGORY}", category)
	prompt = strings.ReplaceAll(prompt, "{EXAMPLES}", renderExamples(examples))

	reply, err := a.client.Complete(ctx, a.models.Generation, generationMaxTokens, prompt)
	if err != nil {
		a.warn("entry generation failed", "item", item.SourceID, "error", err)
		return nil
	}

	var entry domain.Entry
	if err := jsonx.Decode(reply, &entry); err != nil {
		a.warn("generation reply unparsable", "item", item.SourceID, "error", err)
		return nil
	}
	if a.logger != nil {
		a.logger.Info("generated entry", "entry", entry.ID(), "category", category)
	}
	return entry
}

func renderExamples(examples []domain.Entry) string {
	if len(examples) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\nEXISTING ENTRY EXAMPLES (match this style):\n")
	for i, ex := range examples {
		if i >= 2 {
			break
		}
		raw, err := json.MarshalIndent(ex, "", "  ")
		if err != nil {
			continue
		}
		if len(raw) > maxExampleBytes {
			raw = raw[:maxExampleBytes]
		}
		sb.Write(raw)
		sb.WriteString("\n---\n")
	}
	return sb.String()
}

// QualityCheck is tier 3, consulted only when schema validation already
// found errors. Any failure fails open: an uncertain quality check must
// not discard an already-generated entry.
func (a *Analyzer) QualityCheck(ctx context.Context, entry domain.Entry) domain.QualityVerdict {
	passed := domain.QualityVerdict{Valid: true}

	if err := a.limiter.Wait(ctx, limiterSource); err != nil {
		return passed
	}

	entryJSON, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return passed
	}

	prompt := strings.ReplaceAll(qualityPrompt, "{ENTRY_DATA}", string(entryJSON))
	reply, err := a.client.Complete(ctx, a.models.Validation, qualityMaxTokens, prompt)
	if err != nil {
		a.warn("quality check failed", "entry", entry.ID(), "error", err)
		return passed
	}

	var verdict domain.QualityVerdict
	if err := jsonx.Decode(reply, &verdict); err != nil {
		a.warn("quality reply unparsable", "entry", entry.ID(), "error", err)
		return passed
	}
	return verdict
}

func (a *Analyzer) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
