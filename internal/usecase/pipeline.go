package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"TrackerPipeline/internal/config"
	"TrackerPipeline/internal/data"
	"TrackerPipeline/internal/domain"
	"TrackerPipeline/internal/ports"
	"TrackerPipeline/internal/processing"
	"TrackerPipeline/internal/source"
	"TrackerPipeline/internal/state"
)

const (
	defaultLookbackDays = 7
	minScreenConfidence = 0.6
	fewShotExamples     = 2
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
// Archive and Notifier are optional.
type PipelineDeps struct {
	Registry  *source.Registry
	Prefilter *processing.Prefilter
	Analyzer  ports.Analyzer
	Data      *data.Manager
	State     *state.Manager
	Deduper   processing.Deduper
	Archive   ports.EntryArchive
	Notifier  ports.Notifier
	Logger    *slog.Logger
	Run       config.RunConfig
}

// Pipeline implements the daily tracker-update workflow: fetch, pre-filter,
// screen, generate, validate, deduplicate, persist.
type Pipeline struct {
	registry  *source.Registry
	prefilter *processing.Prefilter
	analyzer  ports.Analyzer
	data      *data.Manager
	state     *state.Manager
	deduper   processing.Deduper
	archive   ports.EntryArchive
	notifier  ports.Notifier
	logger    *slog.Logger
	run       config.RunConfig
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		registry:  deps.Registry,
		prefilter: deps.Prefilter,
		analyzer:  deps.Analyzer,
		data:      deps.Data,
		state:     deps.State,
		deduper:   deps.Deduper,
		archive:   deps.Archive,
		notifier:  deps.Notifier,
		logger:    deps.Logger,
		run:       deps.Run,
	}
}

// RunReport summarizes one pipeline run for callers and the notifier.
type RunReport struct {
	Since      string
	RawItems   int
	Screened   int
	Relevant   int
	NewEntries int
	ByCategory map[string]int
	DryRun     bool
}

// ProcessDay runs the full pipeline for one day. Dry runs execute every
// phase but persist nothing: no data file, no page rewrite, no archive, no
// state advance.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time) (*RunReport, error) {
	today := day.Format("2006-01-02")

	st, err := p.state.Load()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	since := p.sinceDate(day, st)
	p.logger.Info("pipeline run starting",
		"since", since, "dry_run", p.run.DryRun, "source_filter", p.run.SourceFilter)

	doc, err := p.data.Load()
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	existing := doc.AllEntries()
	p.logger.Info("existing entries loaded", "count", len(existing))

	report := &RunReport{Since: since, ByCategory: map[string]int{}, DryRun: p.run.DryRun}

	rawItems := p.fetchAll(ctx, since, st)
	report.RawItems = len(rawItems)
	p.logger.Info("fetch phase complete", "raw_items", len(rawItems))

	if len(rawItems) == 0 {
		p.logger.Info("no items fetched, nothing to process")
		if !p.run.DryRun {
			st.LastSuccessfulRun = today
			st.LastRunNewEntries = 0
			if err := p.state.Save(st); err != nil {
				return nil, fmt.Errorf("save state: %w", err)
			}
		}
		return report, nil
	}

	candidates := p.prefilter.Filter(rawItems)
	candidates = dropProcessed(candidates, st)
	report.Screened = len(candidates)
	p.logger.Info("pre-filter phase complete", "candidates", len(candidates))

	relevant := p.screenAll(ctx, candidates)
	report.Relevant = len(relevant)
	relevant = p.capRelevant(relevant)

	newByCategory := p.generateAll(ctx, relevant, doc)

	totalNew := 0
	addedByCategory := map[string][]domain.Entry{}
	for category, entries := range newByCategory {
		unique := p.deduper.Deduplicate(entries, existing)
		if len(unique) == 0 {
			continue
		}
		if !p.run.DryRun {
			doc.AddEntries(category, unique)
		}
		addedByCategory[category] = unique
		report.ByCategory[category] = len(unique)
		totalNew += len(unique)
		p.logger.Info("new entries accepted", "category", category, "count", len(unique))
		for _, e := range unique {
			p.logger.Info("entry added", "id", e.ID(), "summary", e.String("s"))
		}
	}
	report.NewEntries = totalNew

	if err := p.persist(ctx, doc, addedByCategory, totalNew, today); err != nil {
		return nil, err
	}

	if !p.run.DryRun {
		p.updateState(st, rawItems, totalNew, today)
		if err := p.state.Save(st); err != nil {
			return nil, fmt.Errorf("save state: %w", err)
		}
	}

	p.logger.Info("pipeline run complete", "new_entries", totalNew)
	return report, nil
}

// sinceDate picks the fetch window start: manual lookback override, then
// the last successful run, then a first-run default.
func (p *Pipeline) sinceDate(day time.Time, st *state.RunState) string {
	if p.run.LookbackDays > 0 {
		since := day.AddDate(0, 0, -p.run.LookbackDays).Format("2006-01-02")
		p.logger.Info("using manual lookback", "days", p.run.LookbackDays, "since", since)
		return since
	}
	if st.LastSuccessfulRun != "" {
		p.logger.Info("searching since last successful run", "since", st.LastSuccessfulRun)
		return st.LastSuccessfulRun
	}
	since := day.AddDate(0, 0, -defaultLookbackDays).Format("2006-01-02")
	p.logger.Info("first run, using default lookback", "days", defaultLookbackDays, "since", since)
	return since
}

// fetchAll queries every registered connector, respecting the source
// filter. A failed source is recorded in state and skipped; the run
// continues with the rest.
func (p *Pipeline) fetchAll(ctx context.Context, since string, st *state.RunState) []domain.Item {
	var all []domain.Item
	for _, conn := range p.registry.All() {
		name := conn.Name()
		if p.run.SourceFilter != "" && p.run.SourceFilter != "all" && p.run.SourceFilter != name {
			continue
		}

		p.logger.Info("fetching source", "source", name)
		items, err := conn.FetchSince(ctx, since)
		if err != nil {
			p.logger.Error("source fetch failed", "source", name, "error", err)
			st.Sources[name] = state.SourceStatus{
				LastFetchedDate: since,
				ItemsFetched:    0,
				Status:          fmt.Sprintf("error: %v", err),
			}
			continue
		}

		all = append(all, items...)
		st.Sources[name] = state.SourceStatus{
			LastFetchedDate: since,
			ItemsFetched:    len(items),
			Status:          "success",
		}
	}
	return all
}

func dropProcessed(items []domain.Item, st *state.RunState) []domain.Item {
	kept := items[:0]
	for _, item := range items {
		if !st.IsProcessed(item.SourceID) {
			kept = append(kept, item)
		}
	}
	return kept
}

// screenAll runs tier-1 relevance screening, keeping items the model marks
// relevant with enough confidence and attaching its verdict to the item.
func (p *Pipeline) screenAll(ctx context.Context, items []domain.Item) []domain.Item {
	var relevant []domain.Item
	for _, item := range items {
		verdict := p.analyzer.Screen(ctx, item)
		if verdict.Relevant && verdict.Confidence >= minScreenConfidence {
			item.AICategory = verdict.Category
			item.AIThreat = verdict.ThreatLevel
			item.AIReason = verdict.BriefReason
			item.AIConfidence = verdict.Confidence
			relevant = append(relevant, item)
			p.logger.Info("item relevant", "title", clip(item.Title, 80), "category", verdict.Category)
		} else {
			p.logger.Info("item filtered", "title", clip(item.Title, 80))
		}
	}
	p.logger.Info("screening phase complete", "relevant", len(relevant))
	return relevant
}

// capRelevant bounds generation work per run, keeping the items the
// screening tier was most confident about.
func (p *Pipeline) capRelevant(items []domain.Item) []domain.Item {
	limit := p.run.MaxEntriesPerRun
	if limit <= 0 || len(items) <= limit {
		return items
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].AIConfidence > items[j].AIConfidence
	})
	p.logger.Warn("capping entry generation", "cap", limit, "had", len(items))
	return items[:limit]
}

// generateAll runs tier-2 generation and schema validation on every
// accepted item. Entries with schema errors get a tier-3 quality check and
// are discarded only on a major verdict.
func (p *Pipeline) generateAll(ctx context.Context, items []domain.Item, doc *domain.Document) map[string][]domain.Entry {
	byCategory := map[string][]domain.Entry{}
	for _, item := range items {
		category := p.categoryFor(item)
		examples := doc.ExamplesForCategory(category, item.AIThreat, fewShotExamples)

		entry := p.analyzer.Generate(ctx, item, category, examples)
		if entry == nil {
			p.logger.Warn("entry generation failed", "title", clip(item.Title, 60))
			continue
		}

		if errs := processing.ValidateEntry(entry, category); len(errs) > 0 {
			p.logger.Warn("schema errors, consulting quality check", "id", entry.ID(), "errors", errs)
			check := p.analyzer.QualityCheck(ctx, entry)
			if check.Severity == domain.SeverityMajor {
				p.logger.Error("entry rejected by quality check", "id", entry.ID(), "issues", check.Issues)
				continue
			}
		}

		byCategory[category] = append(byCategory[category], entry)
	}
	return byCategory
}

// categoryFor resolves an item's tracker category: the screening verdict,
// then the connector default, then agency actions.
func (p *Pipeline) categoryFor(item domain.Item) string {
	if item.AICategory != "" {
		return item.AICategory
	}
	if conn, err := p.registry.Resolve(item.Source); err == nil {
		if cat := conn.Category(item); cat != "" {
			return cat
		}
	}
	return domain.CategoryAgencyActions
}

// persist saves the document, rewrites the page timestamp, archives, and
// notifies. Dry runs only log what would have happened.
func (p *Pipeline) persist(ctx context.Context, doc *domain.Document, added map[string][]domain.Entry, totalNew int, today string) error {
	switch {
	case totalNew == 0:
		p.logger.Info("no new entries to add")
		return nil
	case p.run.DryRun:
		p.logger.Info("dry run, skipping persistence", "would_add", totalNew)
		return nil
	}

	doc.UpdateMeta()
	if err := p.data.Save(doc); err != nil {
		return fmt.Errorf("save data: %w", err)
	}
	if err := p.data.UpdateLastAPIPull(today); err != nil {
		return fmt.Errorf("update page timestamp: %w", err)
	}
	p.logger.Info("saved new entries", "count", totalNew)

	if p.archive != nil {
		if err := p.archive.SaveEntries(ctx, today, added); err != nil {
			p.logger.Error("archive save failed", "error", err)
		}
	}
	if p.notifier != nil {
		if err := p.notifier.PublishSummary(ctx, buildSummary(today, added)); err != nil {
			p.logger.Error("notify failed", "error", err)
		}
	}
	return nil
}

// updateState records the run outcome and every raw item ID, so future
// runs skip items this run already considered.
func (p *Pipeline) updateState(st *state.RunState, rawItems []domain.Item, totalNew int, today string) {
	st.LastSuccessfulRun = today
	st.LastRunNewEntries = totalNew
	st.CumulativeStats.TotalRuns++
	st.CumulativeStats.TotalEntriesAdded += totalNew
	for _, item := range rawItems {
		st.MarkProcessed(item.Source, item.SourceID)
	}
}

func buildSummary(today string, added map[string][]domain.Entry) string {
	total := 0
	for _, entries := range added {
		total += len(entries)
	}
	summary := fmt.Sprintf("*Tracker update %s*: %d new entries\n", today, total)
	for _, cat := range domain.Categories {
		entries := added[cat]
		if len(entries) == 0 {
			continue
		}
		summary += fmt.Sprintf("\n%s (%d):\n", cat, len(entries))
		for _, e := range entries {
			summary += fmt.Sprintf("- %s: %s\n", e.ID(), clip(e.String("t"), 80))
		}
	}
	return summary
}

// clip shortens s to at most n runes for log lines and summaries.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
