package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrackerPipeline/internal/config"
	"TrackerPipeline/internal/data"
	"TrackerPipeline/internal/domain"
	"TrackerPipeline/internal/logging"
	"TrackerPipeline/internal/processing"
	"TrackerPipeline/internal/source"
	"TrackerPipeline/internal/state"
)

var testLogger = logging.New("error")

type fakeConnector struct {
	name     string
	items    []domain.Item
	err      error
	category string
}

func (f *fakeConnector) Name() string { return f.name }

func (f *fakeConnector) FetchSince(ctx context.Context, since string) ([]domain.Item, error) {
	return f.items, f.err
}

func (f *fakeConnector) Category(domain.Item) string { return f.category }

type fakeAnalyzer struct {
	verdicts map[string]domain.ScreenVerdict
	entries  map[string]domain.Entry
	quality  domain.QualityVerdict

	screened  []string
	generated []string
}

func (f *fakeAnalyzer) Screen(ctx context.Context, item domain.Item) domain.ScreenVerdict {
	f.screened = append(f.screened, item.SourceID)
	return f.verdicts[item.SourceID]
}

func (f *fakeAnalyzer) Generate(ctx context.Context, item domain.Item, category string, examples []domain.Entry) domain.Entry {
	f.generated = append(f.generated, item.SourceID)
	return f.entries[item.SourceID]
}

func (f *fakeAnalyzer) QualityCheck(ctx context.Context, entry domain.Entry) domain.QualityVerdict {
	return f.quality
}

// validEntry builds an entry that passes schema validation.
func validEntry(id, title string) domain.Entry {
	words := make([]string, 110)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return domain.Entry{
		"i": id,
		"t": title,
		"n": "EO 14999",
		"T": title,
		"s": "One-line summary.",
		"d": "2025-03-10",
		"a": "Trump II",
		"A": []any{"Department of the Interior"},
		"S": "Active",
		"L": "HARMFUL",
		"D": strings.Join(words, " "),
		"I": map[string]any{},
		"c": []any{"community"},
	}
}

type fixture struct {
	dataPath  string
	statePath string
	indexPath string
	deps      PipelineDeps
	analyzer  *fakeAnalyzer
}

func newFixture(t *testing.T, connectors []source.Connector, analyzer *fakeAnalyzer, run config.RunConfig) *fixture {
	t.Helper()
	dir := t.TempDir()

	dataPath := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(`{"executive_orders":[],"agency_actions":[],"legislation":[],"litigation":[],"other_domestic":[],"international":[]}`), 0o644))

	indexPath := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(indexPath, []byte(`<script>const LAST_API_PULL = "2025-01-01";</script>`), 0o644))

	registry := source.NewRegistry()
	for _, c := range connectors {
		registry.Register(c)
	}

	statePath := filepath.Join(dir, "state.json")
	deps := PipelineDeps{
		Registry:  registry,
		Prefilter: processing.NewPrefilter([]string{"heritage", "tribal"}, 150, testLogger),
		Analyzer:  analyzer,
		Data:      data.NewManager(dataPath, indexPath, testLogger),
		State:     state.NewManager(statePath),
		Deduper:   processing.Deduper{Logger: testLogger},
		Logger:    testLogger,
		Run:       run,
	}
	return &fixture{
		dataPath:  dataPath,
		statePath: statePath,
		indexPath: indexPath,
		deps:      deps,
		analyzer:  analyzer,
	}
}

func day() time.Time { return time.Date(2025, time.March, 10, 6, 0, 0, 0, time.UTC) }

func TestProcessDayAppendsEntriesAndAdvancesState(t *testing.T) {
	items := []domain.Item{
		{Source: "federal_register", SourceID: "fr-1", Title: "Order on heritage sites", Date: "2025-03-08"},
		{Source: "federal_register", SourceID: "fr-2", Title: "Unrelated paperwork notice", Date: "2025-03-08"},
	}
	analyzer := &fakeAnalyzer{
		verdicts: map[string]domain.ScreenVerdict{
			"fr-1": {Relevant: true, Confidence: 0.9, Category: "executive_orders", ThreatLevel: "HARMFUL"},
		},
		entries: map[string]domain.Entry{
			"fr-1": validEntry("eo-2025-01", "Heritage Sites Order"),
		},
	}
	fx := newFixture(t, []source.Connector{
		&fakeConnector{name: "federal_register", items: items, category: "agency_actions"},
	}, analyzer, config.RunConfig{SourceFilter: "all", MaxEntriesPerRun: 25})

	report, err := NewPipeline(fx.deps).ProcessDay(context.Background(), day())
	require.NoError(t, err)

	assert.Equal(t, 2, report.RawItems)
	assert.Equal(t, 1, report.NewEntries)
	assert.Equal(t, map[string]int{"executive_orders": 1}, report.ByCategory)

	// Keyword pre-filter kept only the heritage item, so screening saw one.
	assert.Equal(t, []string{"fr-1"}, analyzer.screened)

	doc, err := fx.deps.Data.Load()
	require.NoError(t, err)
	require.Len(t, doc.ExecutiveOrders, 1)
	assert.Equal(t, "eo-2025-01", doc.ExecutiveOrders[0].ID())
	require.NotNil(t, doc.Meta)
	assert.Equal(t, 1, doc.Meta.Total)

	page, err := os.ReadFile(fx.indexPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), `const LAST_API_PULL = "2025-03-10"`)

	st, err := fx.deps.State.Load()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", st.LastSuccessfulRun)
	assert.Equal(t, 1, st.LastRunNewEntries)
	assert.Equal(t, 1, st.CumulativeStats.TotalRuns)
	// Every raw item is marked processed, relevant or not.
	assert.True(t, st.IsProcessed("fr-1"))
	assert.True(t, st.IsProcessed("fr-2"))
	assert.Equal(t, "success", st.Sources["federal_register"].Status)
}

func TestProcessDayDryRunPersistsNothing(t *testing.T) {
	items := []domain.Item{
		{Source: "federal_register", SourceID: "fr-1", Title: "Order on heritage sites", Date: "2025-03-08"},
	}
	analyzer := &fakeAnalyzer{
		verdicts: map[string]domain.ScreenVerdict{
			"fr-1": {Relevant: true, Confidence: 0.9, Category: "executive_orders"},
		},
		entries: map[string]domain.Entry{
			"fr-1": validEntry("eo-2025-01", "Heritage Sites Order"),
		},
	}
	fx := newFixture(t, []source.Connector{
		&fakeConnector{name: "federal_register", items: items},
	}, analyzer, config.RunConfig{SourceFilter: "all", MaxEntriesPerRun: 25, DryRun: true})

	before, err := os.ReadFile(fx.dataPath)
	require.NoError(t, err)

	report, err := NewPipeline(fx.deps).ProcessDay(context.Background(), day())
	require.NoError(t, err)

	// The full pipeline ran.
	assert.Equal(t, 1, report.NewEntries)
	assert.Equal(t, []string{"fr-1"}, analyzer.generated)

	// Nothing was written.
	after, err := os.ReadFile(fx.dataPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	page, err := os.ReadFile(fx.indexPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), `const LAST_API_PULL = "2025-01-01"`)

	_, err = os.Stat(fx.statePath)
	assert.True(t, os.IsNotExist(err))
}

func TestProcessDayIsolatesFailedSources(t *testing.T) {
	analyzer := &fakeAnalyzer{
		verdicts: map[string]domain.ScreenVerdict{
			"cl-1": {Relevant: true, Confidence: 0.8, Category: "litigation"},
		},
		entries: map[string]domain.Entry{
			"cl-1": validEntry("lit-2025-01", "Tribe v. Agency"),
		},
	}
	fx := newFixture(t, []source.Connector{
		&fakeConnector{name: "federal_register", err: errors.New("upstream down")},
		&fakeConnector{name: "courtlistener", category: "litigation", items: []domain.Item{
			{Source: "courtlistener", SourceID: "cl-1", Title: "Tribal sovereignty opinion", Date: "2025-03-07"},
		}},
	}, analyzer, config.RunConfig{SourceFilter: "all", MaxEntriesPerRun: 25})

	report, err := NewPipeline(fx.deps).ProcessDay(context.Background(), day())
	require.NoError(t, err)
	assert.Equal(t, 1, report.NewEntries)

	st, err := fx.deps.State.Load()
	require.NoError(t, err)
	assert.Equal(t, "error: upstream down", st.Sources["federal_register"].Status)
	assert.Equal(t, "success", st.Sources["courtlistener"].Status)
}

func TestProcessDayZeroItemsAdvancesStateOnly(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	fx := newFixture(t, []source.Connector{
		&fakeConnector{name: "federal_register"},
	}, analyzer, config.RunConfig{SourceFilter: "all", MaxEntriesPerRun: 25})

	report, err := NewPipeline(fx.deps).ProcessDay(context.Background(), day())
	require.NoError(t, err)
	assert.Zero(t, report.NewEntries)
	assert.Empty(t, analyzer.screened)

	st, err := fx.deps.State.Load()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", st.LastSuccessfulRun)
	assert.Zero(t, st.CumulativeStats.TotalRuns)
}

func TestProcessDaySkipsAlreadyProcessedItems(t *testing.T) {
	items := []domain.Item{
		{Source: "federal_register", SourceID: "fr-1", Title: "Order on heritage sites", Date: "2025-03-08"},
	}
	analyzer := &fakeAnalyzer{}
	fx := newFixture(t, []source.Connector{
		&fakeConnector{name: "federal_register", items: items},
	}, analyzer, config.RunConfig{SourceFilter: "all", MaxEntriesPerRun: 25})

	seeded := state.New()
	seeded.MarkProcessed("federal_register", "fr-1")
	require.NoError(t, fx.deps.State.Save(seeded))

	report, err := NewPipeline(fx.deps).ProcessDay(context.Background(), day())
	require.NoError(t, err)
	assert.Zero(t, report.Screened)
	assert.Empty(t, analyzer.screened)
}

func TestProcessDayFiltersRelevantButLowConfidenceItems(t *testing.T) {
	analyzer := &fakeAnalyzer{
		verdicts: map[string]domain.ScreenVerdict{
			"fr-1": {Relevant: true, Confidence: 0.4, Category: "executive_orders"},
		},
		entries: map[string]domain.Entry{
			"fr-1": validEntry("eo-2025-01", "Heritage Sites Order"),
		},
	}
	fx := newFixture(t, []source.Connector{
		&fakeConnector{name: "federal_register", items: []domain.Item{
			{Source: "federal_register", SourceID: "fr-1", Title: "Order on heritage sites", Date: "2025-03-08"},
		}},
	}, analyzer, config.RunConfig{SourceFilter: "all", MaxEntriesPerRun: 25})

	report, err := NewPipeline(fx.deps).ProcessDay(context.Background(), day())
	require.NoError(t, err)

	// Relevance alone is not enough; confidence below the threshold keeps
	// the item out of the generation tier entirely.
	assert.Equal(t, []string{"fr-1"}, analyzer.screened)
	assert.Empty(t, analyzer.generated)
	assert.Zero(t, report.Relevant)
	assert.Zero(t, report.NewEntries)

	doc, err := fx.deps.Data.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.ExecutiveOrders)
}

func TestProcessDayCapsByScreeningConfidence(t *testing.T) {
	var items []domain.Item
	verdicts := map[string]domain.ScreenVerdict{}
	entries := map[string]domain.Entry{}
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("fr-%d", i)
		items = append(items, domain.Item{
			Source: "federal_register", SourceID: id,
			Title: fmt.Sprintf("heritage order %d", i), Date: "2025-03-08",
		})
		verdicts[id] = domain.ScreenVerdict{
			Relevant:   true,
			Confidence: 0.6 + float64(i)*0.1,
			Category:   "executive_orders",
		}
		entries[id] = validEntry(fmt.Sprintf("eo-2025-%02d", i), fmt.Sprintf("Order %d", i))
	}
	analyzer := &fakeAnalyzer{verdicts: verdicts, entries: entries}
	fx := newFixture(t, []source.Connector{
		&fakeConnector{name: "federal_register", items: items},
	}, analyzer, config.RunConfig{SourceFilter: "all", MaxEntriesPerRun: 2})

	report, err := NewPipeline(fx.deps).ProcessDay(context.Background(), day())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Relevant)
	assert.Equal(t, 2, report.NewEntries)
	// The two highest-confidence items won the cap.
	assert.ElementsMatch(t, []string{"fr-3", "fr-2"}, analyzer.generated)
}

func TestProcessDayRejectsMajorQualityFailures(t *testing.T) {
	invalid := domain.Entry{"i": "eo-bad", "t": "Broken"} // fails schema validation
	analyzer := &fakeAnalyzer{
		verdicts: map[string]domain.ScreenVerdict{
			"fr-1": {Relevant: true, Confidence: 0.9, Category: "executive_orders"},
		},
		entries: map[string]domain.Entry{"fr-1": invalid},
		quality: domain.QualityVerdict{Valid: false, Severity: domain.SeverityMajor},
	}
	fx := newFixture(t, []source.Connector{
		&fakeConnector{name: "federal_register", items: []domain.Item{
			{Source: "federal_register", SourceID: "fr-1", Title: "heritage order", Date: "2025-03-08"},
		}},
	}, analyzer, config.RunConfig{SourceFilter: "all", MaxEntriesPerRun: 25})

	report, err := NewPipeline(fx.deps).ProcessDay(context.Background(), day())
	require.NoError(t, err)
	assert.Zero(t, report.NewEntries)
}

func TestProcessDayKeepsMinorQualityFailures(t *testing.T) {
	invalid := validEntry("eo-2025-05", "Order")
	delete(invalid, "n") // one schema violation, judged minor
	analyzer := &fakeAnalyzer{
		verdicts: map[string]domain.ScreenVerdict{
			"fr-1": {Relevant: true, Confidence: 0.9, Category: "executive_orders"},
		},
		entries: map[string]domain.Entry{"fr-1": invalid},
		quality: domain.QualityVerdict{Valid: false, Severity: "minor"},
	}
	fx := newFixture(t, []source.Connector{
		&fakeConnector{name: "federal_register", items: []domain.Item{
			{Source: "federal_register", SourceID: "fr-1", Title: "heritage order", Date: "2025-03-08"},
		}},
	}, analyzer, config.RunConfig{SourceFilter: "all", MaxEntriesPerRun: 25})

	report, err := NewPipeline(fx.deps).ProcessDay(context.Background(), day())
	require.NoError(t, err)
	assert.Equal(t, 1, report.NewEntries)
}

func TestProcessDaySourceFilterLimitsFetch(t *testing.T) {
	frItems := []domain.Item{{Source: "federal_register", SourceID: "fr-1", Title: "heritage", Date: "2025-03-08"}}
	clItems := []domain.Item{{Source: "courtlistener", SourceID: "cl-1", Title: "tribal", Date: "2025-03-08"}}
	analyzer := &fakeAnalyzer{}
	fx := newFixture(t, []source.Connector{
		&fakeConnector{name: "federal_register", items: frItems},
		&fakeConnector{name: "courtlistener", items: clItems},
	}, analyzer, config.RunConfig{SourceFilter: "courtlistener", MaxEntriesPerRun: 25})

	report, err := NewPipeline(fx.deps).ProcessDay(context.Background(), day())
	require.NoError(t, err)
	assert.Equal(t, 1, report.RawItems)
	assert.Equal(t, []string{"cl-1"}, analyzer.screened)

	st, err := fx.deps.State.Load()
	require.NoError(t, err)
	_, fetched := st.Sources["federal_register"]
	assert.False(t, fetched)
}

func TestClipKeepsRuneBoundaries(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abc...", clip("abcdef", 3))
	// Multi-byte titles must never be cut mid-rune.
	clipped := clip("Latiné heritage día señaló", 10)
	assert.True(t, utf8.ValidString(clipped))
	assert.Equal(t, "Latiné her...", clipped)
}

func TestProcessDaySkipsDuplicateEntries(t *testing.T) {
	existing := validEntry("eo-2025-01", "Heritage Sites Order")
	seed, err := json.Marshal(map[string]any{
		"executive_orders": []domain.Entry{existing},
		"agency_actions":   []domain.Entry{},
		"legislation":      []domain.Entry{},
		"litigation":       []domain.Entry{},
		"other_domestic":   []domain.Entry{},
		"international":    []domain.Entry{},
	})
	require.NoError(t, err)

	analyzer := &fakeAnalyzer{
		verdicts: map[string]domain.ScreenVerdict{
			"fr-1": {Relevant: true, Confidence: 0.9, Category: "executive_orders"},
		},
		entries: map[string]domain.Entry{
			"fr-1": validEntry("eo-2025-01", "Heritage Sites Order"),
		},
	}
	fx := newFixture(t, []source.Connector{
		&fakeConnector{name: "federal_register", items: []domain.Item{
			{Source: "federal_register", SourceID: "fr-1", Title: "heritage order", Date: "2025-03-08"},
		}},
	}, analyzer, config.RunConfig{SourceFilter: "all", MaxEntriesPerRun: 25})
	require.NoError(t, os.WriteFile(fx.dataPath, seed, 0o644))

	report, err := NewPipeline(fx.deps).ProcessDay(context.Background(), day())
	require.NoError(t, err)
	assert.Zero(t, report.NewEntries)

	doc, err := fx.deps.Data.Load()
	require.NoError(t, err)
	assert.Len(t, doc.ExecutiveOrders, 1)
}
