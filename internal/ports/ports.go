package ports

import (
	"context"
	"time"

	"TrackerPipeline/internal/domain"
)

// Analyzer runs the three AI tiers against the LLM service.
type Analyzer interface {
	// Screen decides relevance for one item. Failure is folded into the
	// verdict: a transport or parse error yields relevant=false with zero
	// confidence, never an error (tier 1 fails closed).
	Screen(ctx context.Context, item domain.Item) domain.ScreenVerdict

	// Generate drafts a full tracker entry for an accepted item. A nil
	// entry means "skip this item", not an error to retry.
	Generate(ctx context.Context, item domain.Item, category string, examples []domain.Entry) domain.Entry

	// QualityCheck gives a second opinion on an entry that failed schema
	// validation. Failure yields valid=true (tier 3 fails open).
	QualityCheck(ctx context.Context, entry domain.Entry) domain.QualityVerdict
}

// EntryArchive mirrors added entries into external storage for reporting.
type EntryArchive interface {
	SaveEntries(ctx context.Context, runDate string, byCategory map[string][]domain.Entry) error
}

// Notifier publishes a run summary to an outbound channel.
type Notifier interface {
	PublishSummary(ctx context.Context, summary string) error
}

// Scheduler controls when pipeline runs execute in daemon mode.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
