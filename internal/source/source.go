package source

import (
	"context"
	"fmt"

	"TrackerPipeline/internal/domain"
)

// Connector fetches items changed since a date from one external API.
type Connector interface {
	// Name identifies the source inside run state and the rate limiter.
	Name() string
	// FetchSince returns all items dated on or after since (YYYY-MM-DD).
	// Every item must carry Source, a per-source-unique SourceID, and Date.
	FetchSince(ctx context.Context, since string) ([]domain.Item, error)
	// Category returns the source-default tracker category for an item,
	// or "" when the AI screening tier decides.
	Category(item domain.Item) string
}

// Registry keeps connectors in registration order so runs are
// deterministic.
type Registry struct {
	order      []string
	connectors map[string]Connector
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{connectors: map[string]Connector{}}
}

// Register adds or replaces a connector.
func (r *Registry) Register(c Connector) {
	if _, exists := r.connectors[c.Name()]; !exists {
		r.order = append(r.order, c.Name())
	}
	r.connectors[c.Name()] = c
}

// Resolve returns a connector by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Connector, error) {
	if c, ok := r.connectors[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}

// All returns connectors in registration order.
func (r *Registry) All() []Connector {
	out := make([]Connector, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.connectors[name])
	}
	return out
}
