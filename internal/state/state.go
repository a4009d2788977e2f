// Package state persists pipeline run state between daily runs.
package state

import (
	"encoding/json"
	"fmt"
	"os"
)

// MaxProcessedIDs bounds the per-source history of already-considered
// source IDs.
const MaxProcessedIDs = 1000

// SourceStatus records the outcome of one source's fetch in the last run.
type SourceStatus struct {
	LastFetchedDate string `json:"last_fetched_date"`
	ItemsFetched    int    `json:"items_fetched"`
	Status          string `json:"status"`
}

// CumulativeStats accumulate across all runs.
type CumulativeStats struct {
	TotalRuns         int `json:"total_runs"`
	TotalEntriesAdded int `json:"total_entries_added"`
}

// RunState is the single JSON object persisted between runs. It is mutated
// at the end of every non-dry run so subsequent runs advance their fetch
// window.
type RunState struct {
	LastSuccessfulRun string                  `json:"last_successful_run"`
	LastRunNewEntries int                     `json:"last_run_new_entries"`
	Sources           map[string]SourceStatus `json:"sources"`
	ProcessedIDs      map[string][]string     `json:"processed_ids"`
	CumulativeStats   CumulativeStats         `json:"cumulative_stats"`
}

// New returns an empty run state with initialized maps.
func New() *RunState {
	return &RunState{
		Sources:      map[string]SourceStatus{},
		ProcessedIDs: map[string][]string{},
	}
}

// IsProcessed reports whether a source ID was already considered by any
// prior run, for any source.
func (s *RunState) IsProcessed(sourceID string) bool {
	if sourceID == "" {
		return false
	}
	for _, ids := range s.ProcessedIDs {
		for _, id := range ids {
			if id == sourceID {
				return true
			}
		}
	}
	return false
}

// MarkProcessed appends a source ID to a source's history, dropping the
// oldest entries beyond MaxProcessedIDs. Duplicate IDs are ignored.
func (s *RunState) MarkProcessed(source, sourceID string) {
	if sourceID == "" {
		return
	}
	ids := s.ProcessedIDs[source]
	for _, id := range ids {
		if id == sourceID {
			return
		}
	}
	ids = append(ids, sourceID)
	if len(ids) > MaxProcessedIDs {
		ids = ids[len(ids)-MaxProcessedIDs:]
	}
	s.ProcessedIDs[source] = ids
}

// Manager loads and saves run state at a fixed path.
type Manager struct {
	path string
}

// NewManager wires the state file path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load reads the state file, returning a fresh zero state when the file
// does not exist yet.
func (m *Manager) Load() (*RunState, error) {
	raw, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", m.path, err)
	}

	st := New()
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("parse %s: %w", m.path, err)
	}
	if st.Sources == nil {
		st.Sources = map[string]SourceStatus{}
	}
	if st.ProcessedIDs == nil {
		st.ProcessedIDs = map[string][]string{}
	}
	return st, nil
}

// Save writes the state file, indented for hand inspection.
func (m *Manager) Save(st *RunState) error {
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(m.path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", m.path, err)
	}
	return nil
}
