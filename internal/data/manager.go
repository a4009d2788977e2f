// Package data reads and rewrites the persisted tracker document and the
// published page.
package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"TrackerPipeline/internal/domain"
)

var lastAPIPullPattern = regexp.MustCompile(`const LAST_API_PULL = "[^"]*"`)

// Manager owns the data.json document and the LAST_API_PULL constant in
// the published HTML page.
type Manager struct {
	dataPath  string
	indexPath string
	logger    *slog.Logger
}

// NewManager wires file paths.
func NewManager(dataPath, indexPath string, logger *slog.Logger) *Manager {
	return &Manager{dataPath: dataPath, indexPath: indexPath, logger: logger}
}

// Load parses the persisted document.
func (m *Manager) Load() (*domain.Document, error) {
	raw, err := os.ReadFile(m.dataPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", m.dataPath, err)
	}
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", m.dataPath, err)
	}
	return &doc, nil
}

// Save writes the document back: compact separators, UTF-8, no HTML
// escaping (titles embed markup that must survive byte-for-byte).
func (m *Manager) Save(doc *domain.Document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	payload := bytes.TrimRight(buf.Bytes(), "\n")

	if err := os.WriteFile(m.dataPath, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", m.dataPath, err)
	}
	if m.logger != nil {
		m.logger.Info("saved data file", "path", m.dataPath, "bytes", len(payload))
	}
	return nil
}

// UpdateLastAPIPull rewrites the LAST_API_PULL string literal in the
// published page. A page without the literal is left untouched; callers
// must not rely on this reporting a missing pattern.
func (m *Manager) UpdateLastAPIPull(dateStr string) error {
	content, err := os.ReadFile(m.indexPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", m.indexPath, err)
	}

	updated := lastAPIPullPattern.ReplaceAll(content,
		[]byte(fmt.Sprintf(`const LAST_API_PULL = "%s"`, dateStr)))

	if err := os.WriteFile(m.indexPath, updated, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", m.indexPath, err)
	}
	if m.logger != nil {
		m.logger.Info("updated LAST_API_PULL", "date", dateStr)
	}
	return nil
}
