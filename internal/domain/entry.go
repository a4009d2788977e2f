package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// Entry is one persisted tracker record. Generated entries arrive as free
// JSON from the LLM and may carry optional fields (_source, keyQuotes, ...)
// that must round-trip untouched, so the record stays a map.
type Entry map[string]any

// Tracker categories, in document order.
const (
	CategoryExecutiveOrders = "executive_orders"
	CategoryAgencyActions   = "agency_actions"
	CategoryLegislation     = "legislation"
	CategoryLitigation      = "litigation"
	CategoryOtherDomestic   = "other_domestic"
	CategoryInternational   = "international"
)

// Categories lists the six fixed tracker categories.
var Categories = []string{
	CategoryExecutiveOrders,
	CategoryAgencyActions,
	CategoryLegislation,
	CategoryLitigation,
	CategoryOtherDomestic,
	CategoryInternational,
}

// Threat levels and the title color markers they require.
const (
	ThreatSevere     = "SEVERE"
	ThreatHarmful    = "HARMFUL"
	ThreatProtective = "PROTECTIVE"

	SevereColorMarker     = "#991B1B"
	ProtectiveColorMarker = "#065F46"
)

// ThreatLevels is the closed set of valid L values.
var ThreatLevels = []string{ThreatSevere, ThreatHarmful, ThreatProtective}

// Administrations is the closed set of valid a values.
var Administrations = []string{"Trump I", "Trump II", "Biden", "Obama"}

// FourPFields are the required sub-fields of each community impact block.
var FourPFields = []string{"people", "places", "practices", "treasures"}

// String returns the entry field as a string, or "" when absent or not a
// string.
func (e Entry) String(key string) string {
	s, _ := e[key].(string)
	return s
}

// ID returns the entry identifier: "i", or "id" for the legislation
// category. The naming asymmetry is part of the source schema.
func (e Entry) ID() string {
	if id := e.String("i"); id != "" {
		return id
	}
	return e.String("id")
}

// Strings returns a list field as []string. Decoded JSON arrives as
// []any, freshly built entries may hold []string; both are accepted.
func (e Entry) Strings(key string) []string {
	switch v := e[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// MarshalPayload serializes the full entry, optional fields included.
func (e Entry) MarshalPayload() ([]byte, error) {
	return json.Marshal(e)
}

// AdministrationFor maps a calendar date onto an administration label.
func AdministrationFor(d time.Time) string {
	switch {
	case !d.Before(time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)):
		return "Trump II"
	case !d.Before(time.Date(2021, time.January, 20, 0, 0, 0, 0, time.UTC)):
		return "Biden"
	case !d.Before(time.Date(2017, time.January, 20, 0, 0, 0, 0, time.UTC)):
		return "Trump I"
	default:
		return "Obama"
	}
}

// Meta summarizes the tracker document. CrossRefCount and Note are
// maintained by hand elsewhere and must survive meta recomputes.
type Meta struct {
	Total         int            `json:"total"`
	ByCategory    map[string]int `json:"by_category"`
	CrossRefCount int            `json:"_crossRefCount,omitempty"`
	Note          string         `json:"_note,omitempty"`
}

// Document is the persisted tracker: six category lists plus meta.
type Document struct {
	ExecutiveOrders []Entry `json:"executive_orders"`
	AgencyActions   []Entry `json:"agency_actions"`
	Legislation     []Entry `json:"legislation"`
	Litigation      []Entry `json:"litigation"`
	OtherDomestic   []Entry `json:"other_domestic"`
	International   []Entry `json:"international"`
	Meta            *Meta   `json:"meta,omitempty"`
}

func (d *Document) category(name string) *[]Entry {
	switch name {
	case CategoryExecutiveOrders:
		return &d.ExecutiveOrders
	case CategoryAgencyActions:
		return &d.AgencyActions
	case CategoryLegislation:
		return &d.Legislation
	case CategoryLitigation:
		return &d.Litigation
	case CategoryOtherDomestic:
		return &d.OtherDomestic
	case CategoryInternational:
		return &d.International
	}
	return nil
}

// Category returns the entry list for a category name, nil for unknown
// names.
func (d *Document) Category(name string) []Entry {
	if list := d.category(name); list != nil {
		return *list
	}
	return nil
}

// AllEntries flattens every category into one list, in category order.
func (d *Document) AllEntries() []Entry {
	var all []Entry
	for _, cat := range Categories {
		all = append(all, d.Category(cat)...)
	}
	return all
}

// AddEntries appends entries to a category and re-sorts it descending by
// date. The sort is stable so same-day entries keep their relative order.
func (d *Document) AddEntries(category string, entries []Entry) {
	list := d.category(category)
	if list == nil || len(entries) == 0 {
		return
	}
	*list = append(*list, entries...)
	sort.SliceStable(*list, func(i, j int) bool {
		return (*list)[i].String("d") > (*list)[j].String("d")
	})
}

// UpdateMeta recomputes total and per-category counts, preserving the
// hand-maintained cross-reference count and note.
func (d *Document) UpdateMeta() {
	meta := &Meta{ByCategory: make(map[string]int, len(Categories))}
	if d.Meta != nil {
		meta.CrossRefCount = d.Meta.CrossRefCount
		meta.Note = d.Meta.Note
	}
	for _, cat := range Categories {
		n := len(d.Category(cat))
		meta.ByCategory[cat] = n
		meta.Total += n
	}
	d.Meta = meta
}

// ExamplesForCategory returns up to count entries from a category for
// few-shot prompting, preferring entries at the given threat level.
// Category lists are date-descending, so these are recent representatives.
func (d *Document) ExamplesForCategory(category, threatLevel string, count int) []Entry {
	entries := d.Category(category)
	if threatLevel != "" {
		var matched []Entry
		for _, e := range entries {
			if e.String("L") == threatLevel {
				matched = append(matched, e)
			}
		}
		entries = matched
	}
	if len(entries) > count {
		entries = entries[:count]
	}
	return entries
}
