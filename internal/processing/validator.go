package processing

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"TrackerPipeline/internal/domain"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// requiredFields beyond the category-dependent ID field.
var requiredFields = []string{"t", "n", "T", "s", "d", "a", "A", "S", "L", "D", "I", "c"}

const minDescriptionWords = 100

// ValidateEntry checks a generated entry against the tracker schema and
// returns every violation found, not just the first. Empty result = valid.
func ValidateEntry(entry domain.Entry, category string) []string {
	var errs []string

	// Legislation keys its records by "id", the rest by "i".
	idField := "i"
	if category == domain.CategoryLegislation {
		idField = "id"
	}
	if _, ok := entry[idField]; !ok {
		errs = append(errs, fmt.Sprintf("missing required field: %s", idField))
	}

	for _, field := range requiredFields {
		if _, ok := entry[field]; !ok {
			errs = append(errs, fmt.Sprintf("missing required field: %s", field))
		}
	}

	if level := entry.String("L"); !slices.Contains(domain.ThreatLevels, level) {
		errs = append(errs, fmt.Sprintf("invalid threat level: %q", level))
	}

	if date := entry.String("d"); !datePattern.MatchString(date) {
		errs = append(errs, fmt.Sprintf("invalid date format: %q (expected YYYY-MM-DD)", date))
	}

	if admin := entry.String("a"); !slices.Contains(domain.Administrations, admin) {
		errs = append(errs, fmt.Sprintf("invalid administration: %q", admin))
	}

	if _, ok := entry["A"].([]any); !ok {
		if _, ok := entry["A"].([]string); !ok {
			errs = append(errs, "A (agencies) must be an array")
		}
	}
	if _, ok := entry["c"].([]any); !ok {
		if _, ok := entry["c"].([]string); !ok {
			errs = append(errs, "c (communities) must be an array")
		}
	}

	switch impact := entry["I"].(type) {
	case map[string]any:
		for community, block := range impact {
			data, ok := block.(map[string]any)
			if !ok {
				continue
			}
			for _, field := range domain.FourPFields {
				if _, ok := data[field]; !ok {
					errs = append(errs, fmt.Sprintf("impact %s missing 4P field: %s", community, field))
				}
			}
		}
	case nil:
	default:
		errs = append(errs, "I (impact) must be an object")
	}

	if words := len(strings.Fields(entry.String("D"))); words < minDescriptionWords {
		errs = append(errs, fmt.Sprintf("description too short: %d words (min %d)", words, minDescriptionWords))
	}

	title := entry.String("T")
	if entry.String("L") == domain.ThreatSevere && !strings.Contains(title, domain.SevereColorMarker) {
		errs = append(errs, fmt.Sprintf("SEVERE entries need the red (%s) color span in title", domain.SevereColorMarker))
	}
	if entry.String("L") == domain.ThreatProtective && !strings.Contains(title, domain.ProtectiveColorMarker) {
		errs = append(errs, fmt.Sprintf("PROTECTIVE entries need the green (%s) color span in title", domain.ProtectiveColorMarker))
	}

	return errs
}
