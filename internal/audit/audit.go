// Package audit re-parses the published page and checks word-count and
// structural invariants on existing entries.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"TrackerPipeline/internal/domain"
	"TrackerPipeline/internal/jsonx"
	"TrackerPipeline/internal/processing"
)

// DefaultMinWords is the minimum word count expected of one community's
// impact block.
const DefaultMinWords = 250

var dataConstPattern = regexp.MustCompile(`const\s+DATA\s*=`)

// Options select what to audit.
type Options struct {
	PagePath string
	From     string // YYYY-MM-DD inclusive, "" = no lower bound
	To       string // YYYY-MM-DD inclusive, "" = no upper bound
	MinWords int    // 0 = DefaultMinWords
}

// CommunityFinding is the audit result for one community block of one
// entry's impact analysis.
type CommunityFinding struct {
	EntryID   string
	Date      string
	Title     string
	Category  string
	Community string
	Words     int
	Fields    map[string]int // words per 4P field
	Notes     []string
	Flagged   bool
}

// EntryRef identifies an entry without auditing detail.
type EntryRef struct {
	EntryID  string
	Date     string
	Title    string
	Category string
}

// Report is the full audit outcome.
type Report struct {
	TotalEntries  int
	InRange       int
	MinWords      int
	Communities   []CommunityFinding // ascending by word count
	WithoutImpact []EntryRef
	MetaTotal     int
	ActualTotal   int
}

// Run loads the page, extracts the embedded DATA object, and audits every
// entry in the date range.
func Run(opts Options) (*Report, error) {
	raw, err := os.ReadFile(opts.PagePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", opts.PagePath, err)
	}

	doc, err := ExtractData(string(raw))
	if err != nil {
		return nil, err
	}
	return Audit(doc, opts), nil
}

// ExtractData pulls the tracker document out of the page's inline script.
func ExtractData(html string) (*domain.Document, error) {
	page, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var script string
	page.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if dataConstPattern.MatchString(text) {
			script = text
			return false
		}
		return true
	})
	if script == "" {
		return nil, fmt.Errorf("no script with a DATA constant found")
	}

	loc := dataConstPattern.FindStringIndex(script)
	payload, err := jsonx.Extract(script[loc[1]:])
	if err != nil {
		return nil, fmt.Errorf("extract DATA object: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("parse DATA object: %w", err)
	}
	return &doc, nil
}

// Audit walks every category and reports impact blocks below the word
// threshold, nested community objects, missing 4P fields, and entries
// without impact analysis at all. It also recounts the meta total.
func Audit(doc *domain.Document, opts Options) *Report {
	minWords := opts.MinWords
	if minWords <= 0 {
		minWords = DefaultMinWords
	}

	report := &Report{MinWords: minWords}
	if doc.Meta != nil {
		report.MetaTotal = doc.Meta.Total
	}

	for _, category := range domain.Categories {
		for _, entry := range doc.Category(category) {
			report.TotalEntries++
			report.ActualTotal++

			date := entry.String("d")
			if date == "" || !inRange(date, opts.From, opts.To) {
				continue
			}
			report.InRange++

			ref := EntryRef{
				EntryID:  entry.ID(),
				Date:     date,
				Title:    processing.StripHTML(entry.String("T")),
				Category: category,
			}

			impact, ok := entry["I"].(map[string]any)
			if !ok || len(impact) == 0 {
				report.WithoutImpact = append(report.WithoutImpact, ref)
				continue
			}

			for community, block := range impact {
				report.Communities = append(report.Communities,
					auditCommunity(ref, community, block, minWords))
			}
		}
	}

	// Most problematic first.
	sort.SliceStable(report.Communities, func(i, j int) bool {
		return report.Communities[i].Words < report.Communities[j].Words
	})
	return report
}

// auditCommunity counts words across the 4P fields of one community block,
// noting missing fields and nested community objects.
func auditCommunity(ref EntryRef, community string, block any, minWords int) CommunityFinding {
	finding := CommunityFinding{
		EntryID:   ref.EntryID,
		Date:      ref.Date,
		Title:     ref.Title,
		Category:  ref.Category,
		Community: community,
		Fields:    map[string]int{},
	}

	data, ok := block.(map[string]any)
	if !ok {
		finding.Notes = append(finding.Notes, "community data is not an object")
		finding.Flagged = true
		return finding
	}

	for _, field := range domain.FourPFields {
		value, present := data[field]
		if !present {
			finding.Notes = append(finding.Notes, fmt.Sprintf("missing %q", field))
			continue
		}
		switch v := value.(type) {
		case string:
			words := len(strings.Fields(v))
			finding.Fields[field] = words
			finding.Words += words
		case map[string]any:
			finding.Notes = append(finding.Notes, fmt.Sprintf("%q is a nested object, not text", field))
		default:
			finding.Notes = append(finding.Notes, fmt.Sprintf("%q is not text", field))
		}
	}

	// Any non-4P key is a community object nested one level too deep.
	var nested []string
	for key := range data {
		if !isFourP(key) {
			nested = append(nested, key)
		}
	}
	if len(nested) > 0 {
		sort.Strings(nested)
		finding.Notes = append(finding.Notes,
			fmt.Sprintf("nested communities skipped: %s", strings.Join(nested, ", ")))
	}

	finding.Flagged = finding.Words < minWords || len(finding.Notes) > 0
	return finding
}

func isFourP(key string) bool {
	for _, f := range domain.FourPFields {
		if f == key {
			return true
		}
	}
	return false
}

func inRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

// Render writes the human-readable audit report.
func (r *Report) Render(w io.Writer) {
	fmt.Fprintf(w, "entries scanned: %d, in range: %d, threshold: %d words\n",
		r.TotalEntries, r.InRange, r.MinWords)

	if r.MetaTotal != 0 && r.MetaTotal != r.ActualTotal {
		fmt.Fprintf(w, "META MISMATCH: meta.total=%d but counted %d entries\n",
			r.MetaTotal, r.ActualTotal)
	}

	for _, f := range r.Communities {
		status := "ok"
		if f.Flagged {
			status = fmt.Sprintf("UNDER %d", r.MinWords)
			if f.Words >= r.MinWords {
				status = "STRUCTURAL"
			}
		}
		fmt.Fprintf(w, "\n%s %s [%s] %s / %s: %d words [%s]\n",
			f.EntryID, f.Date, f.Category, clipTitle(f.Title), f.Community, f.Words, status)
		for _, field := range domain.FourPFields {
			fmt.Fprintf(w, "  %-9s %4d words\n", field, f.Fields[field])
		}
		for _, note := range f.Notes {
			fmt.Fprintf(w, "  note: %s\n", note)
		}
	}

	if len(r.WithoutImpact) > 0 {
		fmt.Fprintf(w, "\nentries in range without impact analysis:\n")
		for _, ref := range r.WithoutImpact {
			fmt.Fprintf(w, "  %s %s [%s] %s\n", ref.EntryID, ref.Date, ref.Category, clipTitle(ref.Title))
		}
	}
}

func clipTitle(t string) string {
	if len(t) <= 100 {
		return t
	}
	return t[:100] + "..."
}
