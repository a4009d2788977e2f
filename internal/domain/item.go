package domain

// Item is one fetched unit of news/legal/legislative/regulatory content.
// Items live for a single run; only SourceID survives into run state.
type Item struct {
	Source   string `json:"source"`
	SourceID string `json:"source_id"`
	Title    string `json:"title"`
	Date     string `json:"date"` // YYYY-MM-DD

	Abstract     string `json:"abstract,omitempty"`
	Description  string `json:"description,omitempty"`
	Content      string `json:"content,omitempty"`
	Snippet      string `json:"snippet,omitempty"`
	Action       string `json:"action,omitempty"`
	LatestAction string `json:"latest_action,omitempty"`

	// Source-specific metadata.
	Agencies      []string `json:"agencies,omitempty"`
	DocType       string   `json:"doc_type,omitempty"`
	Subtype       string   `json:"subtype,omitempty"`
	EONumber      string   `json:"eo_number,omitempty"`
	BillType      string   `json:"bill_type,omitempty"`
	BillNumber    string   `json:"bill_number,omitempty"`
	Congress      string   `json:"congress,omitempty"`
	OriginChamber string   `json:"origin_chamber,omitempty"`
	Court         string   `json:"court,omitempty"`
	DocketNumber  string   `json:"docket_number,omitempty"`
	Citations     []string `json:"citation,omitempty"`
	CaseStatus    string   `json:"status,omitempty"`
	SourceName    string   `json:"source_name,omitempty"`
	Author        string   `json:"author,omitempty"`
	URL           string   `json:"url,omitempty"`
	PDFURL        string   `json:"pdf_url,omitempty"`

	// Attached by the pipeline, never fetched.
	KeywordScore int     `json:"_keyword_score,omitempty"`
	AICategory   string  `json:"_ai_category,omitempty"`
	AIThreat     string  `json:"_ai_threat,omitempty"`
	AIReason     string  `json:"_ai_reason,omitempty"`
	AIConfidence float64 `json:"_ai_confidence,omitempty"`
}

// SearchableText concatenates every text-bearing field for keyword scans.
func (it Item) SearchableText() string {
	return it.Title + " " + it.Abstract + " " + it.Description + " " +
		it.Snippet + " " + it.Content + " " + it.Action + " " + it.LatestAction
}

// ScreenVerdict is the tier-1 relevance decision parsed from the LLM reply.
type ScreenVerdict struct {
	Relevant    bool    `json:"relevant"`
	Confidence  float64 `json:"confidence"`
	Category    string  `json:"category"`
	ThreatLevel string  `json:"threat_level"`
	BriefReason string  `json:"brief_reason"`
}

// QualityVerdict is the tier-3 quality opinion on an entry that already
// failed schema validation.
type QualityVerdict struct {
	Valid    bool     `json:"valid"`
	Issues   []string `json:"issues"`
	Severity string   `json:"severity"`
}

// SeverityMajor is the only quality verdict that discards an entry.
const SeverityMajor = "major"
