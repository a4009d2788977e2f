package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"TrackerPipeline/internal/domain"
	"TrackerPipeline/internal/ratelimit"
	"TrackerPipeline/internal/source"
)

const (
	federalRegisterName    = "federal_register"
	federalRegisterBaseURL = "https://www.federalregister.gov/api/v1"

	frPerPage  = 100
	frMaxPages = 10
)

// All actionable federal document types, no agency filter.
var frDocTypes = []string{"PRESDOCU", "RULE", "PRORULE", "NOTICE"}

var frFields = []string{
	"document_number", "title", "type", "abstract", "publication_date",
	"agencies", "action", "html_url", "pdf_url",
	"executive_order_number", "subtype",
}

// FederalRegister fetches executive actions, agency rules, and notices.
// The API needs no key.
type FederalRegister struct {
	api     *apiClient
	baseURL string
	logger  *slog.Logger
}

var _ source.Connector = (*FederalRegister)(nil)

func NewFederalRegister(limiter *ratelimit.Limiter, logger *slog.Logger) *FederalRegister {
	return &FederalRegister{
		api:     newAPIClient(limiter, logger),
		baseURL: federalRegisterBaseURL,
		logger:  logger,
	}
}

func (f *FederalRegister) Name() string { return federalRegisterName }

// Category maps presidential documents to executive orders; everything
// else is an agency action.
func (f *FederalRegister) Category(item domain.Item) string {
	if item.DocType == "PRESDOCU" {
		return domain.CategoryExecutiveOrders
	}
	return domain.CategoryAgencyActions
}

type frAgency struct {
	Name string `json:"name"`
}

type frDocument struct {
	DocumentNumber       string     `json:"document_number"`
	Title                string     `json:"title"`
	Type                 string     `json:"type"`
	Subtype              string     `json:"subtype"`
	Abstract             string     `json:"abstract"`
	PublicationDate      string     `json:"publication_date"`
	Agencies             []frAgency `json:"agencies"`
	Action               string     `json:"action"`
	ExecutiveOrderNumber string     `json:"executive_order_number"`
	HTMLURL              string     `json:"html_url"`
	PDFURL               string     `json:"pdf_url"`
}

type frPage struct {
	Results    []frDocument `json:"results"`
	TotalPages int          `json:"total_pages"`
}

// FetchSince walks documents.json newest-first, up to frMaxPages pages.
func (f *FederalRegister) FetchSince(ctx context.Context, since string) ([]domain.Item, error) {
	var items []domain.Item

	for page := 1; page <= frMaxPages; page++ {
		params := url.Values{}
		params.Set("conditions[publication_date][gte]", since)
		for _, t := range frDocTypes {
			params.Add("conditions[type][]", t)
		}
		for _, field := range frFields {
			params.Add("fields[]", field)
		}
		params.Set("per_page", fmt.Sprint(frPerPage))
		params.Set("page", fmt.Sprint(page))
		params.Set("order", "newest")

		var resp frPage
		if err := f.api.getJSON(ctx, federalRegisterName, f.baseURL+"/documents.json", params, nil, &resp); err != nil {
			return nil, err
		}
		if len(resp.Results) == 0 {
			break
		}

		for _, doc := range resp.Results {
			agencies := make([]string, 0, len(doc.Agencies))
			for _, a := range doc.Agencies {
				if a.Name != "" {
					agencies = append(agencies, a.Name)
				}
			}
			items = append(items, domain.Item{
				Source:   federalRegisterName,
				SourceID: doc.DocumentNumber,
				Title:    doc.Title,
				Date:     doc.PublicationDate,
				Abstract: doc.Abstract,
				Action:   doc.Action,
				Agencies: agencies,
				DocType:  doc.Type,
				Subtype:  doc.Subtype,
				EONumber: doc.ExecutiveOrderNumber,
				URL:      doc.HTMLURL,
				PDFURL:   doc.PDFURL,
			})
		}

		if page >= resp.TotalPages {
			break
		}
		if page == frMaxPages {
			f.logger.Warn("page cap reached, some documents skipped",
				"source", federalRegisterName, "pages", frMaxPages)
		}
	}

	f.logger.Info("fetched documents", "source", federalRegisterName, "count", len(items), "since", since)
	return items, nil
}
