package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"TrackerPipeline/internal/domain"
	"TrackerPipeline/internal/ratelimit"
	"TrackerPipeline/internal/source"
)

const (
	courtListenerName    = "courtlistener"
	courtListenerBaseURL = "https://www.courtlistener.com/api/rest/v4"
	courtListenerSiteURL = "https://www.courtlistener.com"

	clResultsPerQuery = 20
)

// CourtListener searches federal court opinions with a fixed query list.
// A failed query is logged and skipped so one bad search never loses the
// rest.
type CourtListener struct {
	api     *apiClient
	baseURL string
	siteURL string
	token   string
	queries []string
	logger  *slog.Logger
}

var _ source.Connector = (*CourtListener)(nil)

func NewCourtListener(token string, queries []string, limiter *ratelimit.Limiter, logger *slog.Logger) *CourtListener {
	return &CourtListener{
		api:     newAPIClient(limiter, logger),
		baseURL: courtListenerBaseURL,
		siteURL: courtListenerSiteURL,
		token:   token,
		queries: queries,
		logger:  logger,
	}
}

func (c *CourtListener) Name() string { return courtListenerName }

func (c *CourtListener) Category(domain.Item) string { return domain.CategoryLitigation }

type clOpinion struct {
	ID           json.Number `json:"id"`
	CaseName     string      `json:"caseName"`
	Court        string      `json:"court"`
	DateFiled    string      `json:"dateFiled"`
	DocketNumber string      `json:"docketNumber"`
	Snippet      string      `json:"snippet"`
	Citation     []string    `json:"citation"`
	AbsoluteURL  string      `json:"absolute_url"`
	Status       string      `json:"status"`
}

type clSearchPage struct {
	Results []clOpinion `json:"results"`
}

// FetchSince runs each configured query and merges the results, dropping
// opinions already seen under an earlier query.
func (c *CourtListener) FetchSince(ctx context.Context, since string) ([]domain.Item, error) {
	var items []domain.Item
	seen := map[string]bool{}

	var headers map[string]string
	if c.token != "" {
		headers = map[string]string{"Authorization": "Token " + c.token}
	}

	for _, query := range c.queries {
		params := url.Values{}
		params.Set("q", query)
		params.Set("filed_after", since)
		params.Set("order_by", "dateFiled desc")
		params.Set("type", "o")

		var resp clSearchPage
		if err := c.api.getJSON(ctx, courtListenerName, c.baseURL+"/search/", params, headers, &resp); err != nil {
			c.logger.Warn("search query failed, skipping",
				"source", courtListenerName, "query", query, "error", err)
			continue
		}

		results := resp.Results
		if len(results) > clResultsPerQuery {
			results = results[:clResultsPerQuery]
		}
		for _, op := range results {
			id := op.ID.String()
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			items = append(items, domain.Item{
				Source:       courtListenerName,
				SourceID:     id,
				Title:        op.CaseName,
				Date:         truncateDate(op.DateFiled),
				Snippet:      op.Snippet,
				Court:        op.Court,
				DocketNumber: op.DocketNumber,
				Citations:    op.Citation,
				CaseStatus:   op.Status,
				URL:          fmt.Sprintf("%s%s", c.siteURL, op.AbsoluteURL),
			})
		}
	}

	c.logger.Info("fetched opinions", "source", courtListenerName, "count", len(items), "since", since)
	return items, nil
}
