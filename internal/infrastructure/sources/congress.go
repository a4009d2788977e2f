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
	congressName    = "congress_gov"
	congressBaseURL = "https://api.congress.gov/v3"

	congressPageSize   = 100
	congressMaxResults = 500
)

// Congress fetches bills and resolutions updated since a date. Without an
// API key it degrades to zero items instead of failing the run.
type Congress struct {
	api     *apiClient
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

var _ source.Connector = (*Congress)(nil)

func NewCongress(apiKey string, limiter *ratelimit.Limiter, logger *slog.Logger) *Congress {
	return &Congress{
		api:     newAPIClient(limiter, logger),
		baseURL: congressBaseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

func (c *Congress) Name() string { return congressName }

func (c *Congress) Category(domain.Item) string { return domain.CategoryLegislation }

type congressAction struct {
	Text       string `json:"text"`
	ActionDate string `json:"actionDate"`
}

type congressBill struct {
	Type          string          `json:"type"`
	Number        string          `json:"number"`
	Congress      json.Number     `json:"congress"`
	Title         string          `json:"title"`
	UpdateDate    string          `json:"updateDate"`
	LatestAction  *congressAction `json:"latestAction"`
	OriginChamber string          `json:"originChamber"`
	URL           string          `json:"url"`
}

type congressPage struct {
	Bills []congressBill `json:"bills"`
}

// FetchSince pages through /bill ordered by update date, stopping at the
// result cap or a short page.
func (c *Congress) FetchSince(ctx context.Context, since string) ([]domain.Item, error) {
	if c.apiKey == "" {
		c.logger.Warn("api key not configured, skipping source", "source", congressName)
		return nil, nil
	}

	var items []domain.Item
	offset := 0

	for len(items) < congressMaxResults {
		params := url.Values{}
		params.Set("fromDateTime", since+"T00:00:00Z")
		params.Set("sort", "updateDate+desc")
		params.Set("limit", fmt.Sprint(congressPageSize))
		params.Set("offset", fmt.Sprint(offset))
		params.Set("api_key", c.apiKey)

		var resp congressPage
		if err := c.api.getJSON(ctx, congressName, c.baseURL+"/bill", params, nil, &resp); err != nil {
			return nil, err
		}
		if len(resp.Bills) == 0 {
			break
		}

		for _, bill := range resp.Bills {
			var latestAction string
			if bill.LatestAction != nil {
				latestAction = bill.LatestAction.Text
			}
			items = append(items, domain.Item{
				Source:        congressName,
				SourceID:      fmt.Sprintf("%s%s-%s", bill.Type, bill.Number, bill.Congress),
				Title:         bill.Title,
				Date:          truncateDate(bill.UpdateDate),
				LatestAction:  latestAction,
				BillType:      bill.Type,
				BillNumber:    bill.Number,
				Congress:      bill.Congress.String(),
				OriginChamber: bill.OriginChamber,
				URL:           bill.URL,
			})
		}

		if len(resp.Bills) < congressPageSize {
			break
		}
		offset += congressPageSize
	}

	if len(items) >= congressMaxResults {
		c.logger.Warn("result cap reached, some bills skipped",
			"source", congressName, "cap", congressMaxResults)
	}
	c.logger.Info("fetched bills", "source", congressName, "count", len(items), "since", since)
	return items, nil
}
