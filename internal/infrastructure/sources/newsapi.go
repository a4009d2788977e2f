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
	newsAPIName    = "news_api"
	newsAPIBaseURL = "https://newsapi.org/v2"

	newsPageSize        = 50
	newsResultsPerQuery = 10
)

// NewsAPI searches breaking news coverage with a fixed query list. The
// tracker category is left empty so screening decides it. Without an API
// key the connector degrades to zero items.
type NewsAPI struct {
	api     *apiClient
	baseURL string
	apiKey  string
	queries []string
	logger  *slog.Logger
}

var _ source.Connector = (*NewsAPI)(nil)

func NewNewsAPI(apiKey string, queries []string, limiter *ratelimit.Limiter, logger *slog.Logger) *NewsAPI {
	return &NewsAPI{
		api:     newAPIClient(limiter, logger),
		baseURL: newsAPIBaseURL,
		apiKey:  apiKey,
		queries: queries,
		logger:  logger,
	}
}

func (n *NewsAPI) Name() string { return newsAPIName }

func (n *NewsAPI) Category(domain.Item) string { return "" }

type newsSource struct {
	Name string `json:"name"`
}

type newsArticle struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	PublishedAt string     `json:"publishedAt"`
	Source      newsSource `json:"source"`
	URL         string     `json:"url"`
	Author      string     `json:"author"`
}

type newsSearchPage struct {
	Articles []newsArticle `json:"articles"`
}

// FetchSince runs each configured query, keeping the first
// newsResultsPerQuery articles per query and deduplicating by URL.
func (n *NewsAPI) FetchSince(ctx context.Context, since string) ([]domain.Item, error) {
	if n.apiKey == "" {
		n.logger.Warn("api key not configured, skipping source", "source", newsAPIName)
		return nil, nil
	}

	var items []domain.Item
	seen := map[string]bool{}

	for _, query := range n.queries {
		params := url.Values{}
		params.Set("q", query)
		params.Set("from", since)
		params.Set("sortBy", "publishedAt")
		params.Set("language", "en")
		params.Set("pageSize", fmt.Sprint(newsPageSize))
		params.Set("apiKey", n.apiKey)

		var resp newsSearchPage
		if err := n.api.getJSON(ctx, newsAPIName, n.baseURL+"/everything", params, nil, &resp); err != nil {
			n.logger.Warn("search query failed, skipping",
				"source", newsAPIName, "query", query, "error", err)
			continue
		}

		articles := resp.Articles
		if len(articles) > newsResultsPerQuery {
			articles = articles[:newsResultsPerQuery]
		}
		for _, a := range articles {
			if a.URL == "" || seen[a.URL] {
				continue
			}
			seen[a.URL] = true
			items = append(items, domain.Item{
				Source:      newsAPIName,
				SourceID:    a.URL,
				Title:       a.Title,
				Date:        truncateDate(a.PublishedAt),
				Description: a.Description,
				Content:     a.Content,
				SourceName:  a.Source.Name,
				Author:      a.Author,
				URL:         a.URL,
			})
		}
	}

	n.logger.Info("fetched articles", "source", newsAPIName, "count", len(items), "since", since)
	return items, nil
}
