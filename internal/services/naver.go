package services

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"seongsu-popup-collector/internal/models"
)

const naverSearchURL = "https://openapi.naver.com/v1/search/blog.json"

// Naver caps a single page at 100 results.
const naverMaxDisplay = 100

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// NaverConfig holds credentials and overrides for the Naver search API
type NaverConfig struct {
	ClientID     string
	ClientSecret string
	APIURL       string // override for tests; defaults to the blog search endpoint
}

// NaverClient collects blog posts from the Naver search API
type NaverClient struct {
	http   *resty.Client
	apiURL string
	logger zerolog.Logger
}

type naverSearchResponse struct {
	Total int         `json:"total"`
	Items []naverItem `json:"items"`
}

type naverItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	PostDate    string `json:"postdate"`
	BloggerName string `json:"bloggername"`
}

// NewNaverClient creates a search client with the given credentials
func NewNaverClient(cfg NaverConfig, logger zerolog.Logger) *NaverClient {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = naverSearchURL
	}

	client := resty.New().
		SetHeader("X-Naver-Client-Id", cfg.ClientID).
		SetHeader("X-Naver-Client-Secret", cfg.ClientSecret)

	return &NaverClient{
		http:   client,
		apiURL: apiURL,
		logger: logger,
	}
}

// Search fetches up to maxResults blog posts for the keyword, paging as
// needed, and returns them as cleaned raw records.
func (n *NaverClient) Search(ctx context.Context, keyword string, maxResults int, sort string) ([]models.RawRecord, error) {
	if maxResults <= 0 {
		maxResults = naverMaxDisplay
	}
	display := maxResults
	if display > naverMaxDisplay {
		display = naverMaxDisplay
	}

	var records []models.RawRecord
	for start := 1; len(records) < maxResults; start += display {
		var page naverSearchResponse
		resp, err := n.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"query":   keyword,
				"display": strconv.Itoa(display),
				"start":   strconv.Itoa(start),
				"sort":    sort,
			}).
			SetResult(&page).
			Get(n.apiURL)
		if err != nil {
			return records, fmt.Errorf("naver search request failed: %w", err)
		}
		if resp.IsError() {
			return records, fmt.Errorf("naver search returned status %d: %s", resp.StatusCode(), resp.String())
		}

		if len(page.Items) == 0 {
			break
		}
		for _, item := range page.Items {
			records = append(records, n.extractRecord(item))
			if len(records) == maxResults {
				break
			}
		}
		if len(page.Items) < display {
			break
		}
	}

	n.logger.Info().Str("keyword", keyword).Int("records", len(records)).Msg("collected search results")
	return records, nil
}

// extractRecord cleans a search result item into a raw record: HTML markup
// in titles and descriptions is markup from the search API, not content.
func (n *NaverClient) extractRecord(item naverItem) models.RawRecord {
	return models.RawRecord{
		Title:       stripHTML(item.Title),
		Description: stripHTML(item.Description),
		Link:        item.Link,
		Source:      "naver_blog",
		PublishedAt: item.PostDate,
		BloggerName: item.BloggerName,
	}
}

func stripHTML(s string) string {
	return html.UnescapeString(htmlTagPattern.ReplaceAllString(s, ""))
}
