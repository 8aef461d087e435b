package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"seongsu-popup-collector/internal/models"
)

// WordPressConfig holds connection settings for the CMS
type WordPressConfig struct {
	BaseURL    string // site root, e.g. https://popup.example.com
	Username   string
	Password   string // application password
	CategoryID int    // category assigned to popup store posts
}

// WordPressClient publishes merged events to the CMS as posts
type WordPressClient struct {
	http       *resty.Client
	apiBase    string
	categoryID int
	logger     zerolog.Logger
}

// PublishResult tallies the outcome of a publishing run
type PublishResult struct {
	Success int `json:"success"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

type wpPost struct {
	ID    int `json:"id"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Meta map[string]interface{} `json:"meta"`
}

// NewWordPressClient creates a publisher for the given site
func NewWordPressClient(cfg WordPressConfig, logger zerolog.Logger) *WordPressClient {
	client := resty.New().SetBasicAuth(cfg.Username, cfg.Password)

	categoryID := cfg.CategoryID
	if categoryID == 0 {
		categoryID = 8 // default popup store category
	}

	return &WordPressClient{
		http:       client,
		apiBase:    strings.TrimSuffix(cfg.BaseURL, "/") + "/wp-json/wp/v2",
		categoryID: categoryID,
		logger:     logger,
	}
}

// EventExists checks whether a post with the same title and start date is
// already on the site.
func (w *WordPressClient) EventExists(ctx context.Context, event *models.Event) (bool, error) {
	if !event.Period.HasStart() {
		return false, nil
	}
	startDate := event.Period.StartDate.Format("2006-01-02")

	var posts []wpPost
	resp, err := w.http.R().
		SetContext(ctx).
		SetQueryParam("search", strings.ReplaceAll(event.Title, `"`, "")).
		SetResult(&posts).
		Get(w.apiBase + "/posts")
	if err != nil {
		return false, fmt.Errorf("post search failed: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("post search returned status %d", resp.StatusCode())
	}

	for _, post := range posts {
		if post.Title.Rendered != event.Title {
			continue
		}
		if date, ok := post.Meta["event_start_date"].(string); ok && date == startDate {
			return true, nil
		}
	}
	return false, nil
}

// CreatePost publishes one event and returns the new post ID
func (w *WordPressClient) CreatePost(ctx context.Context, event *models.Event) (int, error) {
	startDate, endDate := "", ""
	if event.Period.HasStart() {
		startDate = event.Period.StartDate.Format("2006-01-02")
	}
	if event.Period != nil && event.Period.EndDate != nil {
		endDate = event.Period.EndDate.Format("2006-01-02")
	}

	body := map[string]interface{}{
		"title":      event.Title + formatPeriodSuffix(event.Period),
		"content":    formatPostContent(event),
		"status":     "publish",
		"categories": []int{w.categoryID},
		"meta": map[string]string{
			"event_start_date": startDate,
			"event_end_date":   endDate,
			"event_place":      event.Location.Place,
		},
	}

	var created wpPost
	resp, err := w.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&created).
		Post(w.apiBase + "/posts")
	if err != nil {
		return 0, fmt.Errorf("post creation failed: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("post creation returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return created.ID, nil
}

// formatPeriodSuffix renders " (MM/DD~MM/DD)" for the post title
func formatPeriodSuffix(period *models.EventPeriod) string {
	if !period.HasStart() {
		return ""
	}
	suffix := " (" + period.StartDate.Format("01/02") + "~"
	if period.EndDate != nil {
		suffix += period.EndDate.Format("01/02")
	}
	return suffix + ")"
}

// formatPostContent renders the event as the HTML body of a post
func formatPostContent(event *models.Event) string {
	var b strings.Builder

	b.WriteString("<h2>행사 정보</h2>\n<ul>\n")
	if event.Brand != "" {
		fmt.Fprintf(&b, "<li>브랜드: %s</li>\n", event.Brand)
	}
	if event.Period.HasStart() {
		period := event.Period.StartDate.Format("2006-01-02")
		if event.Period.EndDate != nil {
			period += " ~ " + event.Period.EndDate.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "<li>기간: %s</li>\n", period)
	}
	fmt.Fprintf(&b, "<li>장소: %s</li>\n", event.Location.Place)
	if event.Location.Address != models.Undetermined {
		fmt.Fprintf(&b, "<li>주소: %s</li>\n", event.Location.Address)
	}
	if event.Location.Transit != "" {
		fmt.Fprintf(&b, "<li>교통: %s</li>\n", event.Location.Transit)
	}
	if event.OperatingHours.Start != "" {
		fmt.Fprintf(&b, "<li>운영시간: %s ~ %s</li>\n", event.OperatingHours.Start, event.OperatingHours.End)
	}
	b.WriteString("</ul>\n")

	if len(event.Details.Introduction) > 0 {
		b.WriteString("<h2>소개</h2>\n")
		for _, paragraph := range event.Details.Introduction {
			fmt.Fprintf(&b, "<p>%s</p>\n", paragraph)
		}
	}
	if len(event.Details.Contents) > 0 {
		b.WriteString("<h2>내용</h2>\n<ul>\n")
		for _, item := range event.Details.Contents {
			fmt.Fprintf(&b, "<li>%s</li>\n", item)
		}
		b.WriteString("</ul>\n")
	}
	if len(event.Details.VisitorInfo) > 0 {
		b.WriteString("<h2>방문 안내</h2>\n<ul>\n")
		for _, item := range event.Details.VisitorInfo {
			fmt.Fprintf(&b, "<li>%s</li>\n", item)
		}
		b.WriteString("</ul>\n")
	}

	if len(event.SourceURLs) > 0 {
		b.WriteString("<h2>출처</h2>\n<ul>\n")
		for _, url := range event.SourceURLs {
			fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`+"\n", url, url)
		}
		b.WriteString("</ul>\n")
	}

	return b.String()
}
