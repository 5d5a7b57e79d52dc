// Package buzz fetches and parses the Yahoo fantasy-football Buzz Index
// page: the public listing of players with current roster add/drop counts.
//
// A fetch failure is an error, distinguishable from a page that currently
// lists zero trending players.
package buzz

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const baseURL = "https://football.fantasysports.yahoo.com/f1/buzzindex"

// PlayerRow is one parsed row of the Buzz Index table.
type PlayerRow struct {
	Name    string
	TeamPos string // "TEAM - POS", empty when the cell carries no suffix
	Adds    int
	Drops   int
	URL     string
}

// Client fetches the Buzz Index page with a browser-like header set and an
// outbound token-bucket rate limit.
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Buzz Index client with rate limiting.
func NewClient(userAgent string, timeout time.Duration, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// BuildURL builds the Buzz Index URL for a pinned date (YYYY-MM-DD). An
// empty date lets Yahoo default to the latest page.
func BuildURL(date string) string {
	u := baseURL + "?sort=BI_A&src=combined&bimtab=A&trendtab=O&pos=ALL"
	if date != "" {
		u += "&date=" + date
	}
	return u
}

// FetchRows fetches the page and returns the parsed player rows in page
// order. Errors cover the transport and non-200 statuses; an unrecognizable
// page parses to zero rows.
func (c *Client) FetchRows(ctx context.Context, date string) ([]PlayerRow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := BuildURL(date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch buzz index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("buzz index returned %d", resp.StatusCode)
	}

	rows, err := ParseRows(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse buzz index: %w", err)
	}
	c.logger.Debug("Fetched buzz index", "rows", len(rows), "date", dateOrLatest(date))
	return rows, nil
}

func dateOrLatest(date string) string {
	if date == "" {
		return "latest"
	}
	return date
}
