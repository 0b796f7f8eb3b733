// Package travelguide looks up Wikivoyage travel guides and Wikipedia
// articles through the MediaWiki action API.
package travelguide

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"road-trip-planner/internal/metrics"
)

const (
	DefaultWikivoyageURL = "https://en.wikivoyage.org/w/api.php"
	DefaultWikipediaURL  = "https://en.wikipedia.org/w/api.php"
	DefaultUserAgent     = "RoadTripPlanner/1.0 (Educational road trip planning tool)"

	maxSummaryLength = 300
)

// Article is a Wikipedia article with a short plain-text summary
type Article struct {
	Title   string
	URL     string
	Summary string
}

// Options configures the client. Zero values use defaults.
type Options struct {
	WikivoyageURL     string
	WikipediaURL      string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client talks to Wikivoyage and Wikipedia. Both share one rate limiter.
type Client struct {
	wikivoyageURL string
	wikipediaURL  string
	userAgent     string
	httpClient    *http.Client
	limiter       *rate.Limiter
}

func New(opts Options) *Client {
	if opts.WikivoyageURL == "" {
		opts.WikivoyageURL = DefaultWikivoyageURL
	}
	if opts.WikipediaURL == "" {
		opts.WikipediaURL = DefaultWikipediaURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}

	return &Client{
		wikivoyageURL: opts.WikivoyageURL,
		wikipediaURL:  opts.WikipediaURL,
		userAgent:     opts.UserAgent,
		httpClient:    &http.Client{Timeout: opts.Timeout},
		limiter:       rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}
}

type queryResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
		Pages []struct {
			Title   string `json:"title"`
			FullURL string `json:"fullurl"`
			Missing bool   `json:"missing"`
			Invalid bool   `json:"invalid"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

func (c *Client) query(ctx context.Context, site, operation, endpoint string, params url.Values) (resp *queryResponse, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.ObserveProvider(site, operation, start, err) }()

	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, string(body))
	}

	var decoded queryResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", site, err)
	}
	return &decoded, nil
}

// Lookup returns the Wikivoyage URL for a place, or "" when there is no
// guide. Only the part before the first comma is looked up, so
// "Nashville, TN" finds the "Nashville" guide.
func (c *Client) Lookup(ctx context.Context, placeName string) (string, error) {
	city := strings.TrimSpace(strings.SplitN(placeName, ",", 2)[0])
	if city == "" {
		return "", nil
	}

	params := url.Values{}
	params.Set("titles", city)
	params.Set("prop", "info")
	params.Set("inprop", "url")

	resp, err := c.query(ctx, "wikivoyage", "lookup", c.wikivoyageURL, params)
	if err != nil {
		return "", err
	}
	if len(resp.Query.Pages) == 0 {
		return "", nil
	}
	page := resp.Query.Pages[0]
	if page.Missing || page.Invalid {
		slog.Debug("no travel guide", "place", placeName)
		return "", nil
	}
	return page.FullURL, nil
}

// Article finds the best matching Wikipedia article for query. It returns
// nil without error when the search has no hits.
func (c *Client) Article(ctx context.Context, query string) (*Article, error) {
	params := url.Values{}
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "1")

	resp, err := c.query(ctx, "wikipedia", "search", c.wikipediaURL, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Query.Search) == 0 {
		return nil, nil
	}
	title := resp.Query.Search[0].Title

	params = url.Values{}
	params.Set("titles", title)
	params.Set("prop", "extracts|info")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("inprop", "url")

	resp, err = c.query(ctx, "wikipedia", "extract", c.wikipediaURL, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Query.Pages) == 0 || resp.Query.Pages[0].Missing {
		return nil, nil
	}

	page := resp.Query.Pages[0]
	return &Article{
		Title:   page.Title,
		URL:     page.FullURL,
		Summary: Summarize(page.Extract),
	}, nil
}

// Summarize keeps the first two sentences of an extract, capped at 300
// characters with a trailing ellipsis.
func Summarize(extract string) string {
	extract = strings.TrimSpace(extract)
	sentences := strings.Split(extract, ". ")

	summary := extract
	if len(sentences) >= 2 {
		summary = strings.Join(sentences[:2], ". ")
		if !strings.HasSuffix(summary, ".") {
			summary += "."
		}
	}

	if utf8.RuneCountInString(summary) > maxSummaryLength {
		runes := []rune(summary)
		summary = string(runes[:maxSummaryLength]) + "..."
	}
	return summary
}
