// Package websearch provides the search-engine client and the page fetcher
// used by the query fan-out stage.
package websearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/huyvu15/Agentic-search-company/internal/common/errors"
	"github.com/huyvu15/Agentic-search-company/internal/common/httpclient"
)

// Result is one candidate page from the search engine. Content is fetched
// separately by the Fetcher.
type Result struct {
	Title string
	URL   string
}

const defaultSearchURL = "https://lite.duckduckgo.com/lite/"

type SearchConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxResults int // default result count when a caller passes <= 0
}

// DuckDuckGo scrapes the DuckDuckGo lite HTML interface. The lite page is
// more stable for scraping than the full site.
type DuckDuckGo struct {
	baseURL    string
	maxResults int
	client     httpclient.Doer
}

func NewDuckDuckGo(cfg SearchConfig) *DuckDuckGo {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultSearchURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	return &DuckDuckGo{
		baseURL:    baseURL,
		maxResults: maxResults,
		client:     httpclient.New(timeout),
	}
}

// WithDoer replaces the underlying HTTP client. Used by tests.
func (d *DuckDuckGo) WithDoer(doer httpclient.Doer) *DuckDuckGo {
	d.client = doer
	return d
}

// Search returns up to maxResults candidate pages for the query.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}
	if maxResults <= 0 {
		maxResults = d.maxResults
	}

	formData := url.Values{}
	formData.Set("q", query)

	var resp *http.Response
	delay := 1 * time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, strings.NewReader(formData.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err = d.client.Do(req)
		if err != nil {
			return nil, apperrors.NewSearchError(query, err.Error())
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()

		// Back off and retry on 429, doubling the delay each time up to 30s.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewSearchError(query, fmt.Sprintf("http %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewSearchError(query, err.Error())
	}

	return parseHTMLResults(string(body), maxResults), nil
}

var (
	reResultLink    = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	reResultLinkAlt = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)
	reAnyLink       = regexp.MustCompile(`<a[^>]+href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	reTag           = regexp.MustCompile(`<[^>]+>`)
)

// parseHTMLResults extracts result links from the DuckDuckGo lite HTML.
func parseHTMLResults(html string, maxResults int) []Result {
	var results []Result

	matches := reResultLink.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		matches = reResultLinkAlt.FindAllStringSubmatch(html, -1)
	}

	for _, match := range matches {
		if len(match) < 3 {
			continue
		}

		urlStr := strings.TrimSpace(match[1])
		title := cleanHTML(strings.TrimSpace(match[2]))

		if urlStr == "" || title == "" {
			continue
		}

		results = append(results, Result{Title: title, URL: urlStr})
		if len(results) >= maxResults {
			break
		}
	}

	if len(results) == 0 {
		results = fallbackParse(html, maxResults)
	}

	return results
}

// fallbackParse scans for any external links when the result-link markup is
// not present.
func fallbackParse(html string, maxResults int) []Result {
	var results []Result

	seen := make(map[string]bool)
	for _, match := range reAnyLink.FindAllStringSubmatch(html, -1) {
		if len(match) < 3 {
			continue
		}

		urlStr := strings.TrimSpace(match[1])
		title := cleanHTML(strings.TrimSpace(match[2]))

		// Skip DuckDuckGo internal links
		if strings.Contains(urlStr, "duckduckgo.com") ||
			strings.HasPrefix(urlStr, "/") ||
			strings.HasPrefix(urlStr, "#") ||
			strings.HasPrefix(urlStr, "javascript:") {
			continue
		}

		// Skip if title is too short or looks like navigation
		if len(title) < 5 {
			continue
		}

		if seen[urlStr] {
			continue
		}
		seen[urlStr] = true

		results = append(results, Result{Title: title, URL: urlStr})
		if len(results) >= maxResults {
			break
		}
	}

	return results
}

// cleanHTML removes tags and decodes common entities.
func cleanHTML(s string) string {
	s = reTag.ReplaceAllString(s, "")

	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&nbsp;", " ")

	return strings.TrimSpace(s)
}
