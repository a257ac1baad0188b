// Package fanout runs every search query through the search client and
// fetches each candidate page, aggregating results in order.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/huyvu15/Agentic-search-company/internal/common/logger"
	"github.com/huyvu15/Agentic-search-company/internal/websearch"
)

const StageName = "fanout"

// Searcher is the slice of the search client the fan-out needs.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error)
}

// Fetcher loads a page and returns its extracted text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// PageCache is an optional cache for extracted page text.
type PageCache interface {
	Get(ctx context.Context, url string) (string, bool)
	Set(ctx context.Context, url string, text string)
}

type Handler struct {
	config   *Config
	searcher Searcher
	fetcher  Fetcher
	cache    PageCache
	logger   logger.Logger
}

// NewHandler wires the fan-out. cache may be nil, in which case every
// candidate page is fetched.
func NewHandler(config *Config, searcher Searcher, fetcher Fetcher, cache PageCache, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		searcher: searcher,
		fetcher:  fetcher,
		cache:    cache,
		logger: log.With(map[string]interface{}{
			"stage": StageName,
		}),
	}
}

// Execute searches every query and fetches each candidate page. It
// never returns an error: a failed search contributes zero results and
// a failed fetch keeps the result with nil Content. Ordering is query
// order, then per-query rank order.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Queries) == 0 {
		return &Output{Results: []SearchResult{}}, nil
	}

	results := h.collectCandidates(ctx, input)
	h.fetchContents(ctx, results)

	h.logger.Info("fan-out complete", map[string]interface{}{
		"queryCount":  len(input.Queries),
		"resultCount": len(results),
	})

	return &Output{Results: results}, nil
}

func (h *Handler) collectCandidates(ctx context.Context, input *Input) []SearchResult {
	results := make([]SearchResult, 0, len(input.Queries)*input.MaxResults)
	seen := make(map[string]bool)

	for _, query := range input.Queries {
		candidates, err := h.searcher.Search(ctx, query, input.MaxResults)
		if err != nil {
			h.logger.Warn("search failed for query", map[string]interface{}{
				"query": query,
				"error": err.Error(),
			})
			continue
		}

		for _, c := range candidates {
			if h.config.DedupeByURL && c.URL != "" {
				if seen[c.URL] {
					continue
				}
				seen[c.URL] = true
			}
			results = append(results, SearchResult{Title: optional(c.Title), URL: optional(c.URL)})
			if h.config.MaxTotalResults > 0 && len(results) >= h.config.MaxTotalResults {
				return results
			}
		}
	}

	return results
}

// fetchContents fills in Content for each candidate in place. Fetches
// run concurrently but results keep their slice positions, so ordering
// is unaffected.
func (h *Handler) fetchContents(ctx context.Context, results []SearchResult) {
	group, groupCtx := errgroup.WithContext(ctx)
	limit := h.config.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}
	group.SetLimit(limit)

	for i := range results {
		if results[i].URL == nil {
			continue
		}
		i := i
		group.Go(func() error {
			results[i].Content = h.fetchOne(groupCtx, *results[i].URL)
			return nil
		})
	}

	// Workers always return nil; Wait just blocks until done.
	_ = group.Wait()
}

// optional maps the engine's empty string to a nil field.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (h *Handler) fetchOne(ctx context.Context, url string) *string {
	if h.cache != nil {
		if text, ok := h.cache.Get(ctx, url); ok {
			return &text
		}
	}

	text, err := h.fetcher.Fetch(ctx, url)
	if err != nil {
		h.logger.Warn("page fetch failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return nil
	}
	if text == "" {
		return nil
	}

	if h.cache != nil {
		h.cache.Set(ctx, url, text)
	}
	return &text
}
