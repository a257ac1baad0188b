package fanout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyvu15/Agentic-search-company/internal/cache"
	"github.com/huyvu15/Agentic-search-company/internal/common/logger"
	"github.com/huyvu15/Agentic-search-company/internal/websearch"
)

type fakeSearcher struct {
	results map[string][]websearch.Result
	err     error
	calls   int32
}

func (s *fakeSearcher) Search(_ context.Context, query string, maxResults int) ([]websearch.Result, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	results := s.results[query]
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	text, ok := f.pages[url]
	if !ok {
		return "", errors.New("FETCH_FAILED")
	}
	return text, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestHandler_Execute_EmptyQueriesSkipsSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	handler := NewHandler(DefaultConfig(), searcher, &fakeFetcher{}, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Queries: nil, MaxResults: 5})
	require.NoError(t, err)

	assert.Empty(t, output.Results)
	assert.Equal(t, int32(0), atomic.LoadInt32(&searcher.calls))
}

func TestHandler_Execute_AggregatesInQueryOrder(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]websearch.Result{
		"mobiwork công ty": {
			{Title: "MobiWork", URL: "https://mobiwork.vn"},
			{Title: "MobiWork DMS", URL: "https://mobiwork.vn/dms"},
		},
		"mobiwork sản phẩm": {
			{Title: "Sản phẩm", URL: "https://mobiwork.vn/san-pham"},
		},
	}}
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://mobiwork.vn":          "Giới thiệu MobiWork",
		"https://mobiwork.vn/san-pham": "Danh sách sản phẩm",
	}}
	handler := NewHandler(DefaultConfig(), searcher, fetcher, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Queries:    []string{"mobiwork công ty", "mobiwork sản phẩm"},
		MaxResults: 5,
	})
	require.NoError(t, err)
	require.Len(t, output.Results, 3)

	assert.Equal(t, "https://mobiwork.vn", *output.Results[0].URL)
	assert.Equal(t, "https://mobiwork.vn/dms", *output.Results[1].URL)
	assert.Equal(t, "https://mobiwork.vn/san-pham", *output.Results[2].URL)

	require.NotNil(t, output.Results[0].Content)
	assert.Equal(t, "Giới thiệu MobiWork", *output.Results[0].Content)
	// This fetch failed, the result stays with nil content.
	assert.Nil(t, output.Results[1].Content)
	require.NotNil(t, output.Results[2].Content)
}

func TestHandler_Execute_SearchFailureContributesNothing(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("SEARCH_FAILED")}
	fetcher := &fakeFetcher{}
	handler := NewHandler(DefaultConfig(), searcher, fetcher, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Queries:    []string{"query one", "query two"},
		MaxResults: 3,
	})
	require.NoError(t, err)

	assert.Empty(t, output.Results)
	assert.Equal(t, 0, fetcher.callCount())
}

func TestHandler_Execute_MaxResultsPerQuery(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]websearch.Result{
		"q": {
			{Title: "a", URL: "https://a.example"},
			{Title: "b", URL: "https://b.example"},
			{Title: "c", URL: "https://c.example"},
		},
	}}
	handler := NewHandler(DefaultConfig(), searcher, &fakeFetcher{}, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Queries: []string{"q"}, MaxResults: 2})
	require.NoError(t, err)

	assert.Len(t, output.Results, 2)
}

func TestHandler_Execute_GlobalCap(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]websearch.Result{
		"q1": {{Title: "a", URL: "https://a.example"}, {Title: "b", URL: "https://b.example"}},
		"q2": {{Title: "c", URL: "https://c.example"}},
	}}
	cfg := DefaultConfig()
	cfg.MaxTotalResults = 2
	handler := NewHandler(cfg, searcher, &fakeFetcher{}, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Queries: []string{"q1", "q2"}, MaxResults: 5})
	require.NoError(t, err)

	require.Len(t, output.Results, 2)
	assert.Equal(t, "https://a.example", *output.Results[0].URL)
	assert.Equal(t, "https://b.example", *output.Results[1].URL)
}

func TestHandler_Execute_DedupeByURL(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]websearch.Result{
		"q1": {{Title: "a", URL: "https://a.example"}},
		"q2": {{Title: "a again", URL: "https://a.example"}, {Title: "b", URL: "https://b.example"}},
	}}
	cfg := DefaultConfig()
	cfg.DedupeByURL = true
	handler := NewHandler(cfg, searcher, &fakeFetcher{}, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Queries: []string{"q1", "q2"}, MaxResults: 5})
	require.NoError(t, err)

	require.Len(t, output.Results, 2)
	assert.Equal(t, "https://a.example", *output.Results[0].URL)
	assert.Equal(t, "https://b.example", *output.Results[1].URL)
}

func TestHandler_Execute_CacheHitSkipsFetch(t *testing.T) {
	mr := miniredis.RunT(t)
	pageCache := cache.New(cache.Config{Address: mr.Addr(), TTL: time.Minute})
	t.Cleanup(func() { _ = pageCache.Close() })

	ctx := context.Background()
	pageCache.Set(ctx, "https://cached.example", "cached text")

	searcher := &fakeSearcher{results: map[string][]websearch.Result{
		"q": {{Title: "cached", URL: "https://cached.example"}},
	}}
	fetcher := &fakeFetcher{}
	handler := NewHandler(DefaultConfig(), searcher, fetcher, pageCache, logger.NewTestLogger(t))

	output, err := handler.Execute(ctx, &Input{Queries: []string{"q"}, MaxResults: 5})
	require.NoError(t, err)

	require.Len(t, output.Results, 1)
	require.NotNil(t, output.Results[0].Content)
	assert.Equal(t, "cached text", *output.Results[0].Content)
	assert.Equal(t, 0, fetcher.callCount())
}

func TestHandler_Execute_CacheMissFetchesAndStores(t *testing.T) {
	mr := miniredis.RunT(t)
	pageCache := cache.New(cache.Config{Address: mr.Addr(), TTL: time.Minute})
	t.Cleanup(func() { _ = pageCache.Close() })

	searcher := &fakeSearcher{results: map[string][]websearch.Result{
		"q": {{Title: "fresh", URL: "https://fresh.example"}},
	}}
	fetcher := &fakeFetcher{pages: map[string]string{"https://fresh.example": "fresh text"}}
	handler := NewHandler(DefaultConfig(), searcher, fetcher, pageCache, logger.NewTestLogger(t))

	ctx := context.Background()
	output, err := handler.Execute(ctx, &Input{Queries: []string{"q"}, MaxResults: 5})
	require.NoError(t, err)

	require.Len(t, output.Results, 1)
	require.NotNil(t, output.Results[0].Content)

	cached, ok := pageCache.Get(ctx, "https://fresh.example")
	require.True(t, ok)
	assert.Equal(t, "fresh text", cached)
}
