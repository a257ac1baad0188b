package assemble

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyvu15/Agentic-search-company/internal/pipeline/fanout"
)

func stringPtr(s string) *string { return &s }

func TestHandler_Execute_NumbersOnlyContentBearingResults(t *testing.T) {
	handler := NewHandler(DefaultConfig())

	output := handler.Execute(&Input{Results: []fanout.SearchResult{
		{Title: stringPtr("MobiWork"), URL: stringPtr("https://mobiwork.vn"), Content: stringPtr("Giới thiệu công ty")},
		{Title: stringPtr("No content"), URL: stringPtr("https://empty.example"), Content: nil},
		{Title: stringPtr("Sản phẩm"), URL: stringPtr("https://mobiwork.vn/san-pham"), Content: stringPtr("Danh sách sản phẩm")},
	}})

	require.Len(t, output.Citations, 2)
	assert.Equal(t, 1, output.Citations[0].Index)
	assert.Equal(t, "MobiWork", output.Citations[0].Title)
	assert.Equal(t, 2, output.Citations[1].Index)
	assert.Equal(t, "Sản phẩm", output.Citations[1].Title)

	assert.Equal(t,
		"[1] MobiWork (https://mobiwork.vn)\nGiới thiệu công ty\n\n[2] Sản phẩm (https://mobiwork.vn/san-pham)\nDanh sách sản phẩm",
		output.Context)
}

func TestHandler_Execute_EmptyContentSkipped(t *testing.T) {
	handler := NewHandler(DefaultConfig())

	output := handler.Execute(&Input{Results: []fanout.SearchResult{
		{Title: stringPtr("blank"), URL: stringPtr("https://blank.example"), Content: stringPtr("   ")},
	}})

	assert.Empty(t, output.Citations)
	assert.Empty(t, output.Context)
}

func TestHandler_Execute_MissingTitleAndURLRenderEmpty(t *testing.T) {
	handler := NewHandler(DefaultConfig())

	output := handler.Execute(&Input{Results: []fanout.SearchResult{
		{Title: nil, URL: nil, Content: stringPtr("nội dung không rõ nguồn")},
	}})

	require.Len(t, output.Citations, 1)
	assert.Equal(t, "", output.Citations[0].Title)
	assert.Equal(t, "", output.Citations[0].URL)
	assert.Equal(t, "[1]  ()\nnội dung không rõ nguồn", output.Context)
}

func TestHandler_Execute_NoResults(t *testing.T) {
	handler := NewHandler(DefaultConfig())

	output := handler.Execute(&Input{})

	assert.Empty(t, output.Citations)
	assert.Empty(t, output.Context)
}

func TestHandler_Execute_SnippetTruncatedByRunes(t *testing.T) {
	handler := NewHandler(DefaultConfig())

	long := strings.Repeat("ệ", 1500)
	output := handler.Execute(&Input{Results: []fanout.SearchResult{
		{Title: stringPtr("long"), URL: stringPtr("https://long.example"), Content: stringPtr(long)},
	}})

	require.Len(t, output.Citations, 1)
	assert.Equal(t, strings.Repeat("ệ", 1200), output.Citations[0].Snippet)
}

func TestHandler_Execute_ShortContentKeptWhole(t *testing.T) {
	handler := NewHandler(DefaultConfig())

	output := handler.Execute(&Input{Results: []fanout.SearchResult{
		{Title: stringPtr("short"), URL: stringPtr("https://short.example"), Content: stringPtr("ngắn gọn")},
	}})

	require.Len(t, output.Citations, 1)
	assert.Equal(t, "ngắn gọn", output.Citations[0].Snippet)
}

func TestHandler_Execute_IndicesContiguous(t *testing.T) {
	handler := NewHandler(DefaultConfig())

	results := make([]fanout.SearchResult, 0, 6)
	for i := 0; i < 6; i++ {
		r := fanout.SearchResult{Title: stringPtr(fmt.Sprintf("r%d", i)), URL: stringPtr(fmt.Sprintf("https://r%d.example", i))}
		if i%2 == 0 {
			r.Content = stringPtr(fmt.Sprintf("content %d", i))
		}
		results = append(results, r)
	}

	output := handler.Execute(&Input{Results: results})

	require.Len(t, output.Citations, 3)
	for i, c := range output.Citations {
		assert.Equal(t, i+1, c.Index)
	}
	assert.Equal(t, "r0", output.Citations[0].Title)
	assert.Equal(t, "r2", output.Citations[1].Title)
	assert.Equal(t, "r4", output.Citations[2].Title)
}
