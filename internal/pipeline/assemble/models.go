package assemble

import "github.com/huyvu15/Agentic-search-company/internal/pipeline/fanout"

// Citation is one numbered source excerpt. Indices are contiguous from
// 1 over the results that carried content; results without content are
// skipped, not numbered.
type Citation struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Input carries the aggregated search results to assemble.
type Input struct {
	Results []fanout.SearchResult `json:"results"`
}

// Output holds the numbered citations and the formatted context block
// handed to the synthesizer.
type Output struct {
	Citations []Citation `json:"citations"`
	Context   string     `json:"context"`
}
