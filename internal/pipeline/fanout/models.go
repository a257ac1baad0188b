package fanout

// SearchResult is one candidate page with its extracted text. Title and
// URL are nil when the engine gave none, serializing as null. Content is
// nil when the fetch or extraction failed; the result is still kept so
// the caller can list the source.
type SearchResult struct {
	Title   *string `json:"title"`
	URL     *string `json:"url"`
	Content *string `json:"content"`
}

// Input carries the search plan to execute.
type Input struct {
	Queries    []string `json:"queries"`
	MaxResults int      `json:"max_results"`
}

// Output aggregates results in query order, then per-query rank order.
type Output struct {
	Results []SearchResult `json:"results"`
}
