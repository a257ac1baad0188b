package classify

// Input carries the user message to classify.
type Input struct {
	Message string `json:"message"`
}

// Output reports whether the message needs a web search to answer.
type Output struct {
	NeedsSearch bool   `json:"needs_search"`
	Source      string `json:"source"`
}

const (
	// SourceModel means the decision came from the model call.
	SourceModel = "model"
	// SourceHeuristic means the model call failed and the keyword
	// heuristic decided instead.
	SourceHeuristic = "heuristic"
)
