package intent

const (
	SearchTypeGeneral         = "general"
	SearchTypeCompanyResearch = "company_research"
)

// Input carries the user message to analyze.
type Input struct {
	Message string `json:"message"`
}

// Intent is the structured search plan extracted from a message.
// CompanyName and ContactName stay nil when the message names neither.
type Intent struct {
	CompanyName   *string  `json:"company_name"`
	ContactName   *string  `json:"contact_name"`
	SearchQueries []string `json:"search_queries"`
	SearchType    string   `json:"search_type"`
}

// Output wraps the extracted intent and records whether it came from
// the model or from the raw-message fallback.
type Output struct {
	Intent   *Intent `json:"intent"`
	Fallback bool    `json:"fallback"`
}
