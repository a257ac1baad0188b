package synthesize

// Mode selects the prompt the synthesizer builds.
type Mode string

const (
	// ModeDirect answers without any search context.
	ModeDirect Mode = "direct"
	// ModeGeneral answers a searched request with numbered sources.
	ModeGeneral Mode = "general"
	// ModeCompanyResearch answers a company-research request with the
	// extracted entity hints alongside the sources.
	ModeCompanyResearch Mode = "company_research"
	// ModeSearchChat answers the raw-query search endpoint, where the
	// question was searched directly without intent extraction.
	ModeSearchChat Mode = "search_chat"
)

// Input carries everything the synthesizer needs to build the prompt.
// CompanyName and ContactName only matter for ModeCompanyResearch.
// Temperature and MaxTokens are nil when the caller wants the configured
// defaults; an explicit zero is honored.
type Input struct {
	Mode        Mode     `json:"mode"`
	Message     string   `json:"message"`
	Context     string   `json:"context"`
	CompanyName *string  `json:"company_name"`
	ContactName *string  `json:"contact_name"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
}

// Output holds the answer text. Failed marks an in-band apology
// returned in place of a model answer.
type Output struct {
	Answer string `json:"answer"`
	Failed bool   `json:"failed"`
}
