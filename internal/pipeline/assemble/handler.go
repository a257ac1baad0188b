// Package assemble turns aggregated search results into a numbered,
// length-bounded citation block.
package assemble

import (
	"fmt"
	"strings"
)

const StageName = "assemble"

type Handler struct {
	config *Config
}

func NewHandler(config *Config) *Handler {
	return &Handler{config: config}
}

// Execute numbers the content-bearing results 1..k in their original
// order and formats the context block. Results without content keep
// their place in the sources list but get no citation.
func (h *Handler) Execute(input *Input) *Output {
	citations := make([]Citation, 0, len(input.Results))
	blocks := make([]string, 0, len(input.Results))

	index := 0
	for _, r := range input.Results {
		if r.Content == nil || strings.TrimSpace(*r.Content) == "" {
			continue
		}
		index++

		citation := Citation{
			Index:   index,
			Title:   strings.TrimSpace(derefOrEmpty(r.Title)),
			URL:     strings.TrimSpace(derefOrEmpty(r.URL)),
			Snippet: h.truncate(strings.TrimSpace(*r.Content)),
		}
		citations = append(citations, citation)
		blocks = append(blocks, fmt.Sprintf("[%d] %s (%s)\n%s", citation.Index, citation.Title, citation.URL, citation.Snippet))
	}

	return &Output{
		Citations: citations,
		Context:   strings.Join(blocks, "\n\n"),
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (h *Handler) truncate(content string) string {
	runes := []rune(content)
	if len(runes) > h.config.SnippetLimit {
		return string(runes[:h.config.SnippetLimit])
	}
	return content
}
