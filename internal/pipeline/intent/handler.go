// Package intent extracts a structured search plan (company, contact,
// search queries) from a user message via the model.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/huyvu15/Agentic-search-company/internal/common/logger"
)

const StageName = "intent"

const analysisPrompt = "Phân tích prompt sau và trích xuất thông tin quan trọng để tìm kiếm. " +
	"Trả lời theo định dạng JSON:\n" +
	"{\n" +
	"  \"company_name\": \"tên công ty nếu có\",\n" +
	"  \"contact_name\": \"tên liên hệ nếu có\",\n" +
	"  \"search_queries\": [\"câu truy vấn tìm kiếm 1\", \"câu truy vấn tìm kiếm 2\"],\n" +
	"  \"search_type\": \"company_research\" hoặc \"general\"\n" +
	"}\n\n" +
	"Quy tắc:\n" +
	"- Nếu có tên công ty, tạo search query: 'tên công ty + thông tin công ty'\n" +
	"- Nếu có tên liên hệ, tạo search query: 'tên liên hệ + tên công ty'\n" +
	"- Tạo nhiều search query khác nhau để tìm thông tin đa dạng\n" +
	"- Nếu không có thông tin cụ thể, dùng search_type: 'general'\n\n" +
	"Prompt: %s\n" +
	"Kết quả:"

// intentSchema checks the shape of the extracted JSON before it is
// trusted. Anything that fails validation falls back to a raw query.
const intentSchema = `{
	"type": "object",
	"properties": {
		"company_name": {"type": ["string", "null"]},
		"contact_name": {"type": ["string", "null"]},
		"search_queries": {
			"type": "array",
			"items": {"type": "string"}
		},
		"search_type": {"type": "string"}
	},
	"required": ["search_queries", "search_type"]
}`

// Completer is the slice of the model client the extractor needs.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

type Handler struct {
	config *Config
	model  Completer
	schema *gojsonschema.Schema
	logger logger.Logger
}

func NewHandler(config *Config, model Completer, log logger.Logger) *Handler {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(intentSchema))
	if err != nil {
		// The schema is a compile-time constant; failing to parse it is
		// a programming error.
		panic(fmt.Sprintf("intent schema invalid: %v", err))
	}

	return &Handler{
		config: config,
		model:  model,
		schema: schema,
		logger: log.With(map[string]interface{}{
			"stage": StageName,
		}),
	}
}

// Execute extracts a search plan from the message. It never returns an
// error: any model or parsing failure yields the raw-message fallback.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	prompt := fmt.Sprintf(analysisPrompt, input.Message)

	response, err := h.model.Complete(ctx, prompt, h.config.Temperature, h.config.MaxTokens)
	if err != nil {
		h.logger.Warn("analysis call failed, using fallback intent", map[string]interface{}{
			"error": err.Error(),
		})
		return &Output{Intent: h.fallback(input.Message), Fallback: true}, nil
	}

	extracted, ok := extractJSON(response)
	if !ok {
		h.logger.Warn("no JSON object found in analysis response", nil)
		return &Output{Intent: h.fallback(input.Message), Fallback: true}, nil
	}

	result, err := h.schema.Validate(gojsonschema.NewStringLoader(extracted))
	if err != nil || !result.Valid() {
		h.logger.Warn("analysis response failed schema validation", map[string]interface{}{
			"response": extracted,
		})
		return &Output{Intent: h.fallback(input.Message), Fallback: true}, nil
	}

	var parsed Intent
	if err := json.Unmarshal([]byte(extracted), &parsed); err != nil {
		h.logger.Warn("analysis response unmarshal failed", map[string]interface{}{
			"error": err.Error(),
		})
		return &Output{Intent: h.fallback(input.Message), Fallback: true}, nil
	}

	h.normalize(&parsed, input.Message)

	h.logger.Info("intent extracted", map[string]interface{}{
		"searchType": parsed.SearchType,
		"queryCount": len(parsed.SearchQueries),
		"hasCompany": parsed.CompanyName != nil,
		"hasContact": parsed.ContactName != nil,
	})

	return &Output{Intent: &parsed}, nil
}

// extractJSON returns the first balanced top-level JSON object in s.
func extractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// normalize clears empty names, drops blank queries, and guarantees at
// least one query and a known search type.
func (h *Handler) normalize(in *Intent, message string) {
	if in.CompanyName != nil && strings.TrimSpace(*in.CompanyName) == "" {
		in.CompanyName = nil
	}
	if in.ContactName != nil && strings.TrimSpace(*in.ContactName) == "" {
		in.ContactName = nil
	}

	queries := in.SearchQueries[:0]
	for _, q := range in.SearchQueries {
		if strings.TrimSpace(q) != "" {
			queries = append(queries, q)
		}
	}
	in.SearchQueries = queries
	if len(in.SearchQueries) == 0 {
		in.SearchQueries = []string{h.truncate(message)}
	}

	if in.SearchType != SearchTypeCompanyResearch && in.SearchType != SearchTypeGeneral {
		in.SearchType = SearchTypeGeneral
	}
}

func (h *Handler) fallback(message string) *Intent {
	return &Intent{
		SearchQueries: []string{h.truncate(message)},
		SearchType:    SearchTypeGeneral,
	}
}

func (h *Handler) truncate(message string) string {
	runes := []rune(message)
	if len(runes) > h.config.FallbackQueryLimit {
		return string(runes[:h.config.FallbackQueryLimit])
	}
	return message
}
