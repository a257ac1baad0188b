// Package classify decides whether a user message needs a web search
// before it can be answered.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/huyvu15/Agentic-search-company/internal/common/logger"
)

const StageName = "classify"

const decisionPrompt = "Phân tích câu hỏi sau và quyết định có cần tìm kiếm thông tin từ internet không. " +
	"Trả lời chỉ 'YES' nếu cần tìm kiếm, 'NO' nếu không cần.\n\n" +
	"Cần tìm kiếm khi:\n" +
	"- Hỏi về thông tin cụ thể, sự kiện, dữ liệu mới nhất\n" +
	"- Tìm hiểu về công ty, sản phẩm, dịch vụ cụ thể\n" +
	"- Hỏi về tin tức, xu hướng hiện tại\n" +
	"- Yêu cầu tìm kiếm, tra cứu thông tin\n\n" +
	"Không cần tìm kiếm khi:\n" +
	"- Chào hỏi, trò chuyện thường\n" +
	"- Hỏi về khái niệm, lý thuyết cơ bản\n" +
	"- Yêu cầu giải thích, hướng dẫn chung\n" +
	"- Câu hỏi mang tính cá nhân, chủ quan\n\n" +
	"Câu hỏi: %s\n" +
	"Quyết định:"

// searchKeywords drive the fallback decision when the model call fails.
var searchKeywords = []string{
	"tìm kiếm", "tra cứu", "thông tin về", "search", "tìm hiểu", "công ty", "sản phẩm",
}

// Completer is the slice of the model client the classifier needs.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

type Handler struct {
	config *Config
	model  Completer
	logger logger.Logger
}

func NewHandler(config *Config, model Completer, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		model:  model,
		logger: log.With(map[string]interface{}{
			"stage": StageName,
		}),
	}
}

// Execute classifies the message. It never returns an error: when the
// model call fails the keyword heuristic decides instead.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	prompt := fmt.Sprintf(decisionPrompt, input.Message)

	response, err := h.model.Complete(ctx, prompt, h.config.Temperature, h.config.MaxTokens)
	if err != nil {
		h.logger.Warn("decision call failed, falling back to keyword heuristic", map[string]interface{}{
			"error": err.Error(),
		})
		return &Output{
			NeedsSearch: h.keywordFallback(input.Message),
			Source:      SourceHeuristic,
		}, nil
	}

	decision := strings.ToUpper(strings.TrimSpace(response))
	needsSearch := decision == "YES"

	h.logger.Info("message classified", map[string]interface{}{
		"needsSearch": needsSearch,
		"decision":    decision,
	})

	return &Output{
		NeedsSearch: needsSearch,
		Source:      SourceModel,
	}, nil
}

func (h *Handler) keywordFallback(message string) bool {
	lowered := strings.ToLower(message)
	for _, keyword := range searchKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
