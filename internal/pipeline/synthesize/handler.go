// Package synthesize builds the final prompt (persona + question +
// context) and obtains the answer text from the model.
package synthesize

import (
	"context"
	"fmt"
	"strings"

	"github.com/huyvu15/Agentic-search-company/internal/common/logger"
)

const StageName = "synthesize"

const systemPrompt = "Bạn là trợ lý AI thông minh, trả lời bằng tiếng Việt, ngắn gọn, logic. " +
	"Bạn có thể trả lời câu hỏi thường hoặc tìm kiếm thông tin khi cần thiết. " +
	"Chỉ tìm kiếm khi người dùng hỏi về thông tin cụ thể, sự kiện, dữ liệu, hoặc yêu cầu tìm hiểu về chủ đề nào đó. " +
	"Với câu chào hỏi, trò chuyện thường, câu hỏi lý thuyết cơ bản thì chỉ cần trả lời trực tiếp."

// apologyAnswer is returned in-band when the model call fails. The
// request still completes with HTTP success.
const apologyAnswer = "Xin lỗi, tôi không thể tạo câu trả lời lúc này. Vui lòng thử lại sau."

// Completer is the slice of the model client the synthesizer needs.
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

// Execute builds the prompt for the input's mode and calls the model.
// It never returns an error: a failed call yields the apology answer
// with Failed set.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	prompt := h.buildPrompt(input)

	temperature := h.config.Temperature
	if input.Temperature != nil {
		temperature = *input.Temperature
	}
	maxTokens := h.config.MaxTokens
	if input.MaxTokens != nil {
		maxTokens = *input.MaxTokens
	}

	answer, err := h.model.Complete(ctx, prompt, temperature, maxTokens)
	if err != nil {
		h.logger.Error("synthesis call failed", map[string]interface{}{
			"mode":  string(input.Mode),
			"error": err.Error(),
		})
		return &Output{Answer: apologyAnswer, Failed: true}, nil
	}

	h.logger.Info("answer synthesized", map[string]interface{}{
		"mode":         string(input.Mode),
		"answerLength": len(answer),
	})

	return &Output{Answer: answer}, nil
}

func (h *Handler) buildPrompt(input *Input) string {
	switch input.Mode {
	case ModeSearchChat:
		return fmt.Sprintf(
			"%s\n\nCâu hỏi: %s\n\nCác trích đoạn nguồn (đã đánh số):\n%s\n\nYêu cầu: Trả lời súc tích, dùng bullet khi phù hợp, chèn [n] tương ứng nguồn.",
			systemPrompt, input.Message, input.Context)

	case ModeCompanyResearch:
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n\nYêu cầu nghiên cứu công ty: %s\n\n", systemPrompt, input.Message)
		fmt.Fprintf(&b, "Thông tin đã trích xuất:\n- Tên công ty: %s\n- Tên liên hệ: %s\n\n",
			derefOrEmpty(input.CompanyName), derefOrEmpty(input.ContactName))
		if input.Context != "" {
			fmt.Fprintf(&b, "Nguồn tham khảo:\n%s\n\n", input.Context)
		}
		b.WriteString("Trả lời chi tiết về thông tin công ty, sản phẩm/dịch vụ, thông tin liên hệ. " +
			"Nếu tìm thấy thông tin CEO/người đại diện pháp luật trùng với tên liên hệ, hãy highlight điều này. " +
			"Dùng bullet khi phù hợp, kèm [n] chỉ tới nguồn.")
		return b.String()

	case ModeGeneral:
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n\nYêu cầu người dùng: %s\n\n", systemPrompt, input.Message)
		if input.Context != "" {
			fmt.Fprintf(&b, "Nguồn tham khảo:\n%s\n\n", input.Context)
		}
		b.WriteString("Trả lời rõ ràng, dùng bullet khi phù hợp, kèm [n] chỉ tới nguồn.")
		return b.String()

	default:
		return fmt.Sprintf(
			"%s\n\nYêu cầu người dùng: %s\n\nTrả lời trực tiếp, thân thiện và hữu ích.",
			systemPrompt, input.Message)
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
