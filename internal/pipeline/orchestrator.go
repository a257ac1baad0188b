// Package pipeline runs the search-augmented answer flow: classify,
// extract intent, fan out searches, assemble citations, synthesize.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/huyvu15/Agentic-search-company/internal/common/logger"
	"github.com/huyvu15/Agentic-search-company/internal/common/observability"
	"github.com/huyvu15/Agentic-search-company/internal/pipeline/assemble"
	"github.com/huyvu15/Agentic-search-company/internal/pipeline/classify"
	"github.com/huyvu15/Agentic-search-company/internal/pipeline/fanout"
	"github.com/huyvu15/Agentic-search-company/internal/pipeline/intent"
	"github.com/huyvu15/Agentic-search-company/internal/pipeline/synthesize"
)

// SearchChatRequest is the raw-query flow: the query is searched
// directly, without classification or intent extraction.
type SearchChatRequest struct {
	Query       string
	MaxResults  int
	Temperature *float64
	MaxTokens   *int
}

// AssistantRequest is the full flow: classify first, search only when
// needed.
type AssistantRequest struct {
	Message     string
	MaxResults  int
	Temperature *float64
	MaxTokens   *int
}

// Response carries the answer, every gathered source (content-less ones
// included), and the step trace.
type Response struct {
	Answer  string                `json:"answer"`
	Sources []fanout.SearchResult `json:"sources"`
	Steps   []string              `json:"steps"`
}

type Orchestrator struct {
	classifier  *classify.Handler
	extractor   *intent.Handler
	searcher    *fanout.Handler
	assembler   *assemble.Handler
	synthesizer *synthesize.Handler
	obs         *observability.Observability
	logger      logger.Logger
}

func NewOrchestrator(
	classifier *classify.Handler,
	extractor *intent.Handler,
	searcher *fanout.Handler,
	assembler *assemble.Handler,
	synthesizer *synthesize.Handler,
	obs *observability.Observability,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		classifier:  classifier,
		extractor:   extractor,
		searcher:    searcher,
		assembler:   assembler,
		synthesizer: synthesizer,
		obs:         obs,
		logger:      log,
	}
}

// SearchChat searches the raw query, assembles citations, and
// synthesizes an answer. It never returns an error: every stage has a
// fallback and synthesis failures come back as in-band answer text.
func (o *Orchestrator) SearchChat(ctx context.Context, req *SearchChatRequest) *Response {
	log := o.requestLogger("search-chat")
	log.Info("handling search-chat request", map[string]interface{}{
		"maxResults": req.MaxResults,
	})

	trace := NewTrace()
	trace.Append(fmt.Sprintf("Nhận truy vấn: %s", req.Query))

	searched := o.runFanout(ctx, &fanout.Input{
		Queries:    []string{req.Query},
		MaxResults: req.MaxResults,
	})
	trace.Append(fmt.Sprintf("Tìm kiếm DuckDuckGo: lấy %d kết quả", len(searched.Results)))

	assembled := o.runAssemble(ctx, searched.Results)

	synthesized := o.runSynthesize(ctx, &synthesize.Input{
		Mode:        synthesize.ModeSearchChat,
		Message:     req.Query,
		Context:     assembled.Context,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	trace.Append("Tổng hợp câu trả lời từ các trích đoạn nguồn")

	log.Info("search-chat request complete", map[string]interface{}{
		"sourceCount": len(searched.Results),
		"steps":       trace.Len(),
	})

	return &Response{
		Answer:  synthesized.Answer,
		Sources: searched.Results,
		Steps:   trace.Steps(),
	}
}

// Assistant classifies the message, searches when needed, and
// synthesizes an answer. Like SearchChat it never returns an error.
func (o *Orchestrator) Assistant(ctx context.Context, req *AssistantRequest) *Response {
	log := o.requestLogger("assistant")
	trace := NewTrace()
	trace.Append(fmt.Sprintf("Nhận yêu cầu: %s", req.Message))

	decision := o.runClassify(ctx, req.Message)
	log.Info("message classified", map[string]interface{}{
		"needsSearch":    decision.NeedsSearch,
		"decisionSource": decision.Source,
	})

	if decision.NeedsSearch {
		trace.Append("Phân tích yêu cầu: Cần tìm kiếm thông tin")
		return o.searchAndAnswer(ctx, log, req, trace)
	}

	trace.Append("Phân tích yêu cầu: Trả lời trực tiếp")

	synthesized := o.runSynthesize(ctx, &synthesize.Input{
		Mode:        synthesize.ModeDirect,
		Message:     req.Message,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	trace.Append("Tổng hợp trả lời từ model")

	return &Response{
		Answer:  synthesized.Answer,
		Sources: []fanout.SearchResult{},
		Steps:   trace.Steps(),
	}
}

func (o *Orchestrator) searchAndAnswer(ctx context.Context, log logger.Logger, req *AssistantRequest, trace *Trace) *Response {
	extracted := o.runIntent(ctx, req.Message)
	plan := extracted.Intent
	trace.Append(fmt.Sprintf("Phân tích prompt: tìm thấy công ty '%s', liên hệ '%s'",
		nameOrNA(plan.CompanyName), nameOrNA(plan.ContactName)))
	trace.Append(fmt.Sprintf("Tạo %d câu truy vấn tìm kiếm", len(plan.SearchQueries)))

	searched := o.runFanout(ctx, &fanout.Input{
		Queries:    plan.SearchQueries,
		MaxResults: req.MaxResults,
	})
	trace.Append(fmt.Sprintf("Thu thập %d nguồn thông tin", len(searched.Results)))
	log.Info("sources gathered", map[string]interface{}{
		"searchType":  plan.SearchType,
		"queryCount":  len(plan.SearchQueries),
		"sourceCount": len(searched.Results),
	})

	assembled := o.runAssemble(ctx, searched.Results)

	mode := synthesize.ModeGeneral
	if plan.SearchType == intent.SearchTypeCompanyResearch {
		mode = synthesize.ModeCompanyResearch
	}

	synthesized := o.runSynthesize(ctx, &synthesize.Input{
		Mode:        mode,
		Message:     req.Message,
		Context:     assembled.Context,
		CompanyName: plan.CompanyName,
		ContactName: plan.ContactName,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	trace.Append("Tổng hợp trả lời từ model")

	return &Response{
		Answer:  synthesized.Answer,
		Sources: searched.Results,
		Steps:   trace.Steps(),
	}
}

func (o *Orchestrator) runClassify(ctx context.Context, message string) *classify.Output {
	start := time.Now()
	output, _ := o.classifier.Execute(ctx, &classify.Input{Message: message})
	o.recordStage(ctx, classify.StageName, start)
	return output
}

func (o *Orchestrator) runIntent(ctx context.Context, message string) *intent.Output {
	start := time.Now()
	output, _ := o.extractor.Execute(ctx, &intent.Input{Message: message})
	o.recordStage(ctx, intent.StageName, start)
	return output
}

func (o *Orchestrator) runFanout(ctx context.Context, input *fanout.Input) *fanout.Output {
	start := time.Now()
	output, _ := o.searcher.Execute(ctx, input)
	o.recordStage(ctx, fanout.StageName, start)
	if o.obs != nil {
		o.obs.RecordSearchResults(ctx, len(output.Results))
	}
	return output
}

func (o *Orchestrator) runAssemble(ctx context.Context, results []fanout.SearchResult) *assemble.Output {
	start := time.Now()
	output := o.assembler.Execute(&assemble.Input{Results: results})
	o.recordStage(ctx, assemble.StageName, start)
	return output
}

func (o *Orchestrator) runSynthesize(ctx context.Context, input *synthesize.Input) *synthesize.Output {
	start := time.Now()
	output, _ := o.synthesizer.Execute(ctx, input)
	o.recordStage(ctx, synthesize.StageName, start)
	return output
}

func (o *Orchestrator) recordStage(ctx context.Context, stage string, start time.Time) {
	if o.obs != nil {
		o.obs.RecordStageDuration(ctx, stage, time.Since(start))
	}
}

func (o *Orchestrator) requestLogger(endpoint string) logger.Logger {
	return o.logger.With(map[string]interface{}{
		"requestId": uuid.New().String(),
		"endpoint":  endpoint,
	})
}

func nameOrNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}
