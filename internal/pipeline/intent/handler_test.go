package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyvu15/Agentic-search-company/internal/common/logger"
)

type fakeModel struct {
	response   string
	err        error
	lastPrompt string
}

func (m *fakeModel) Complete(_ context.Context, prompt string, _ float64, _ int) (string, error) {
	m.lastPrompt = prompt
	return m.response, m.err
}

func TestHandler_Execute_ParsesCompanyIntent(t *testing.T) {
	model := &fakeModel{response: `Đây là kết quả phân tích:
{
  "company_name": "MobiWork",
  "contact_name": "Nguyễn Văn A",
  "search_queries": ["MobiWork thông tin công ty", "Nguyễn Văn A MobiWork"],
  "search_type": "company_research"
}`}
	handler := NewHandler(DefaultConfig(), model, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Message: "Tìm thông tin công ty MobiWork, liên hệ Nguyễn Văn A"})
	require.NoError(t, err)
	require.NotNil(t, output.Intent)

	assert.False(t, output.Fallback)
	require.NotNil(t, output.Intent.CompanyName)
	assert.Equal(t, "MobiWork", *output.Intent.CompanyName)
	require.NotNil(t, output.Intent.ContactName)
	assert.Equal(t, "Nguyễn Văn A", *output.Intent.ContactName)
	assert.Equal(t, []string{"MobiWork thông tin công ty", "Nguyễn Văn A MobiWork"}, output.Intent.SearchQueries)
	assert.Equal(t, SearchTypeCompanyResearch, output.Intent.SearchType)
	assert.Contains(t, model.lastPrompt, "Tìm thông tin công ty MobiWork")
}

func TestHandler_Execute_NullNamesStayNil(t *testing.T) {
	model := &fakeModel{response: `{"company_name": null, "contact_name": null, "search_queries": ["giá vàng hôm nay"], "search_type": "general"}`}
	handler := NewHandler(DefaultConfig(), model, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Message: "Giá vàng hôm nay?"})
	require.NoError(t, err)

	assert.Nil(t, output.Intent.CompanyName)
	assert.Nil(t, output.Intent.ContactName)
	assert.Equal(t, SearchTypeGeneral, output.Intent.SearchType)
}

func TestHandler_Execute_EmptyNamesBecomeNil(t *testing.T) {
	model := &fakeModel{response: `{"company_name": "", "contact_name": "  ", "search_queries": ["tin tức AI"], "search_type": "general"}`}
	handler := NewHandler(DefaultConfig(), model, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Message: "Tin tức AI"})
	require.NoError(t, err)

	assert.Nil(t, output.Intent.CompanyName)
	assert.Nil(t, output.Intent.ContactName)
}

func TestHandler_Execute_ModelFailureFallsBack(t *testing.T) {
	model := &fakeModel{err: errors.New("MODEL_CALL_FAILED")}
	handler := NewHandler(DefaultConfig(), model, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Message: "Tìm hiểu về công ty ABC"})
	require.NoError(t, err)

	assert.True(t, output.Fallback)
	assert.Nil(t, output.Intent.CompanyName)
	assert.Nil(t, output.Intent.ContactName)
	assert.Equal(t, []string{"Tìm hiểu về công ty ABC"}, output.Intent.SearchQueries)
	assert.Equal(t, SearchTypeGeneral, output.Intent.SearchType)
}

func TestHandler_Execute_NoJSONFallsBack(t *testing.T) {
	model := &fakeModel{response: "Xin lỗi, tôi không thể phân tích yêu cầu này."}
	handler := NewHandler(DefaultConfig(), model, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Message: "Tra cứu mã số thuế"})
	require.NoError(t, err)

	assert.True(t, output.Fallback)
	assert.Equal(t, []string{"Tra cứu mã số thuế"}, output.Intent.SearchQueries)
}

func TestHandler_Execute_SchemaViolationFallsBack(t *testing.T) {
	model := &fakeModel{response: `{"company_name": "ABC", "search_queries": "not an array", "search_type": "general"}`}
	handler := NewHandler(DefaultConfig(), model, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Message: "Công ty ABC"})
	require.NoError(t, err)

	assert.True(t, output.Fallback)
}

func TestHandler_Execute_FallbackQueryTruncatedByRunes(t *testing.T) {
	model := &fakeModel{err: errors.New("MODEL_CALL_FAILED")}
	handler := NewHandler(DefaultConfig(), model, logger.NewTestLogger(t))

	message := strings.Repeat("ế", 150)
	output, err := handler.Execute(context.Background(), &Input{Message: message})
	require.NoError(t, err)

	require.Len(t, output.Intent.SearchQueries, 1)
	assert.Equal(t, strings.Repeat("ế", 100), output.Intent.SearchQueries[0])
}

func TestHandler_Execute_EmptyQueriesGetFallbackQuery(t *testing.T) {
	model := &fakeModel{response: `{"company_name": null, "contact_name": null, "search_queries": ["", "  "], "search_type": "general"}`}
	handler := NewHandler(DefaultConfig(), model, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Message: "Thời tiết Đà Nẵng"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Thời tiết Đà Nẵng"}, output.Intent.SearchQueries)
}

func TestHandler_Execute_UnknownSearchTypeBecomesGeneral(t *testing.T) {
	model := &fakeModel{response: `{"company_name": null, "contact_name": null, "search_queries": ["tin mới"], "search_type": "news"}`}
	handler := NewHandler(DefaultConfig(), model, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Message: "Tin mới"})
	require.NoError(t, err)

	assert.Equal(t, SearchTypeGeneral, output.Intent.SearchType)
}

func TestExtractJSON_BalancedNested(t *testing.T) {
	s := `prefix {"a": {"b": "c}"}, "d": [1, 2]} suffix {"x": 1}`
	got, ok := extractJSON(s)
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": "c}"}, "d": [1, 2]}`, got)
}

func TestExtractJSON_Unbalanced(t *testing.T) {
	_, ok := extractJSON(`{"a": 1`)
	assert.False(t, ok)
}
