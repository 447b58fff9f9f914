package rag

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thaoanhhaa1/kltn-backend/constant"
	"github.com/thaoanhhaa1/kltn-backend/entity"
	"github.com/thaoanhhaa1/kltn-backend/model"
	"github.com/thaoanhhaa1/kltn-backend/repository"
	"github.com/thaoanhhaa1/kltn-backend/repository/interfaces"
)

type stubSession struct{}

func (s *stubSession) Begin() error    { return nil }
func (s *stubSession) Close() error    { return nil }
func (s *stubSession) Commit() error   { return nil }
func (s *stubSession) Rollback() error { return nil }

type stubVectorIndexRepository struct {
	hits          []*model.SearchHit
	err           error
	lastCondition *model.VectorSearchCondition
}

func (r *stubVectorIndexRepository) EnsureCollection(collection string) error { return nil }

func (r *stubVectorIndexRepository) Insert(collection string, data []*entity.VectorRecord) error {
	return nil
}

func (r *stubVectorIndexRepository) DeleteByPropertyID(collection string, propertyID string) error {
	return nil
}

func (r *stubVectorIndexRepository) Search(condition *model.VectorSearchCondition) ([]*model.SearchHit, error) {
	r.lastCondition = condition
	return r.hits, r.err
}

type stubFactory struct {
	vectorRepo *stubVectorIndexRepository
}

func (f *stubFactory) NewSession(ctx context.Context) interfaces.Session { return &stubSession{} }

func (f *stubFactory) NewChatTurnRepository(session interfaces.Session) (repository.ChatTurnRepository, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *stubFactory) NewVectorIndexRepository(session interfaces.Session) (repository.VectorIndexRepository, error) {
	return f.vectorRepo, nil
}

type stubEmbedder struct {
	err error
}

func (e *stubEmbedder) GetTextEmbedding(ctx context.Context, text string) ([]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float64{0.1, 0.2, 0.3}, nil
}

type stubChatModel struct {
	answer   string
	err      error
	messages []openai.ChatCompletionMessage
}

func (c *stubChatModel) PostChatCompletionsNonStreamContent(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	c.messages = messages
	return c.answer, c.err
}

func listingHit(slug string, price float64) *model.SearchHit {
	hit := &model.SearchHit{Score: 0.9}
	hit.PageContent = "Tiêu đề: Nhà " + slug
	hit.Metadata = map[string]interface{}{"slug": slug, "price": price}
	return hit
}

func newTestService(hits []*model.SearchHit, answer string, llmErr error) (*Service, *stubVectorIndexRepository, *stubChatModel) {
	vectorRepo := &stubVectorIndexRepository{hits: hits}
	chatModel := &stubChatModel{answer: answer, err: llmErr}
	service := NewService(&stubFactory{vectorRepo: vectorRepo}, &stubEmbedder{}, chatModel, 5)
	return service, vectorRepo, chatModel
}

func TestGenerateResponse_CitesOnlySlugsInAnswer(t *testing.T) {
	hits := []*model.SearchHit{
		listingHit("can-ho-quan-1", 5000000),
		listingHit("nha-tro-quan-3", 2000000),
	}
	service, _, _ := newTestService(hits, "Bạn có thể xem căn hộ này (Slug: can-ho-quan-1)", nil)

	response, err := service.GenerateResponse(context.Background(), "properties", "tìm căn hộ quận 1", nil)
	require.Nil(t, err)

	assert.Equal(t, []string{"can-ho-quan-1"}, response.Slugs)
	require.Len(t, response.SourceDocuments, 1)
	assert.Equal(t, "can-ho-quan-1", response.SourceDocuments[0]["slug"])
	require.Len(t, response.PageContents, 1)
	assert.Equal(t, "Tiêu đề: Nhà can-ho-quan-1", response.PageContents[0])
}

func TestGenerateResponse_EverySlugIsSubstringOfResult(t *testing.T) {
	hits := []*model.SearchHit{listingHit("can-ho-quan-1", 5000000)}
	service, _, _ := newTestService(hits, "Không có sản phẩm nào phù hợp với yêu cầu của bạn.", nil)

	response, err := service.GenerateResponse(context.Background(), "properties", "tìm nhà", nil)
	require.Nil(t, err)

	assert.Empty(t, response.Slugs)
	assert.Empty(t, response.SourceDocuments)
	for _, slug := range response.Slugs {
		assert.Contains(t, response.Result, slug)
	}
}

func TestGenerateResponse_HistoryCitationsAfterHitsAndDeduped(t *testing.T) {
	hits := []*model.SearchHit{listingHit("can-ho-quan-1", 5000000)}
	history := []*model.ChatTurnContext{
		{
			Human: "tìm nhà quận 1",
			AI:    "có căn này (Slug: can-ho-quan-1)",
			SourceDocuments: []map[string]interface{}{
				{"slug": "can-ho-quan-1"},
				{"slug": "nha-cu-quan-5"},
			},
			PageContents: []string{"nội dung 1", "nội dung 5"},
		},
	}
	service, _, _ := newTestService(hits,
		"Cả hai đều phù hợp (Slug: can-ho-quan-1) và (Slug: nha-cu-quan-5)", nil)

	response, err := service.GenerateResponse(context.Background(), "properties", "còn nhà nào khác không", history)
	require.Nil(t, err)

	// 检索结果在前，历史引用在后，重复 slug 只保留首次出现
	assert.Equal(t, []string{"can-ho-quan-1", "nha-cu-quan-5"}, response.Slugs)
	require.Len(t, response.PageContents, 2)
	assert.Equal(t, "Tiêu đề: Nhà can-ho-quan-1", response.PageContents[0])
	assert.Equal(t, "nội dung 5", response.PageContents[1])
}

func TestGenerateResponse_LLMFailureFallsBack(t *testing.T) {
	hits := []*model.SearchHit{listingHit("can-ho-quan-1", 5000000)}
	service, _, _ := newTestService(hits, "", fmt.Errorf("upstream timeout"))

	response, err := service.GenerateResponse(context.Background(), "properties", "tìm nhà", nil)
	require.Nil(t, err)

	assert.Equal(t, constant.FallbackAnswer, response.Result)
	assert.Empty(t, response.Slugs)
	assert.Empty(t, response.SourceDocuments)
	assert.Empty(t, response.PageContents)
}

func TestGenerateResponse_EmptyAnswerFallsBack(t *testing.T) {
	service, _, _ := newTestService(nil, "", nil)

	response, err := service.GenerateResponse(context.Background(), "properties", "tìm nhà", nil)
	require.Nil(t, err)

	assert.Equal(t, constant.FallbackAnswer, response.Result)
}

func TestGenerateResponse_PriceFilterReachesSearch(t *testing.T) {
	service, vectorRepo, _ := newTestService(nil, "không có", nil)

	_, err := service.GenerateResponse(context.Background(), "properties", "tìm nhà dưới 5 triệu", nil)
	require.Nil(t, err)

	require.NotNil(t, vectorRepo.lastCondition)
	require.NotNil(t, vectorRepo.lastCondition.PriceFilter)
	assert.Nil(t, vectorRepo.lastCondition.PriceFilter.Min)
	require.NotNil(t, vectorRepo.lastCondition.PriceFilter.Max)
	assert.Equal(t, float64(5000000), *vectorRepo.lastCondition.PriceFilter.Max)
	assert.Equal(t, 5, vectorRepo.lastCondition.TopK)
}

func TestGenerateResponse_MessageLayout(t *testing.T) {
	hits := []*model.SearchHit{listingHit("can-ho-quan-1", 5000000)}
	history := []*model.ChatTurnContext{
		{Human: "câu hỏi cũ", AI: "trả lời cũ"},
	}
	service, _, chatModel := newTestService(hits, "ok", nil)

	_, err := service.GenerateResponse(context.Background(), "properties", "câu hỏi mới", history)
	require.Nil(t, err)

	// system + (human, ai) + 本轮查询
	require.Len(t, chatModel.messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, chatModel.messages[0].Role)
	assert.Contains(t, chatModel.messages[0].Content, constant.ChatHistoryContextHeader)
	assert.Contains(t, chatModel.messages[0].Content, constant.ListingContextHeader)
	assert.Contains(t, chatModel.messages[0].Content, "Tiêu đề: Nhà can-ho-quan-1")
	assert.Equal(t, "câu hỏi cũ", chatModel.messages[1].Content)
	assert.Equal(t, openai.ChatMessageRoleAssistant, chatModel.messages[2].Role)
	assert.Equal(t, "câu hỏi mới", chatModel.messages[3].Content)
}

func TestBuildContext_TurnDelimiter(t *testing.T) {
	history := []*model.ChatTurnContext{
		{Human: "a", AI: "b"},
		{Human: "c", AI: "d"},
	}

	context := buildContext(nil, history)

	assert.True(t, strings.HasPrefix(context, constant.ChatHistoryContextHeader))
	assert.Contains(t, context, "Human: a\nAI: b\n--\nHuman: c\nAI: d")
	assert.NotContains(t, context, constant.ListingContextHeader)
}

func TestGenerateResponse_EmptyQuery(t *testing.T) {
	service, _, _ := newTestService(nil, "", nil)

	_, err := service.GenerateResponse(context.Background(), "properties", "", nil)
	require.NotNil(t, err)
	assert.Equal(t, model.ErrorParams, err.Code)
}
