package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

type stubChatTurnRepository struct {
	turns    []*entity.ChatTurn
	inserted []*entity.ChatTurn
}

func (r *stubChatTurnRepository) Insert(data *entity.ChatTurn) error {
	r.inserted = append(r.inserted, data)
	return nil
}

func (r *stubChatTurnRepository) List(condition *model.GetChatTurnsCondition) ([]*entity.ChatTurn, int64, error) {
	return r.turns, int64(len(r.turns)), nil
}

func (r *stubChatTurnRepository) ListNoCount(condition *model.GetChatTurnsCondition) ([]*entity.ChatTurn, error) {
	return r.turns, nil
}

func (r *stubChatTurnRepository) GetRecentByUser(userID string, limit int) ([]*entity.ChatTurn, error) {
	return r.turns, nil
}

type stubFactory struct {
	chatRepo *stubChatTurnRepository
}

func (f *stubFactory) NewSession(ctx context.Context) interfaces.Session { return &stubSession{} }

func (f *stubFactory) NewChatTurnRepository(session interfaces.Session) (repository.ChatTurnRepository, error) {
	return f.chatRepo, nil
}

func (f *stubFactory) NewVectorIndexRepository(session interfaces.Session) (repository.VectorIndexRepository, error) {
	return nil, fmt.Errorf("not implemented")
}

type stubGenerator struct {
	response    *model.GenerateResponse
	err         *model.Error
	lastHistory []*model.ChatTurnContext
}

func (g *stubGenerator) GenerateResponse(ctx context.Context, collection, query string, chatHistory []*model.ChatTurnContext) (*model.GenerateResponse, *model.Error) {
	g.lastHistory = chatHistory
	return g.response, g.err
}

type fakeCache struct {
	store map[string]string
	dels  []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok := c.store[key]
	return value, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.store[key] = value
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

func generateResponseFixture() *model.GenerateResponse {
	return &model.GenerateResponse{
		Query:           "tìm nhà quận 1",
		Result:          "có căn này (Slug: can-ho-quan-1)",
		SourceDocuments: []map[string]interface{}{{"slug": "can-ho-quan-1"}},
		Slugs:           []string{"can-ho-quan-1"},
		PageContents:    []string{"Tiêu đề: Căn hộ Quận 1"},
	}
}

func TestGenerate_PersistsTurnAndInvalidatesCache(t *testing.T) {
	chatRepo := &stubChatTurnRepository{}
	generator := &stubGenerator{response: generateResponseFixture()}
	cache := newFakeCache()
	service := NewService(&stubFactory{chatRepo: chatRepo}, generator, cache, "properties", 5, time.Minute)

	response, err := service.Generate(context.Background(), "user-1", "tìm nhà quận 1")
	require.Nil(t, err)
	assert.Equal(t, "có căn này (Slug: can-ho-quan-1)", response.Result)

	require.Len(t, chatRepo.inserted, 1)
	turn := chatRepo.inserted[0]
	assert.Equal(t, "user-1", turn.UserID)
	assert.Equal(t, "tìm nhà quận 1", turn.Request)

	var docs []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(turn.SourceDocuments), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "can-ho-quan-1", docs[0]["slug"])

	assert.Contains(t, cache.dels, "chat:history:user-1")
}

func TestGenerate_PassesHistoryToGenerator(t *testing.T) {
	docs, _ := json.Marshal([]map[string]interface{}{{"slug": "nha-cu"}})
	contents, _ := json.Marshal([]string{"nội dung cũ"})
	chatRepo := &stubChatTurnRepository{
		turns: []*entity.ChatTurn{
			{ID: 1, UserID: "user-1", Request: "câu cũ", Response: "trả lời cũ", SourceDocuments: string(docs), PageContents: string(contents)},
		},
	}
	generator := &stubGenerator{response: generateResponseFixture()}
	service := NewService(&stubFactory{chatRepo: chatRepo}, generator, nil, "properties", 5, 0)

	_, err := service.Generate(context.Background(), "user-1", "câu mới")
	require.Nil(t, err)

	require.Len(t, generator.lastHistory, 1)
	assert.Equal(t, "câu cũ", generator.lastHistory[0].Human)
	assert.Equal(t, []string{"nội dung cũ"}, generator.lastHistory[0].PageContents)
	require.Len(t, generator.lastHistory[0].SourceDocuments, 1)
	assert.Equal(t, "nha-cu", generator.lastHistory[0].SourceDocuments[0]["slug"])
}

func TestGenerate_UsesCachedHistory(t *testing.T) {
	chatRepo := &stubChatTurnRepository{
		turns: []*entity.ChatTurn{{Request: "từ db", Response: "db"}},
	}
	cache := newFakeCache()
	cached, _ := json.Marshal([]*model.ChatTurnContext{{Human: "từ cache", AI: "cache"}})
	cache.store["chat:history:user-1"] = string(cached)

	generator := &stubGenerator{response: generateResponseFixture()}
	service := NewService(&stubFactory{chatRepo: chatRepo}, generator, cache, "properties", 5, time.Minute)

	_, err := service.Generate(context.Background(), "user-1", "câu hỏi")
	require.Nil(t, err)

	require.Len(t, generator.lastHistory, 1)
	assert.Equal(t, "từ cache", generator.lastHistory[0].Human)
}

func TestGenerate_RagErrorDoesNotPersist(t *testing.T) {
	chatRepo := &stubChatTurnRepository{}
	generator := &stubGenerator{err: model.NewError(model.ErrorEmbedding, fmt.Errorf("down"))}
	service := NewService(&stubFactory{chatRepo: chatRepo}, generator, nil, "properties", 5, 0)

	_, err := service.Generate(context.Background(), "user-1", "câu hỏi")
	require.NotNil(t, err)
	assert.Equal(t, model.ErrorEmbedding, err.Code)
	assert.Empty(t, chatRepo.inserted)
}

func TestGenerate_EmptyUserID(t *testing.T) {
	service := NewService(&stubFactory{chatRepo: &stubChatTurnRepository{}}, &stubGenerator{}, nil, "properties", 5, 0)

	_, err := service.Generate(context.Background(), "", "câu hỏi")
	require.NotNil(t, err)
	assert.Equal(t, model.ErrorParams, err.Code)
}

func TestListChats(t *testing.T) {
	chatRepo := &stubChatTurnRepository{
		turns: []*entity.ChatTurn{{ID: 2}, {ID: 1}},
	}
	service := NewService(&stubFactory{chatRepo: chatRepo}, &stubGenerator{}, nil, "properties", 5, 0)

	chats, total, err := service.ListChats(context.Background(), "user-1", &model.ListChatsRequest{TopK: 2, Pagination: true})
	require.Nil(t, err)
	assert.Len(t, chats, 2)
	assert.Equal(t, int64(2), total)
}
