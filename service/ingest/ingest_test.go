package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

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

type stubVectorIndexRepository struct {
	inserted  []*entity.VectorRecord
	deleted   []string
	insertErr error
}

func (r *stubVectorIndexRepository) EnsureCollection(collection string) error { return nil }

func (r *stubVectorIndexRepository) Insert(collection string, data []*entity.VectorRecord) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, data...)
	return nil
}

func (r *stubVectorIndexRepository) DeleteByPropertyID(collection string, propertyID string) error {
	r.deleted = append(r.deleted, propertyID)
	return nil
}

func (r *stubVectorIndexRepository) Search(condition *model.VectorSearchCondition) ([]*model.SearchHit, error) {
	return nil, nil
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
	err   error
	calls int
}

func (e *stubEmbedder) GetTextEmbeddingBatch(ctx context.Context, texts []string) ([][]float64, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = []float64{0.1, 0.2}
	}
	return vectors, nil
}

func newTestService() (*Service, *stubVectorIndexRepository, *stubEmbedder) {
	vectorRepo := &stubVectorIndexRepository{}
	embedder := &stubEmbedder{}
	service := NewService(&stubFactory{vectorRepo: vectorRepo}, embedder, "properties")
	return service, vectorRepo, embedder
}

func propertyEventBody(t *testing.T, eventType, status string) []byte {
	t.Helper()

	event := map[string]interface{}{
		"type": eventType,
		"data": map[string]interface{}{
			"propertyId":  "prop-1",
			"title":       "Căn hộ Quận 1",
			"description": "Căn hộ 2 phòng ngủ",
			"price":       5000000,
			"slug":        "can-ho-quan-1",
			"status":      status,
		},
	}

	body, err := json.Marshal(event)
	require.NoError(t, err)
	return body
}

func TestHandleMessage_Created(t *testing.T) {
	service, vectorRepo, _ := newTestService()

	err := service.HandleMessage(context.Background(), propertyEventBody(t, "PROPERTY_CREATED", "ACTIVE"))
	require.NoError(t, err)

	require.NotEmpty(t, vectorRepo.inserted)
	assert.Empty(t, vectorRepo.deleted)

	record := vectorRepo.inserted[0]
	assert.NotEmpty(t, record.ID)
	assert.Contains(t, record.PageContent, "Tiêu đề: Căn hộ Quận 1")
	assert.Contains(t, record.Embedding, "[")

	// 元数据的 id 字段填房源 id，存储 id 与其解耦
	metadata := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(record.Metadata), &metadata))
	assert.Equal(t, "prop-1", metadata["id"])
	assert.NotEqual(t, "prop-1", record.ID)
}

func TestHandleMessage_UpdatedActiveDeletesThenReinserts(t *testing.T) {
	service, vectorRepo, _ := newTestService()

	err := service.HandleMessage(context.Background(), propertyEventBody(t, "PROPERTY_UPDATED", "ACTIVE"))
	require.NoError(t, err)

	assert.Equal(t, []string{"prop-1"}, vectorRepo.deleted)
	assert.NotEmpty(t, vectorRepo.inserted)
}

func TestHandleMessage_UpdatedInactiveOnlyDeletes(t *testing.T) {
	service, vectorRepo, _ := newTestService()

	err := service.HandleMessage(context.Background(), propertyEventBody(t, "PROPERTY_UPDATED", "RENTED"))
	require.NoError(t, err)

	assert.Equal(t, []string{"prop-1"}, vectorRepo.deleted)
	assert.Empty(t, vectorRepo.inserted)
}

func TestHandleMessage_UpdatedUnavailableReinserts(t *testing.T) {
	service, vectorRepo, _ := newTestService()

	err := service.HandleMessage(context.Background(), propertyEventBody(t, "PROPERTY_UPDATED", "UNAVAILABLE"))
	require.NoError(t, err)

	assert.NotEmpty(t, vectorRepo.inserted)
}

func TestHandleMessage_Deleted(t *testing.T) {
	service, vectorRepo, _ := newTestService()

	err := service.HandleMessage(context.Background(), propertyEventBody(t, "PROPERTY_DELETED", "ACTIVE"))
	require.NoError(t, err)

	assert.Equal(t, []string{"prop-1"}, vectorRepo.deleted)
	assert.Empty(t, vectorRepo.inserted)
}

func TestHandleMessage_UnknownTypeIsNoop(t *testing.T) {
	service, vectorRepo, embedder := newTestService()

	err := service.HandleMessage(context.Background(), propertyEventBody(t, "PROPERTY_VIEWED", "ACTIVE"))
	require.NoError(t, err)

	assert.Empty(t, vectorRepo.deleted)
	assert.Empty(t, vectorRepo.inserted)
	assert.Zero(t, embedder.calls)
}

func TestHandleMessage_InvalidJSON(t *testing.T) {
	service, _, _ := newTestService()

	err := service.HandleMessage(context.Background(), []byte("not json"))
	require.Error(t, err)
}

func TestHandleMessage_EmbeddingFailure(t *testing.T) {
	service, vectorRepo, embedder := newTestService()
	embedder.err = fmt.Errorf("embedding unavailable")

	err := service.HandleMessage(context.Background(), propertyEventBody(t, "PROPERTY_CREATED", "ACTIVE"))
	require.Error(t, err)
	assert.Empty(t, vectorRepo.inserted)
}

func TestHandleMessage_MissingPropertyID(t *testing.T) {
	service, _, _ := newTestService()

	body, err := json.Marshal(map[string]interface{}{
		"type": "PROPERTY_CREATED",
		"data": map[string]interface{}{"title": "thiếu id"},
	})
	require.NoError(t, err)

	require.Error(t, service.HandleMessage(context.Background(), body))
}
