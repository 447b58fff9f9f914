package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/thaoanhhaa1/kltn-backend/constant"
	"github.com/thaoanhhaa1/kltn-backend/entity"
	"github.com/thaoanhhaa1/kltn-backend/model"
	"github.com/thaoanhhaa1/kltn-backend/pkg/clients/embedding"
	"github.com/thaoanhhaa1/kltn-backend/pkg/clients/rabbitmq"
	"github.com/thaoanhhaa1/kltn-backend/pkg/textsplit"
	"github.com/thaoanhhaa1/kltn-backend/pkg/tools"
	"github.com/thaoanhhaa1/kltn-backend/repository/factory"
	"github.com/thaoanhhaa1/kltn-backend/service/document"
)

const (
	// 重连退避区间
	initialBackoff = time.Second
	maxBackoff     = time.Minute
)

// BatchEmbedder 批量向量化契约
type BatchEmbedder interface {
	GetTextEmbeddingBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Subscriber 消息订阅契约，阻塞消费直到连接断开或 ctx 取消
type Subscriber interface {
	SubscribeFanout(ctx context.Context, exchange string, handler rabbitmq.Handler) error
}

// Service 属性事件消费管道：事件 -> 文档 -> 分块 -> 向量 -> 索引
type Service struct {
	repositoryFactory factory.Factory
	embeddingClient   BatchEmbedder
	builder           *document.Builder
	splitter          *textsplit.TokenSplitter
	collection        string
}

func NewService(repositoryFactory factory.Factory, embeddingClient BatchEmbedder, collection string) *Service {
	return &Service{
		repositoryFactory: repositoryFactory,
		embeddingClient:   embeddingClient,
		builder:           document.NewBuilder(nil),
		splitter:          textsplit.NewTokenSplitter(textsplit.DefaultChunkSize, textsplit.DefaultChunkOverlap),
		collection:        collection,
	}
}

// EnsureCollection 建表建索引，幂等，启动时调用一次
func (s *Service) EnsureCollection(ctx context.Context) error {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	vectorRepo, err := s.repositoryFactory.NewVectorIndexRepository(session)
	if err != nil {
		return err
	}

	return vectorRepo.EnsureCollection(s.collection)
}

// RunWorker 常驻消费循环，连接断开后按指数退避重连，ctx 取消时退出
func (s *Service) RunWorker(ctx context.Context, subscriber Subscriber, exchange string) {
	backoff := initialBackoff

	for {
		startedAt := time.Now()
		err := subscriber.SubscribeFanout(ctx, exchange, s.HandleMessage)
		if ctx.Err() != nil {
			log.Infof("Ingestion worker stopped: %v", ctx.Err())
			return
		}

		// 稳定消费过一段时间后重置退避
		if time.Since(startedAt) > maxBackoff {
			backoff = initialBackoff
		}

		log.Errorf("Ingestion subscription lost, reconnecting in %v: %v", backoff, err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// HandleMessage 解码事件信封并按事件类型分发，未知类型忽略
func (s *Service) HandleMessage(ctx context.Context, body []byte) error {
	var event model.PropertyEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return model.NewError(model.ErrorBrokerDecode, fmt.Errorf("failed to decode property event: %w", err))
	}

	switch event.Type {
	case constant.EventPropertyCreated:
		return s.handleCreated(ctx, &event.Data)
	case constant.EventPropertyUpdated:
		return s.handleUpdated(ctx, &event.Data)
	case constant.EventPropertyDeleted:
		return s.handleDeleted(ctx, &event.Data)
	default:
		log.Debugf("Ignoring property event with type %s", event.Type)
		return nil
	}
}

func (s *Service) handleCreated(ctx context.Context, record *model.PropertyRecord) error {
	if err := s.indexProperty(ctx, record); err != nil {
		return fmt.Errorf("failed to index created property %s: %w", record.PropertyID, err)
	}

	log.Infof("Indexed created property %s", record.PropertyID)
	return nil
}

// handleUpdated 先删旧 chunk 防重复，仅 ACTIVE/UNAVAILABLE 状态重建索引
func (s *Service) handleUpdated(ctx context.Context, record *model.PropertyRecord) error {
	if err := s.deleteProperty(ctx, record.PropertyID); err != nil {
		return fmt.Errorf("failed to delete stale entries for property %s: %w", record.PropertyID, err)
	}

	if record.Status != constant.PropertyStatusActive && record.Status != constant.PropertyStatusUnavailable {
		log.Infof("Property %s updated with status %s, index entries removed", record.PropertyID, record.Status)
		return nil
	}

	if err := s.indexProperty(ctx, record); err != nil {
		return fmt.Errorf("failed to reindex updated property %s: %w", record.PropertyID, err)
	}

	log.Infof("Reindexed updated property %s", record.PropertyID)
	return nil
}

func (s *Service) handleDeleted(ctx context.Context, record *model.PropertyRecord) error {
	if err := s.deleteProperty(ctx, record.PropertyID); err != nil {
		return fmt.Errorf("failed to delete property %s: %w", record.PropertyID, err)
	}

	log.Infof("Removed property %s from index", record.PropertyID)
	return nil
}

// indexProperty 构建文档 -> 分块 -> 批量向量化 -> 写入索引
func (s *Service) indexProperty(ctx context.Context, record *model.PropertyRecord) error {
	if record.PropertyID == "" {
		return fmt.Errorf("property event data has no propertyId")
	}

	// 元数据统一用 id 字段存房源 id，删除走 metadata 过滤
	record.ID = record.PropertyID

	doc, err := s.builder.Build(record)
	if err != nil {
		return err
	}

	chunks := s.splitter.SplitDocument(*doc)
	if len(chunks) == 0 {
		return fmt.Errorf("property %s rendered to empty content", record.PropertyID)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.PageContent
	}

	vectors, err := s.embeddingClient.GetTextEmbeddingBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed property %s: %w", record.PropertyID, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count %d does not match chunk count %d", len(vectors), len(chunks))
	}

	metadataRaw, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata for property %s: %w", record.PropertyID, err)
	}

	records := make([]*entity.VectorRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = &entity.VectorRecord{
			// 存储 id 与房源 id 解耦，每次插入都是新随机 id
			ID:          uuid.NewString(),
			PageContent: chunk.PageContent,
			Metadata:    string(metadataRaw),
			Embedding:   embedding.VectorToString(vectors[i]),
		}
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	vectorRepo, err := s.repositoryFactory.NewVectorIndexRepository(session)
	if err != nil {
		return err
	}

	return vectorRepo.Insert(s.collection, records)
}

func (s *Service) deleteProperty(ctx context.Context, propertyID string) error {
	if propertyID == "" {
		return fmt.Errorf("property event data has no propertyId")
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	vectorRepo, err := s.repositoryFactory.NewVectorIndexRepository(session)
	if err != nil {
		return err
	}

	return vectorRepo.DeleteByPropertyID(s.collection, propertyID)
}

// DeleteDocument 按房源 id 删除某个 collection 下的全部索引条目（HTTP 删除接口用）
func (s *Service) DeleteDocument(ctx context.Context, collection, documentID string) *model.Error {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	vectorRepo, err := s.repositoryFactory.NewVectorIndexRepository(session)
	if err != nil {
		return model.NewError(model.ErrorNewRepo, err)
	}

	if err := vectorRepo.DeleteByPropertyID(collection, documentID); err != nil {
		return model.NewError(model.ErrorVectorIndex, err)
	}

	return nil
}
