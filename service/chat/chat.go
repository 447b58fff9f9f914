package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/thaoanhhaa1/kltn-backend/constant"
	"github.com/thaoanhhaa1/kltn-backend/entity"
	"github.com/thaoanhhaa1/kltn-backend/model"
	"github.com/thaoanhhaa1/kltn-backend/pkg/tools"
	"github.com/thaoanhhaa1/kltn-backend/repository/factory"
)

// Generator RAG 查询引擎契约
type Generator interface {
	GenerateResponse(ctx context.Context, collection, query string, chatHistory []*model.ChatTurnContext) (*model.GenerateResponse, *model.Error)
}

// Service 对话编排：读历史（带缓存）-> RAG -> 持久化本轮 -> 失效缓存
type Service struct {
	repositoryFactory factory.Factory
	ragService        Generator
	historyCache      HistoryCache
	collection        string
	historyTopK       int
	cacheTTL          time.Duration
}

func NewService(repositoryFactory factory.Factory, ragService Generator, historyCache HistoryCache, collection string, historyTopK int, cacheTTL time.Duration) *Service {
	if historyTopK <= 0 {
		historyTopK = constant.DefaultChatHistoryTopK
	}

	return &Service{
		repositoryFactory: repositoryFactory,
		ragService:        ragService,
		historyCache:      historyCache,
		collection:        collection,
		historyTopK:       historyTopK,
		cacheTTL:          cacheTTL,
	}
}

// Generate 处理一次提问并落库一轮对话
func (s *Service) Generate(ctx context.Context, userID, query string) (*model.GenerateResponse, *model.Error) {
	if userID == "" {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("user id cannot be empty"))
	}

	chatHistory, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	response, err := s.ragService.GenerateResponse(ctx, s.collection, query, chatHistory)
	if err != nil {
		return nil, err
	}

	if err := s.appendTurn(ctx, userID, response); err != nil {
		return nil, err
	}

	s.invalidateHistory(ctx, userID)

	return response, nil
}

// ListChats 查询用户聊天历史，按时间倒序。pagination=true 时带总数
func (s *Service) ListChats(ctx context.Context, userID string, req *model.ListChatsRequest) ([]*entity.ChatTurn, int64, *model.Error) {
	if userID == "" {
		return nil, 0, model.NewError(model.ErrorParams, fmt.Errorf("user id cannot be empty"))
	}

	limit := req.TopK
	if limit <= 0 {
		limit = s.historyTopK
	}

	condition := &model.GetChatTurnsCondition{
		UserID: &userID,
		Pager:  &model.Pager{Limit: limit, Offset: req.Skip},
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	chatRepo, err := s.repositoryFactory.NewChatTurnRepository(session)
	if err != nil {
		return nil, 0, model.NewError(model.ErrorNewRepo, err)
	}

	if req.Pagination {
		chats, total, err := chatRepo.List(condition)
		if err != nil {
			return nil, 0, model.NewError(model.ErrorDB, err)
		}
		return chats, total, nil
	}

	chats, err := chatRepo.ListNoCount(condition)
	if err != nil {
		return nil, 0, model.NewError(model.ErrorDB, err)
	}
	return chats, int64(len(chats)), nil
}

// loadHistory 读最近 N 轮对话，缓存命中直接用，miss 时回源并写缓存
func (s *Service) loadHistory(ctx context.Context, userID string) ([]*model.ChatTurnContext, *model.Error) {
	cacheKey := historyCacheKey(userID)

	if s.historyCache != nil {
		if raw, ok, err := s.historyCache.Get(ctx, cacheKey); err != nil {
			log.Warnf("Failed to read chat history cache for user %s: %v", userID, err)
		} else if ok {
			var chatHistory []*model.ChatTurnContext
			if err := json.Unmarshal([]byte(raw), &chatHistory); err == nil {
				return chatHistory, nil
			}
			log.Warnf("Dropping corrupted chat history cache for user %s", userID)
		}
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	chatRepo, err := s.repositoryFactory.NewChatTurnRepository(session)
	if err != nil {
		return nil, model.NewError(model.ErrorNewRepo, err)
	}

	turns, err := chatRepo.GetRecentByUser(userID, s.historyTopK)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, err)
	}

	chatHistory := make([]*model.ChatTurnContext, 0, len(turns))
	for _, turn := range turns {
		chatHistory = append(chatHistory, turnToContext(turn))
	}

	if s.historyCache != nil {
		if raw, err := json.Marshal(chatHistory); err == nil {
			if err := s.historyCache.Set(ctx, cacheKey, string(raw), s.cacheTTL); err != nil {
				log.Warnf("Failed to cache chat history for user %s: %v", userID, err)
			}
		}
	}

	return chatHistory, nil
}

// appendTurn 持久化一轮不可变对话记录
func (s *Service) appendTurn(ctx context.Context, userID string, response *model.GenerateResponse) *model.Error {
	sourceDocuments, err := json.Marshal(response.SourceDocuments)
	if err != nil {
		return model.NewError(model.ErrorParams, fmt.Errorf("failed to encode source documents: %w", err))
	}

	pageContents, err := json.Marshal(response.PageContents)
	if err != nil {
		return model.NewError(model.ErrorParams, fmt.Errorf("failed to encode page contents: %w", err))
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	chatRepo, repoErr := s.repositoryFactory.NewChatTurnRepository(session)
	if repoErr != nil {
		return model.NewError(model.ErrorNewRepo, repoErr)
	}

	turn := &entity.ChatTurn{
		UserID:          userID,
		Request:         response.Query,
		Response:        response.Result,
		SourceDocuments: string(sourceDocuments),
		PageContents:    string(pageContents),
	}

	if err := chatRepo.Insert(turn); err != nil {
		return model.NewError(model.ErrorDB, err)
	}

	return nil
}

func (s *Service) invalidateHistory(ctx context.Context, userID string) {
	if s.historyCache == nil {
		return
	}

	if err := s.historyCache.Del(ctx, historyCacheKey(userID)); err != nil {
		log.Warnf("Failed to invalidate chat history cache for user %s: %v", userID, err)
	}
}

// turnToContext 实体行转上下文，JSON 字段解码失败按空处理
func turnToContext(turn *entity.ChatTurn) *model.ChatTurnContext {
	chatContext := &model.ChatTurnContext{
		Human: turn.Request,
		AI:    turn.Response,
	}

	if turn.SourceDocuments != "" {
		if err := json.Unmarshal([]byte(turn.SourceDocuments), &chatContext.SourceDocuments); err != nil {
			log.Warnf("Failed to decode source documents for chat turn %d: %v", turn.ID, err)
		}
	}
	if turn.PageContents != "" {
		if err := json.Unmarshal([]byte(turn.PageContents), &chatContext.PageContents); err != nil {
			log.Warnf("Failed to decode page contents for chat turn %d: %v", turn.ID, err)
		}
	}

	return chatContext
}

func historyCacheKey(userID string) string {
	return "chat:history:" + userID
}
