package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"github.com/thaoanhhaa1/kltn-backend/constant"
	"github.com/thaoanhhaa1/kltn-backend/model"
	"github.com/thaoanhhaa1/kltn-backend/pkg/clients/embedding"
	"github.com/thaoanhhaa1/kltn-backend/pkg/currency"
	"github.com/thaoanhhaa1/kltn-backend/pkg/tools"
	"github.com/thaoanhhaa1/kltn-backend/repository/factory"
)

// Embedder 文本向量化客户端契约
type Embedder interface {
	GetTextEmbedding(ctx context.Context, text string) ([]float64, error)
}

// ChatModel 大模型调用契约
type ChatModel interface {
	PostChatCompletionsNonStreamContent(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

// Service RAG 查询引擎：价格过滤 -> 相似度检索 -> 上下文拼接 -> 大模型 -> slug 引用
type Service struct {
	repositoryFactory factory.Factory
	embeddingClient   Embedder
	llmClient         ChatModel
	searchTopK        int
}

func NewService(repositoryFactory factory.Factory, embeddingClient Embedder, llmClient ChatModel, searchTopK int) *Service {
	if searchTopK <= 0 {
		searchTopK = constant.DefaultSearchTopK
	}

	return &Service{
		repositoryFactory: repositoryFactory,
		embeddingClient:   embeddingClient,
		llmClient:         llmClient,
		searchTopK:        searchTopK,
	}
}

// GenerateResponse 针对一个查询跑完整条 RAG 链路。
// 大模型失败或空回答不报错，返回兜底回复和空引用列表
func (s *Service) GenerateResponse(ctx context.Context, collection, query string, chatHistory []*model.ChatTurnContext) (*model.GenerateResponse, *model.Error) {
	if query == "" {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("query cannot be empty"))
	}

	priceFilter := currency.ParsePriceFilter(query)
	if priceFilter != nil {
		log.Infof("Price filter parsed from query: min=%v max=%v", priceFilter.Min, priceFilter.Max)
	}

	queryVector, err := s.embeddingClient.GetTextEmbedding(ctx, query)
	if err != nil {
		return nil, model.NewError(model.ErrorEmbedding, fmt.Errorf("failed to embed query: %w", err))
	}

	hits, searchErr := s.search(ctx, collection, embedding.VectorToString(queryVector), priceFilter)
	if searchErr != nil {
		return nil, searchErr
	}

	messages := s.buildMessages(query, hits, chatHistory)

	answer, err := s.llmClient.PostChatCompletionsNonStreamContent(ctx, messages)
	if err != nil || answer == "" {
		if err != nil {
			log.Errorf("LLM call failed, falling back: %v", err)
		}
		return &model.GenerateResponse{
			Query:           query,
			Result:          constant.FallbackAnswer,
			SourceDocuments: []map[string]interface{}{},
			Slugs:           []string{},
			PageContents:    []string{},
		}, nil
	}

	sourceDocuments, slugs, pageContents := citeListings(answer, hits, chatHistory)

	return &model.GenerateResponse{
		Query:           query,
		Result:          answer,
		SourceDocuments: sourceDocuments,
		Slugs:           slugs,
		PageContents:    pageContents,
	}, nil
}

func (s *Service) search(ctx context.Context, collection, queryVector string, priceFilter *model.PriceFilter) ([]*model.SearchHit, *model.Error) {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	vectorRepo, err := s.repositoryFactory.NewVectorIndexRepository(session)
	if err != nil {
		return nil, model.NewError(model.ErrorNewRepo, err)
	}

	hits, err := vectorRepo.Search(&model.VectorSearchCondition{
		Collection:  collection,
		QueryVector: queryVector,
		TopK:        s.searchTopK,
		PriceFilter: priceFilter,
	})
	if err != nil {
		return nil, model.NewError(model.ErrorVectorIndex, fmt.Errorf("failed to search collection %s: %w", collection, err))
	}

	return hits, nil
}

// buildMessages 系统提示词带 CONTEXT，历史按 human/ai 交替展开，最后是本轮查询
func (s *Service) buildMessages(query string, hits []*model.SearchHit, chatHistory []*model.ChatTurnContext) []openai.ChatCompletionMessage {
	context := buildContext(hits, chatHistory)

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: fmt.Sprintf(constant.QASystemPrompt, context),
		},
	}

	for _, turn := range chatHistory {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: turn.Human},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: turn.AI},
		)
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: query,
	})

	return messages
}

// buildContext 聊天历史块在前（轮次之间用 "--" 分隔），房源信息块在后
func buildContext(hits []*model.SearchHit, chatHistory []*model.ChatTurnContext) string {
	var blocks []string

	if len(chatHistory) > 0 {
		turns := make([]string, 0, len(chatHistory))
		for _, turn := range chatHistory {
			turns = append(turns, fmt.Sprintf("Human: %s\nAI: %s", turn.Human, turn.AI))
		}
		blocks = append(blocks, constant.ChatHistoryContextHeader+"\n"+
			strings.Join(turns, "\n"+constant.ChatHistoryTurnDelimiter+"\n"))
	}

	if len(hits) > 0 {
		listings := make([]string, 0, len(hits))
		for _, hit := range hits {
			listings = append(listings, hit.PageContent)
		}
		blocks = append(blocks, constant.ListingContextHeader+"\n"+strings.Join(listings, "\n\n"))
	}

	return strings.Join(blocks, "\n\n")
}

// citeListings 扫描回答正文里的 slug 字面量。
// 本轮检索结果先扫，历史引用的房源后扫，slug 去重取首次出现
func citeListings(answer string, hits []*model.SearchHit, chatHistory []*model.ChatTurnContext) ([]map[string]interface{}, []string, []string) {
	sourceDocuments := make([]map[string]interface{}, 0)
	slugs := make([]string, 0)
	pageContents := make([]string, 0)
	seen := make(map[string]bool)

	cite := func(slug string, metadata map[string]interface{}, pageContent string) {
		if slug == "" || seen[slug] || !strings.Contains(answer, slug) {
			return
		}
		seen[slug] = true
		sourceDocuments = append(sourceDocuments, metadata)
		slugs = append(slugs, slug)
		pageContents = append(pageContents, pageContent)
	}

	for _, hit := range hits {
		cite(metadataSlug(hit.Metadata), hit.Metadata, hit.PageContent)
	}

	for _, turn := range chatHistory {
		for i, doc := range turn.SourceDocuments {
			pageContent := ""
			if i < len(turn.PageContents) {
				pageContent = turn.PageContents[i]
			}
			cite(metadataSlug(doc), doc, pageContent)
		}
	}

	return sourceDocuments, slugs, pageContents
}

func metadataSlug(metadata map[string]interface{}) string {
	slug, _ := metadata["slug"].(string)
	return slug
}
