package textsplit

import (
	"strings"

	"github.com/thaoanhhaa1/kltn-backend/model"
)

const (
	// DefaultChunkSize 每个 chunk 的最大 token 数
	DefaultChunkSize = 512
	// DefaultChunkOverlap 相邻 chunk 的重叠 token 数
	DefaultChunkOverlap = 256
)

// TokenSplitter 按 token 数切分长文本，相邻块保留重叠窗口以保持上下文连续。
// token 以空白分词，切分结果保序、可重复遍历。
type TokenSplitter struct {
	ChunkSize    int
	ChunkOverlap int
}

func NewTokenSplitter(chunkSize, chunkOverlap int) *TokenSplitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}

	return &TokenSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
	}
}

// Split 把文本切成重叠的 token 片段，首个片段对应文本开头
func (s *TokenSplitter) Split(text string) []string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	if len(tokens) <= s.ChunkSize {
		return []string{strings.Join(tokens, " ")}
	}

	step := s.ChunkSize - s.ChunkOverlap
	chunks := make([]string, 0, (len(tokens)+step-1)/step)

	for start := 0; start < len(tokens); start += step {
		end := start + s.ChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}

		chunks = append(chunks, strings.Join(tokens[start:end], " "))

		if end == len(tokens) {
			break
		}
	}

	return chunks
}

// SplitDocument 切分文档内容，每个 chunk 原样携带文档元数据
func (s *TokenSplitter) SplitDocument(doc model.Document) []model.Document {
	parts := s.Split(doc.PageContent)

	docs := make([]model.Document, 0, len(parts))
	for _, part := range parts {
		docs = append(docs, model.Document{
			PageContent: part,
			Metadata:    doc.Metadata,
		})
	}

	return docs
}
