package textsplit

import (
	"strings"
	"testing"

	"github.com/thaoanhhaa1/kltn-backend/model"
)

func makeWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = "w"
	}
	return strings.Join(words, " ")
}

func TestSplit_ShortText(t *testing.T) {
	splitter := NewTokenSplitter(DefaultChunkSize, DefaultChunkOverlap)
	text := "một văn bản ngắn"
	chunks := splitter.Split(text)

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk for short text, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("Expected text %q, got %q", text, chunks[0])
	}
}

func TestSplit_Overlap(t *testing.T) {
	splitter := NewTokenSplitter(10, 5)
	chunks := splitter.Split(makeWords(23))

	if len(chunks) < 3 {
		t.Fatalf("Expected at least 3 chunks, got %d", len(chunks))
	}

	// 每个块不超过 ChunkSize 个 token
	for i, chunk := range chunks {
		if n := len(strings.Fields(chunk)); n > 10 {
			t.Errorf("Chunk %d has %d tokens, expected <= 10", i, n)
		}
	}

	// 相邻块重叠 5 个 token：步长为 5，最后一块覆盖文本末尾
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(makeWords(23), last) {
		t.Error("Last chunk should end at the end of the text")
	}
}

func TestSplit_Restartable(t *testing.T) {
	splitter := NewTokenSplitter(10, 5)
	text := makeWords(40)

	first := splitter.Split(text)
	second := splitter.Split(text)

	if len(first) != len(second) {
		t.Fatalf("Expected same chunk count, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Chunk %d differs between runs", i)
		}
	}
}

func TestSplit_Empty(t *testing.T) {
	splitter := NewTokenSplitter(10, 5)
	if chunks := splitter.Split("   "); chunks != nil {
		t.Errorf("Expected nil for blank text, got %v", chunks)
	}
}

func TestSplitDocument_KeepsMetadata(t *testing.T) {
	splitter := NewTokenSplitter(10, 5)
	doc := model.Document{
		PageContent: makeWords(30),
		Metadata:    map[string]interface{}{"id": "p-1", "slug": "can-ho-quan-1"},
	}

	docs := splitter.SplitDocument(doc)
	if len(docs) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(docs))
	}
	for i, d := range docs {
		if d.Metadata["id"] != "p-1" || d.Metadata["slug"] != "can-ho-quan-1" {
			t.Errorf("Chunk %d lost metadata: %v", i, d.Metadata)
		}
	}
}

func TestNewTokenSplitter_InvalidOverlap(t *testing.T) {
	splitter := NewTokenSplitter(10, 20)
	if splitter.ChunkOverlap >= splitter.ChunkSize {
		t.Errorf("Overlap %d should be clamped below chunk size %d", splitter.ChunkOverlap, splitter.ChunkSize)
	}
}
