package model

// VectorSearchCondition 向量相似度检索条件
type VectorSearchCondition struct {
	Collection  string       `json:"collection"`
	QueryVector string       `json:"query_vector"` // pgvector 字面量，如 [0.1,0.2,...]
	TopK        int          `json:"top_k"`
	PriceFilter *PriceFilter `json:"price_filter"`
}
