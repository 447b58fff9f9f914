package model

// Document 可检索单元：规范化文本 + 固定的元数据投影
type Document struct {
	PageContent string                 `json:"page_content"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// SearchHit 相似度检索结果，Score 为余弦相似度（越大越相似）
type SearchHit struct {
	Document
	Score float64 `json:"score"`
}

// PriceFilter 从查询中解析出的价格约束，两端都可缺省
type PriceFilter struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}
