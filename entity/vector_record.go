package entity

const (
	VectorRecordFieldID          = "id"
	VectorRecordFieldPageContent = "page_content"
	VectorRecordFieldMetadata    = "metadata"
	VectorRecordFieldEmbedding   = "embedding"
)

// VectorRecord 向量索引中的一条 chunk 记录，表名由 collection 决定
type VectorRecord struct {
	ID          string `xorm:"pk id" json:"id"`
	PageContent string `xorm:"page_content" json:"page_content"`
	Metadata    string `xorm:"metadata" json:"metadata"`   // JSONB，房源元数据投影
	Embedding   string `xorm:"embedding" json:"embedding"` // vector(768) 字面量
}
