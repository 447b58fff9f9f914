package repository

import (
	"github.com/thaoanhhaa1/kltn-backend/entity"
	"github.com/thaoanhhaa1/kltn-backend/model"
)

type VectorIndexRepository interface {
	// EnsureCollection 建表建索引，幂等
	EnsureCollection(collection string) error
	Insert(collection string, data []*entity.VectorRecord) error
	// DeleteByPropertyID 删除同一房源的全部 chunk
	DeleteByPropertyID(collection string, propertyID string) error
	// Search 向量相似度检索
	Search(condition *model.VectorSearchCondition) ([]*model.SearchHit, error)
}
