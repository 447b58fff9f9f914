package xormimplement

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/thaoanhhaa1/kltn-backend/entity"
	"github.com/thaoanhhaa1/kltn-backend/model"
	"github.com/thaoanhhaa1/kltn-backend/repository"
)

// 表名只允许标识符字符，防止拼接进 DDL 的 collection 带注入
var collectionNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type VectorIndexRepository struct {
	session *Session
}

func NewVectorIndexRepository(session *Session) repository.VectorIndexRepository {
	return &VectorIndexRepository{session: session}
}

func validateCollectionName(collection string) error {
	if !collectionNamePattern.MatchString(collection) {
		return fmt.Errorf("invalid collection name: %s", collection)
	}
	return nil
}

// EnsureCollection 建表建索引，幂等，服务启动时调用一次
func (r *VectorIndexRepository) EnsureCollection(collection string) error {
	if err := validateCollectionName(collection); err != nil {
		return err
	}

	if _, err := r.session.Exec("CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY,
			page_content text NOT NULL,
			metadata jsonb NOT NULL DEFAULT '{}'::jsonb,
			embedding vector(768)
		)
	`, collection)
	if _, err := r.session.Exec(createTable); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", collection, err)
	}

	// 按房源 id 删除时走这个索引
	createIndex := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_%s_property_id ON %s ((metadata->>'id'))",
		collection, collection,
	)
	if _, err := r.session.Exec(createIndex); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", collection, err)
	}

	log.Infof("Vector collection %s is ready", collection)
	return nil
}

func (r *VectorIndexRepository) Insert(collection string, data []*entity.VectorRecord) error {
	if err := validateCollectionName(collection); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("vector records cannot be empty")
	}

	for _, item := range data {
		if item == nil {
			return fmt.Errorf("vector record cannot be nil")
		}
	}

	_, err := r.session.Table(collection).Insert(data)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", collection, err)
	}

	return nil
}

// DeleteByPropertyID 删除同一房源的全部 chunk
func (r *VectorIndexRepository) DeleteByPropertyID(collection string, propertyID string) error {
	if err := validateCollectionName(collection); err != nil {
		return err
	}
	if propertyID == "" {
		return fmt.Errorf("property id is required")
	}

	sql := fmt.Sprintf("DELETE FROM %s WHERE metadata->>'id' = $1", collection)
	if _, err := r.session.Exec(sql, propertyID); err != nil {
		return fmt.Errorf("failed to delete property %s from %s: %w", propertyID, collection, err)
	}

	return nil
}

// Search 向量相似度检索（使用 pgvector 的余弦相似度）
// 1 - (embedding <=> query_vector) 得到相似度分数（越大越相似）
func (r *VectorIndexRepository) Search(condition *model.VectorSearchCondition) ([]*model.SearchHit, error) {
	if condition == nil {
		return nil, fmt.Errorf("vector search condition cannot be nil")
	}
	if err := validateCollectionName(condition.Collection); err != nil {
		return nil, err
	}
	if condition.QueryVector == "" {
		return nil, fmt.Errorf("query_vector is required")
	}
	if condition.TopK <= 0 {
		condition.TopK = 5
	}

	sql := fmt.Sprintf(`
		SELECT page_content, metadata,
		       1 - (embedding <=> '%s'::vector) as similarity
		FROM %s
	`, condition.QueryVector, condition.Collection)

	var args []interface{}
	argIndex := 1

	// 价格过滤作用在元数据投影上
	if condition.PriceFilter != nil {
		if condition.PriceFilter.Min != nil {
			sql += fmt.Sprintf(" %s (metadata->>'price')::float8 >= $%d", whereOrAnd(argIndex), argIndex)
			args = append(args, *condition.PriceFilter.Min)
			argIndex++
		}
		if condition.PriceFilter.Max != nil {
			sql += fmt.Sprintf(" %s (metadata->>'price')::float8 <= $%d", whereOrAnd(argIndex), argIndex)
			args = append(args, *condition.PriceFilter.Max)
			argIndex++
		}
	}

	sql += fmt.Sprintf(" ORDER BY similarity DESC LIMIT %d", condition.TopK)

	rows, err := r.session.SQL(sql, args...).QueryString()
	if err != nil {
		return nil, fmt.Errorf("failed to vector search %s: %w", condition.Collection, err)
	}

	results := make([]*model.SearchHit, 0, len(rows))
	for _, row := range rows {
		hit := &model.SearchHit{}
		hit.PageContent = row["page_content"]

		if raw := row["metadata"]; raw != "" {
			metadata := make(map[string]interface{})
			if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata: %w", err)
			}
			hit.Metadata = metadata
		}

		score, err := strconv.ParseFloat(row["similarity"], 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse similarity: %w", err)
		}
		hit.Score = score

		results = append(results, hit)
	}

	return results, nil
}

func whereOrAnd(argIndex int) string {
	if argIndex == 1 {
		return "WHERE"
	}
	return "AND"
}
