package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thaoanhhaa1/kltn-backend/model"
)

// DefaultFieldNames 元数据投影字段，按 json tag 命名
var DefaultFieldNames = []string{
	"id", "title", "description", "latitude", "longitude", "address", "attributes",
	"images", "rentalConditions", "price", "owner", "slug", "type",
}

// Builder 把房源记录转成可检索单元：规范化文本 + 固定元数据投影
type Builder struct {
	fieldNames []string
}

func NewBuilder(fieldNames []string) *Builder {
	if len(fieldNames) == 0 {
		fieldNames = DefaultFieldNames
	}
	return &Builder{fieldNames: fieldNames}
}

// Build 渲染文本和元数据投影。投影严格按字段列表取值，缺失字段置 nil
func (b *Builder) Build(record *model.PropertyRecord) (*model.Document, error) {
	if record == nil {
		return nil, fmt.Errorf("property record cannot be nil")
	}

	raw, err := record.AsMap()
	if err != nil {
		return nil, fmt.Errorf("failed to project property record: %w", err)
	}

	metadata := make(map[string]interface{}, len(b.fieldNames))
	for _, field := range b.fieldNames {
		metadata[field] = raw[field]
	}

	return &model.Document{
		PageContent: RenderContent(record),
		Metadata:    metadata,
	}, nil
}

// RenderContent 生成确定性的多行越南语描述。
// 行序是检索契约的一部分：嵌入相似度依赖这段文本的措辞和字段顺序
func RenderContent(record *model.PropertyRecord) string {
	var lines []string

	lines = append(lines, "Tiêu đề: "+record.Title)
	lines = append(lines, "Mô tả: "+record.Description)

	if record.Type != nil {
		lines = append(lines, "Loại nhà: "+record.Type.Name)
	}

	if record.Address != nil {
		lines = append(lines, fmt.Sprintf("Địa chỉ: %s, %s, %s, %s",
			record.Address.Street, record.Address.Ward, record.Address.District, record.Address.City))
	}

	for _, condition := range record.RentalConditions {
		lines = append(lines, condition.Type+": "+condition.Value)
	}

	lines = append(lines, renderAttributes(record.Attributes)...)

	if record.Owner != nil {
		lines = append(lines, fmt.Sprintf("Chủ nhà: %s (%s, %s)",
			record.Owner.Name, record.Owner.Email, record.Owner.PhoneNumber))
	}

	price := "Giá: " + FormatPrice(record.Price)
	if record.Slug != "" {
		price += fmt.Sprintf(" (Slug: %s)", record.Slug)
	}
	lines = append(lines, price)

	return strings.Join(lines, "\n")
}

// renderAttributes 按 type 分组，组顺序取首次出现顺序，组内名字逗号拼接
func renderAttributes(attributes []model.PropertyAttribute) []string {
	var types []string
	grouped := make(map[string][]string)

	for _, attr := range attributes {
		if _, ok := grouped[attr.Type]; !ok {
			types = append(types, attr.Type)
		}
		grouped[attr.Type] = append(grouped[attr.Type], attr.Name)
	}

	lines := make([]string, 0, len(types))
	for _, t := range types {
		lines = append(lines, t+": "+strings.Join(grouped[t], ", "))
	}
	return lines
}

// FormatPrice 整数价格不带小数位
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
