package model

import "encoding/json"

// PropertyEvent 属性生命周期事件信封，由 property-service 通过 fanout exchange 发布
type PropertyEvent struct {
	Type string         `json:"type"`
	Data PropertyRecord `json:"data"`
}

// Address 属性地址
type Address struct {
	Street   string `json:"street"`
	Ward     string `json:"ward"`
	District string `json:"district"`
	City     string `json:"city"`
}

// RentalCondition 租赁条件，eg: {"type": "Đặt cọc", "value": "1 tháng"}
type RentalCondition struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// PropertyAttribute 属性标签，按 Type 分组展示，eg: Amenity/Highlight/Facility
type PropertyAttribute struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// PropertyType 房屋类型
type PropertyType struct {
	Name string `json:"name"`
}

// Owner 房东信息
type Owner struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// PropertyRecord 上游属性记录的规范形态（新版嵌套 schema：
// rentalConditions[].type/value、attributes[].type/name、type.name）。
// ID 由消费方从 PropertyID 写入，索引元数据统一用 "id" 字段。
type PropertyRecord struct {
	ID               string              `json:"id"`
	PropertyID       string              `json:"propertyId"`
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	Latitude         *float64            `json:"latitude"`
	Longitude        *float64            `json:"longitude"`
	Address          *Address            `json:"address"`
	Price            float64             `json:"price"`
	RentalConditions []RentalCondition   `json:"rentalConditions"`
	Attributes       []PropertyAttribute `json:"attributes"`
	Images           []string            `json:"images"`
	Owner            *Owner              `json:"owner"`
	Slug             string              `json:"slug"`
	Type             *PropertyType       `json:"type"`
	Status           string              `json:"status"`
}

// AsMap 转成按 json tag 命名的 map，供元数据投影按字段名取值
func (p *PropertyRecord) AsMap() (map[string]interface{}, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	result := make(map[string]interface{})
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return result, nil
}
