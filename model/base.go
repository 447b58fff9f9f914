package model

// Pager 分页结构
type Pager struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Order 排序结构
type Order struct {
	OrderAsc bool   `json:"order_asc" form:"order_asc"` // 是否升序，eg: false
	OrderBy  string `json:"order_by" form:"order_by"`   // 排序字段，eg: "id"
}

// GetChatTurnsCondition 查询条件（带分页和排序）
type GetChatTurnsCondition struct {
	UserID *string `json:"user_id"`
	*Pager
	*Order
}

func (g *GetChatTurnsCondition) GetPager() *Pager {
	return g.Pager
}

func (g *GetChatTurnsCondition) GetOrder() *Order {
	return g.Order
}
