package constant

const (
	DefaultPageLimit = 10

	// 聊天历史默认条数
	DefaultChatHistoryTopK = 5

	// 检索默认返回条数
	DefaultSearchTopK = 5
)

const (
	EmptyString = ""
)

// 属性事件类型（上游 property-service 发布）
const (
	EventPropertyCreated = "PROPERTY_CREATED"
	EventPropertyUpdated = "PROPERTY_UPDATED"
	EventPropertyDeleted = "PROPERTY_DELETED"
)

// 重建索引时保留的属性状态
const (
	PropertyStatusActive      = "ACTIVE"
	PropertyStatusUnavailable = "UNAVAILABLE"
)
