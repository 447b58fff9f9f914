package model

// GenerateRequest 生成回答请求
type GenerateRequest struct {
	Query string `json:"query" binding:"required"`
}

// GenerateResponse RAG 回答结果，source_documents 为被引用房源的元数据快照
type GenerateResponse struct {
	Query           string                   `json:"query"`
	Result          string                   `json:"result"`
	SourceDocuments []map[string]interface{} `json:"source_documents"`
	Slugs           []string                 `json:"slugs"`
	PageContents    []string                 `json:"page_contents"`
}

// ChatTurnContext 单轮历史对话，供后续提问拼接上下文使用
type ChatTurnContext struct {
	Human           string                   `json:"human"`
	AI              string                   `json:"ai"`
	SourceDocuments []map[string]interface{} `json:"source_documents"`
	PageContents    []string                 `json:"page_contents"`
}

// ListChatsRequest 查询聊天历史请求
type ListChatsRequest struct {
	TopK       int  `form:"top_k"`
	Skip       int  `form:"skip"`
	Pagination bool `form:"pagination"`
}
