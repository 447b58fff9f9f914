package entity

import "time"

const (
	TableNameChatTurns = "chat_turns"

	ChatTurnFieldID              = "id"
	ChatTurnFieldUserID          = "user_id"
	ChatTurnFieldRequest         = "request"
	ChatTurnFieldResponse        = "response"
	ChatTurnFieldSourceDocuments = "source_documents"
	ChatTurnFieldPageContents    = "page_contents"
	ChatTurnFieldCreatedAt       = "created_at"
	ChatTurnFieldUpdatedAt       = "updated_at"
)

// ChatTurn 一轮对话，创建后不可变，按 created_at 倒序读回作为聊天历史
type ChatTurn struct {
	ID              int64     `xorm:"pk autoincr id" json:"id"`
	UserID          string    `xorm:"user_id" json:"user_id"`
	Request         string    `xorm:"request" json:"request"`
	Response        string    `xorm:"response" json:"response"`
	SourceDocuments string    `xorm:"source_documents" json:"source_documents"` // JSONB，被引用房源元数据快照数组
	PageContents    string    `xorm:"page_contents" json:"page_contents"`       // JSONB，被引用 chunk 原文数组
	CreatedAt       time.Time `xorm:"created created_at" json:"created_at"`
	UpdatedAt       time.Time `xorm:"updated updated_at" json:"updated_at"`
}

func (e *ChatTurn) TableName() string {
	return TableNameChatTurns
}
