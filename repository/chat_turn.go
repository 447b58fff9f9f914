package repository

import (
	"github.com/thaoanhhaa1/kltn-backend/entity"
	"github.com/thaoanhhaa1/kltn-backend/model"
)

type ChatTurnRepository interface {
	Insert(data *entity.ChatTurn) error
	List(condition *model.GetChatTurnsCondition) ([]*entity.ChatTurn, int64, error)
	ListNoCount(condition *model.GetChatTurnsCondition) ([]*entity.ChatTurn, error)
	// GetRecentByUser 获取用户最近的 N 轮对话，按时间升序返回
	GetRecentByUser(userID string, limit int) ([]*entity.ChatTurn, error)
}
