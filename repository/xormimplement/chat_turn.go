package xormimplement

import (
	"fmt"

	"xorm.io/builder"

	"github.com/thaoanhhaa1/kltn-backend/entity"
	"github.com/thaoanhhaa1/kltn-backend/model"
	"github.com/thaoanhhaa1/kltn-backend/repository"
)

type ChatTurnRepository struct {
	session *Session
}

func NewChatTurnRepository(session *Session) repository.ChatTurnRepository {
	return &ChatTurnRepository{session: session}
}

func buildChatTurnQueryConditions(condition *model.GetChatTurnsCondition) builder.Cond {
	var conds []builder.Cond

	if condition.UserID != nil && *condition.UserID != "" {
		conds = append(conds, builder.Eq{entity.ChatTurnFieldUserID: *condition.UserID})
	}

	if len(conds) == 0 {
		return nil
	}
	return builder.And(conds...)
}

func (r *ChatTurnRepository) Insert(data *entity.ChatTurn) error {
	if data == nil {
		return fmt.Errorf("chat_turns data cannot be nil")
	}

	_, err := r.session.Table(entity.TableNameChatTurns).Insert(data)
	if err != nil {
		return fmt.Errorf("failed to insert chat_turns: %w", err)
	}

	return nil
}

func (r *ChatTurnRepository) List(condition *model.GetChatTurnsCondition) ([]*entity.ChatTurn, int64, error) {
	if condition == nil {
		return nil, 0, fmt.Errorf("get condition cannot be nil")
	}

	cond := buildChatTurnQueryConditions(condition)

	session := r.session.Table(entity.TableNameChatTurns)
	if cond != nil {
		session = session.Where(cond)
	}

	pagerOrder(session, condition, WithDefaultOrderField(entity.ChatTurnFieldCreatedAt))

	var results []*entity.ChatTurn
	total, err := session.FindAndCount(&results)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list chat_turns: %w", err)
	}

	return results, total, nil
}

func (r *ChatTurnRepository) ListNoCount(condition *model.GetChatTurnsCondition) ([]*entity.ChatTurn, error) {
	if condition == nil {
		return nil, fmt.Errorf("get condition cannot be nil")
	}

	cond := buildChatTurnQueryConditions(condition)

	session := r.session.Table(entity.TableNameChatTurns)
	if cond != nil {
		session = session.Where(cond)
	}

	pagerOrder(session, condition, WithDefaultOrderField(entity.ChatTurnFieldCreatedAt))

	var results []*entity.ChatTurn
	if err := session.Find(&results); err != nil {
		return nil, fmt.Errorf("failed to list chat_turns: %w", err)
	}

	return results, nil
}

// GetRecentByUser 获取用户最近的 N 轮对话
func (r *ChatTurnRepository) GetRecentByUser(userID string, limit int) ([]*entity.ChatTurn, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if limit <= 0 {
		limit = 10
	}

	var results []*entity.ChatTurn
	err := r.session.Table(entity.TableNameChatTurns).
		Where(builder.Eq{entity.ChatTurnFieldUserID: userID}).
		OrderBy(entity.ChatTurnFieldCreatedAt + " DESC").
		Limit(limit).
		Find(&results)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent chat_turns: %w", err)
	}

	// 反转结果，使其按时间升序排列
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}

	return results, nil
}
