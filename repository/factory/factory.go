package factory

import (
	"context"

	"github.com/thaoanhhaa1/kltn-backend/repository"
	"github.com/thaoanhhaa1/kltn-backend/repository/interfaces"
)

type Factory interface {
	NewSession(ctx context.Context) interfaces.Session
	NewChatTurnRepository(session interfaces.Session) (repository.ChatTurnRepository, error)
	NewVectorIndexRepository(session interfaces.Session) (repository.VectorIndexRepository, error)
}
