package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// IncrementMessageCount bumps message_count atomically and returns the new value.
	IncrementMessageCount(ctx context.Context, sessionId uuid.UUID) (int, error)
	// Touch bumps updated_at without rewriting the row, so concurrent
	// summary writes are never clobbered by a stale full-row update.
	Touch(ctx context.Context, sessionId uuid.UUID) error
}
