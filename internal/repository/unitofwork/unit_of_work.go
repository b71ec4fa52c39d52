package unitofwork

import (
	"context"

	"github.com/parv18050212/ai-tutor/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CourseChunkRepository() contract.CourseChunkRepository
	CourseMaterialRepository() contract.CourseMaterialRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatTurnRepository() contract.ChatTurnRepository
	QuizResultRepository() contract.QuizResultRepository
}
