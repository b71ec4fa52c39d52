package contract

import (
	"context"

	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
)

type QuizResultRepository interface {
	Create(ctx context.Context, result *entity.QuizResult) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QuizResult, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
