package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
)

type CourseMaterialRepository interface {
	Create(ctx context.Context, material *entity.CourseMaterial) error
	Update(ctx context.Context, material *entity.CourseMaterial) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CourseMaterial, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CourseMaterial, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
