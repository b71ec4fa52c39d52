package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
)

// ScoredCourseChunk pairs a chunk with its cosine similarity to the query vector.
type ScoredCourseChunk struct {
	Chunk      *entity.CourseChunk
	Similarity float64
}

type CourseChunkRepository interface {
	Create(ctx context.Context, chunk *entity.CourseChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.CourseChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByMaterialId(ctx context.Context, materialId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CourseChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CourseChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64, chapterId string) ([]*ScoredCourseChunk, error)
}
