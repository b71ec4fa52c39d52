package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/mapper"
	"github.com/parv18050212/ai-tutor/internal/model"
	"github.com/parv18050212/ai-tutor/internal/repository/contract"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
)

type CourseChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CourseChunkMapper
}

func NewCourseChunkRepository(db *gorm.DB) contract.CourseChunkRepository {
	return &CourseChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewCourseChunkMapper(),
	}
}

func (r *CourseChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CourseChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.CourseChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *CourseChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.CourseChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.CourseChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *CourseChunkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CourseChunk{}, id).Error
}

func (r *CourseChunkRepositoryImpl) DeleteByMaterialId(ctx context.Context, materialId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("material_id = ?", materialId).Delete(&model.CourseChunk{}).Error
}

func (r *CourseChunkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CourseChunk, error) {
	var m model.CourseChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CourseChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CourseChunk, error) {
	var models []*model.CourseChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CourseChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *CourseChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.CourseChunk{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SearchSimilarWithScore returns chunks with similarity scores, filtered by threshold.
// Cosine distance in pgvector is 1 - cosine_similarity, so we compute
// 1 - (embedding <=> query_vector) to get the similarity back.
func (r *CourseChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64, chapterId string) ([]*contract.ScoredCourseChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.CourseChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("course_chunks").
		Select("course_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold)

	if chapterId != "" {
		query = query.Where("metadata->>'chapter_id' = ?", chapterId)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredCourseChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredCourseChunk{
			Chunk:      r.mapper.ToEntity(&res.CourseChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
