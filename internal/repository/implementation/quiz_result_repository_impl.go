package implementation

import (
	"context"

	"gorm.io/gorm"

	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/mapper"
	"github.com/parv18050212/ai-tutor/internal/model"
	"github.com/parv18050212/ai-tutor/internal/repository/contract"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
)

type QuizResultRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QuizMapper
}

func NewQuizResultRepository(db *gorm.DB) contract.QuizResultRepository {
	return &QuizResultRepositoryImpl{
		db:     db,
		mapper: mapper.NewQuizMapper(),
	}
}

func (r *QuizResultRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QuizResultRepositoryImpl) Create(ctx context.Context, result *entity.QuizResult) error {
	m := r.mapper.ToModel(result)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*result = *r.mapper.ToEntity(m)
	return nil
}

func (r *QuizResultRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QuizResult, error) {
	var models []*model.QuizResult
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.QuizResult, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *QuizResultRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.QuizResult{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
