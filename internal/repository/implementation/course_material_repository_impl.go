package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/mapper"
	"github.com/parv18050212/ai-tutor/internal/model"
	"github.com/parv18050212/ai-tutor/internal/repository/contract"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
)

type CourseMaterialRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CourseMaterialMapper
}

func NewCourseMaterialRepository(db *gorm.DB) contract.CourseMaterialRepository {
	return &CourseMaterialRepositoryImpl{
		db:     db,
		mapper: mapper.NewCourseMaterialMapper(),
	}
}

func (r *CourseMaterialRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CourseMaterialRepositoryImpl) Create(ctx context.Context, material *entity.CourseMaterial) error {
	m := r.mapper.ToModel(material)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*material = *r.mapper.ToEntity(m)
	return nil
}

func (r *CourseMaterialRepositoryImpl) Update(ctx context.Context, material *entity.CourseMaterial) error {
	m := r.mapper.ToModel(material)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*material = *r.mapper.ToEntity(m)
	return nil
}

func (r *CourseMaterialRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CourseMaterial{}, id).Error
}

func (r *CourseMaterialRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CourseMaterial, error) {
	var m model.CourseMaterial
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CourseMaterialRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CourseMaterial, error) {
	var models []*model.CourseMaterial
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CourseMaterial, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *CourseMaterialRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.CourseMaterial{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
