package mapper

import (
	"time"

	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/model"
)

type CourseMaterialMapper struct{}

func NewCourseMaterialMapper() *CourseMaterialMapper {
	return &CourseMaterialMapper{}
}

func (m *CourseMaterialMapper) ToModel(e *entity.CourseMaterial) *model.CourseMaterial {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.CourseMaterial{
		Id:          e.Id,
		UserId:      e.UserId,
		Title:       e.Title,
		Content:     e.Content,
		ExamId:      e.ExamId,
		SubjectId:   e.SubjectId,
		ChapterId:   e.ChapterId,
		ExamName:    e.ExamName,
		SubjectName: e.SubjectName,
		ChapterName: e.ChapterName,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *CourseMaterialMapper) ToEntity(mo *model.CourseMaterial) *entity.CourseMaterial {
	if mo == nil {
		return nil
	}

	var updatedAt *time.Time
	if !mo.UpdatedAt.IsZero() {
		t := mo.UpdatedAt
		updatedAt = &t
	}

	return &entity.CourseMaterial{
		Id:          mo.Id,
		UserId:      mo.UserId,
		Title:       mo.Title,
		Content:     mo.Content,
		ExamId:      mo.ExamId,
		SubjectId:   mo.SubjectId,
		ChapterId:   mo.ChapterId,
		ExamName:    mo.ExamName,
		SubjectName: mo.SubjectName,
		ChapterName: mo.ChapterName,
		CreatedAt:   mo.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}
