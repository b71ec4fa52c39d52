package mapper

import (
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"

	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/model"
)

type CourseChunkMapper struct{}

func NewCourseChunkMapper() *CourseChunkMapper {
	return &CourseChunkMapper{}
}

func (m *CourseChunkMapper) ToModel(e *entity.CourseChunk) *model.CourseChunk {
	if e == nil {
		return nil
	}
	return &model.CourseChunk{
		Id:         e.Id,
		Content:    e.Content,
		Embedding:  pgvector.NewVector(e.Embedding),
		Metadata:   datatypes.JSONMap(e.Metadata),
		MaterialId: e.MaterialId,
		ChunkIndex: e.ChunkIndex,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *CourseChunkMapper) ToEntity(mo *model.CourseChunk) *entity.CourseChunk {
	if mo == nil {
		return nil
	}
	return &entity.CourseChunk{
		Id:         mo.Id,
		Content:    mo.Content,
		Embedding:  mo.Embedding.Slice(),
		Metadata:   map[string]interface{}(mo.Metadata),
		MaterialId: mo.MaterialId,
		ChunkIndex: mo.ChunkIndex,
		CreatedAt:  mo.CreatedAt,
	}
}
