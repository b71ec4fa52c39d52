package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// CourseChunk rows are immutable: created during ingestion, removed only by
// re-ingestion or an explicit purge. No soft delete on purpose.
type CourseChunk struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Content    string            `gorm:"type:text;not null"`
	Embedding  pgvector.Vector   `gorm:"type:vector(768)"` // text-embedding-004 uses 768 dimensions
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	MaterialId uuid.UUID         `gorm:"type:uuid;not null;index"`
	ChunkIndex int               `gorm:"default:0"` // 0-based index for ordering
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
}

func (CourseChunk) TableName() string {
	return "course_chunks"
}
