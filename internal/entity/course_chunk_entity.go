package entity

import (
	"time"

	"github.com/google/uuid"
)

type CourseChunk struct {
	Id         uuid.UUID
	Content    string
	Embedding  []float32
	Metadata   map[string]interface{}
	MaterialId uuid.UUID
	ChunkIndex int
	CreatedAt  time.Time
}
