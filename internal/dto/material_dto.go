package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestMaterialRequest struct {
	Title       string `json:"title" validate:"required"`
	Content     string `json:"content" validate:"required,min=1"`
	ExamId      string `json:"exam_id" validate:"required"`
	SubjectId   string `json:"subject_id" validate:"required"`
	ChapterId   string `json:"chapter_id" validate:"required"`
	ExamName    string `json:"exam_name"`
	SubjectName string `json:"subject_name"`
	ChapterName string `json:"chapter_name"`
}

type MaterialResponse struct {
	Id          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	ExamName    string    `json:"exam_name"`
	SubjectName string    `json:"subject_name"`
	ChapterName string    `json:"chapter_name"`
	ChapterId   string    `json:"chapter_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// PublishEmbedMaterialMessage is the payload carried on the async embedding
// pipeline. Chunking and embedding happen in the consumer, not the request path.
type PublishEmbedMaterialMessage struct {
	MaterialId uuid.UUID `json:"material_id"`
}
