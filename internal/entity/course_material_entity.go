package entity

import (
	"time"

	"github.com/google/uuid"
)

type CourseMaterial struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Title       string
	Content     string
	ExamId      string
	SubjectId   string
	ChapterId   string
	ExamName    string
	SubjectName string
	ChapterName string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
