package entity

import (
	"time"

	"github.com/google/uuid"
)

type QuizResult struct {
	Id                        uuid.UUID
	UserId                    uuid.UUID
	QuizId                    string
	ExamType                  string
	SubjectName               string
	ChapterName               string
	DifficultyLevel           string
	Score                     int
	TotalQuestions            int
	TimeTaken                 int
	ConceptsMastered          []string
	ConceptsNeedingWork       []string
	ExamReadinessScore        float64
	RecommendedNextDifficulty string
	CreatedAt                 time.Time
}
