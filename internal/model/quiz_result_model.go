package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QuizResult struct {
	Id                        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId                    uuid.UUID      `gorm:"type:uuid;not null;index"`
	QuizId                    string         `gorm:"type:text;not null"`
	ExamType                  string         `gorm:"type:text"`
	SubjectName               string         `gorm:"type:text"`
	ChapterName               string         `gorm:"type:text"`
	DifficultyLevel           string         `gorm:"type:text"`
	Score                     int            `gorm:"not null"`
	TotalQuestions            int            `gorm:"not null"`
	TimeTaken                 int            // seconds
	ConceptsMastered          datatypes.JSON `gorm:"type:jsonb"`
	ConceptsNeedingWork       datatypes.JSON `gorm:"type:jsonb"`
	ExamReadinessScore        float64
	RecommendedNextDifficulty string    `gorm:"type:text"`
	CreatedAt                 time.Time `gorm:"autoCreateTime"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
