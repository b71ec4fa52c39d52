package dto

import (
	"time"

	"github.com/google/uuid"
)

type GenerateQuizRequest struct {
	ExamId        string `json:"exam_id" validate:"required"`
	SubjectId     string `json:"subject_id" validate:"required"`
	ChapterId     string `json:"chapter_id" validate:"required"`
	SubjectName   string `json:"subject_name"`
	ChapterName   string `json:"chapter_name"`
	Difficulty    string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	QuestionCount int    `json:"question_count" validate:"omitempty,min=1,max=20"`
}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Concept       string   `json:"concept"`
}

type GenerateQuizResponse struct {
	QuizId    string         `json:"quiz_id"`
	Questions []QuizQuestion `json:"questions"`
}

type SubmitQuizResultRequest struct {
	QuizId                    string   `json:"quiz_id" validate:"required"`
	ExamType                  string   `json:"exam_type"`
	SubjectName               string   `json:"subject_name"`
	ChapterName               string   `json:"chapter_name"`
	DifficultyLevel           string   `json:"difficulty_level"`
	Score                     int      `json:"score" validate:"min=0"`
	TotalQuestions            int      `json:"total_questions" validate:"required,min=1"`
	TimeTaken                 int      `json:"time_taken"`
	ConceptsMastered          []string `json:"concepts_mastered"`
	ConceptsNeedingWork       []string `json:"concepts_needing_work"`
	ExamReadinessScore        float64  `json:"exam_readiness_score"`
	RecommendedNextDifficulty string   `json:"recommended_next_difficulty"`
}

type QuizResultResponse struct {
	Id                        uuid.UUID `json:"id"`
	QuizId                    string    `json:"quiz_id"`
	SubjectName               string    `json:"subject_name"`
	ChapterName               string    `json:"chapter_name"`
	DifficultyLevel           string    `json:"difficulty_level"`
	Score                     int       `json:"score"`
	TotalQuestions            int       `json:"total_questions"`
	ExamReadinessScore        float64   `json:"exam_readiness_score"`
	RecommendedNextDifficulty string    `json:"recommended_next_difficulty"`
	CreatedAt                 time.Time `json:"created_at"`
}
