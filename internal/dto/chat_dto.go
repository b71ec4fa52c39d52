package dto

import (
	"time"

	"github.com/google/uuid"
)

type AccessibilitySettings struct {
	SimplifyLanguage bool `json:"simplify_language"`
	DyslexiaFont     bool `json:"dyslexia_font"`
	LineSpacing      bool `json:"line_spacing"`
	TextToSpeech     bool `json:"text_to_speech"`
}

type AskRequest struct {
	Question      string                 `json:"question" validate:"required,min=1"`
	ExamId        string                 `json:"exam_id" validate:"required"`
	SubjectId     string                 `json:"subject_id" validate:"required"`
	ChapterId     string                 `json:"chapter_id" validate:"required"`
	ExamName      string                 `json:"exam_name"`
	SubjectName   string                 `json:"subject_name"`
	ChapterName   string                 `json:"chapter_name"`
	Accessibility *AccessibilitySettings `json:"accessibility,omitempty"`
}

type AskResponse struct {
	Answer    string    `json:"answer"`
	SessionId uuid.UUID `json:"session_id"`
}

type ChatTurnResponse struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryResponse struct {
	SessionId uuid.UUID          `json:"session_id"`
	Turns     []ChatTurnResponse `json:"turns"`
}

type SessionResponse struct {
	Id           uuid.UUID `json:"id"`
	SessionName  string    `json:"session_name"`
	ExamName     string    `json:"exam_name"`
	SubjectName  string    `json:"subject_name"`
	ChapterName  string    `json:"chapter_name"`
	ChapterId    string    `json:"chapter_id"`
	Status       string    `json:"status"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type ClearHistoryRequest struct {
	ChapterId string `json:"chapter_id"`
}

type ClearHistoryResponse struct {
	DeletedTurns int64 `json:"deleted_turns"`
}

type ArchiveSessionRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
}
