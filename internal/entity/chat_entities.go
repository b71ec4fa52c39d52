package entity

import (
	"time"

	"github.com/google/uuid"
)

// TopicScope is the (exam, subject, chapter) triple that partitions
// conversations into independent sessions.
type TopicScope struct {
	ExamId      string
	SubjectId   string
	ChapterId   string
	ExamName    string
	SubjectName string
	ChapterName string
}

type ChatSession struct {
	Id                  uuid.UUID
	UserId              uuid.UUID
	Scope               TopicScope
	SessionName         string
	Status              string
	MessageCount        int
	ConversationSummary *string
	LastSummarizedAt    *time.Time
	CreatedAt           time.Time
	UpdatedAt           *time.Time
}

type ChatTurn struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	UserId    uuid.UUID
	Role      string
	Message   string
	CreatedAt time.Time
}
