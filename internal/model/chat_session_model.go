package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatSession scopes a conversation to a (user, chapter) pair.
// A partial unique index on (user_id, chapter_id) WHERE status = 'active'
// enforces at most one active session per scope; see cmd/migrate.
type ChatSession struct {
	Id                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId              uuid.UUID `gorm:"type:uuid;not null;index"`
	ExamId              string    `gorm:"type:text"`
	SubjectId           string    `gorm:"type:text"`
	ChapterId           string    `gorm:"type:text;index"`
	ExamName            string    `gorm:"type:text"`
	SubjectName         string    `gorm:"type:text"`
	ChapterName         string    `gorm:"type:text"`
	SessionName         string    `gorm:"type:text;not null"`
	Status              string    `gorm:"type:text;not null;default:'active'"`
	MessageCount        int       `gorm:"not null;default:0"` // user turns only
	ConversationSummary *string   `gorm:"type:text"`
	LastSummarizedAt    *time.Time
	CreatedAt           time.Time      `gorm:"autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime"`
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
