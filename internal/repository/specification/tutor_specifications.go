package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parv18050212/ai-tutor/internal/constant"
)

type OwnedBy struct {
	UserID uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByChapterID struct {
	ChapterID string
}

func (s ByChapterID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chapter_id = ?", s.ChapterID)
}

// ActiveOnly restricts session queries to the live session per topic.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", constant.SessionStatusActive)
}

type ByMaterialID struct {
	MaterialID uuid.UUID
}

func (s ByMaterialID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("material_id = ?", s.MaterialID)
}
