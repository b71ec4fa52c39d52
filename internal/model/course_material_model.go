package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseMaterial struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"type:text;not null"`
	Content     string    `gorm:"type:text;not null"`
	ExamId      string    `gorm:"type:text"`
	SubjectId   string    `gorm:"type:text"`
	ChapterId   string    `gorm:"type:text;index"`
	ExamName    string    `gorm:"type:text"`
	SubjectName string    `gorm:"type:text"`
	ChapterName string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (CourseMaterial) TableName() string {
	return "course_materials"
}
