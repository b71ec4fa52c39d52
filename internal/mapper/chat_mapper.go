package mapper

import (
	"time"

	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) SessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:     s.Id,
		UserId: s.UserId,
		Scope: entity.TopicScope{
			ExamId:      s.ExamId,
			SubjectId:   s.SubjectId,
			ChapterId:   s.ChapterId,
			ExamName:    s.ExamName,
			SubjectName: s.SubjectName,
			ChapterName: s.ChapterName,
		},
		SessionName:         s.SessionName,
		Status:              s.Status,
		MessageCount:        s.MessageCount,
		ConversationSummary: s.ConversationSummary,
		LastSummarizedAt:    s.LastSummarizedAt,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}

func (m *ChatMapper) SessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:                  s.Id,
		UserId:              s.UserId,
		ExamId:              s.Scope.ExamId,
		SubjectId:           s.Scope.SubjectId,
		ChapterId:           s.Scope.ChapterId,
		ExamName:            s.Scope.ExamName,
		SubjectName:         s.Scope.SubjectName,
		ChapterName:         s.Scope.ChapterName,
		SessionName:         s.SessionName,
		Status:              s.Status,
		MessageCount:        s.MessageCount,
		ConversationSummary: s.ConversationSummary,
		LastSummarizedAt:    s.LastSummarizedAt,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}

// Turn Mappers

func (m *ChatMapper) TurnToEntity(t *model.ChatTurn) *entity.ChatTurn {
	if t == nil {
		return nil
	}
	return &entity.ChatTurn{
		Id:        t.Id,
		SessionId: t.SessionId,
		UserId:    t.UserId,
		Role:      t.Role,
		Message:   t.Message,
		CreatedAt: t.CreatedAt,
	}
}

func (m *ChatMapper) TurnToModel(t *entity.ChatTurn) *model.ChatTurn {
	if t == nil {
		return nil
	}
	return &model.ChatTurn{
		Id:        t.Id,
		SessionId: t.SessionId,
		UserId:    t.UserId,
		Role:      t.Role,
		Message:   t.Message,
		CreatedAt: t.CreatedAt,
	}
}
