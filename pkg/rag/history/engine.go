package history

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parv18050212/ai-tutor/internal/constant"
	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/pkg/logger"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
	"github.com/parv18050212/ai-tutor/internal/repository/unitofwork"
	"github.com/parv18050212/ai-tutor/pkg/llm"
	"github.com/parv18050212/ai-tutor/pkg/rag/prompt"
)

// Engine keeps the LLM context bounded: a sliding window of recent turns
// plus a standing summary of everything that scrolled out of it.
type Engine struct {
	uowFactory unitofwork.RepositoryFactory
	provider   llm.LLMProvider
	logger     logger.ILogger

	window   int
	interval int
}

func NewEngine(uowFactory unitofwork.RepositoryFactory, provider llm.LLMProvider, log logger.ILogger, window, interval int) *Engine {
	if window <= 0 {
		window = 6
	}
	if interval <= 0 {
		interval = 10
	}
	return &Engine{
		uowFactory: uowFactory,
		provider:   provider,
		logger:     log,
		window:     window,
		interval:   interval,
	}
}

// Window returns the most recent turns of a session in chronological order,
// mapped into provider-agnostic messages.
func (e *Engine) Window(ctx context.Context, sessionId uuid.UUID) ([]llm.Message, error) {
	uow := e.uowFactory.NewUnitOfWork(ctx)

	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: e.window},
	)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(turns))
	for i := len(turns) - 1; i >= 0; i-- {
		turn := turns[i]
		role := "user"
		if turn.Role == constant.ChatTurnRoleAssistant {
			role = "assistant"
		}
		messages = append(messages, llm.Message{
			Role:    role,
			Content: turn.Message,
		})
	}

	return messages, nil
}

// SummaryRange derives which slice of the ordered turn list to fold into the
// summary for a given user-message count. The window's worth of recent turns
// stays verbatim, everything older than one interval is already summarized.
func (e *Engine) SummaryRange(count int) (start, end int, ok bool) {
	start = count - (e.interval + e.window)
	if start < 0 {
		start = 0
	}
	end = count - e.window
	if end <= start {
		return 0, 0, false
	}
	return start, end, true
}

// ShouldSummarize reports whether a summarization pass is due after the
// assistant turn that brought the user-message count to count.
func (e *Engine) ShouldSummarize(count int) bool {
	return count > 0 && count%e.interval == 0
}

// Summarize folds the due slice of conversation into the session's standing
// summary and reports whether one was persisted. Failures are logged and
// swallowed: a missing summary only costs context quality, never the
// student's answer.
func (e *Engine) Summarize(ctx context.Context, session *entity.ChatSession, count int) bool {
	start, end, ok := e.SummaryRange(count)
	if !ok {
		return false
	}

	uow := e.uowFactory.NewUnitOfWork(ctx)

	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.BySessionID{SessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		e.logger.Error("history", "failed to load turns for summarization", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		return false
	}

	if end > len(turns) {
		end = len(turns)
	}
	if start >= end {
		return false
	}

	var conversation strings.Builder
	for _, turn := range turns[start:end] {
		conversation.WriteString(turn.Role)
		conversation.WriteString(": ")
		conversation.WriteString(turn.Message)
		conversation.WriteString("\n")
	}

	summary, err := e.provider.Generate(ctx, prompt.SummaryPrompt(conversation.String()),
		llm.WithTemperature(0.1),
		llm.WithTopP(0.1),
		llm.WithTopK(20),
		llm.WithMaxTokens(256),
	)
	if err != nil {
		e.logger.Error("history", "failed to generate conversation summary", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		return false
	}

	now := time.Now()
	session.ConversationSummary = &summary
	session.LastSummarizedAt = &now
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		e.logger.Error("history", "failed to persist conversation summary", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		return false
	}

	e.logger.Info("history", "generated conversation summary", map[string]interface{}{
		"session_id":    session.Id,
		"summary_chars": len(summary),
		"range_start":   start,
		"range_end":     end,
	})
	return true
}
