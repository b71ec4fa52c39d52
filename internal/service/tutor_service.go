package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parv18050212/ai-tutor/internal/config"
	"github.com/parv18050212/ai-tutor/internal/constant"
	"github.com/parv18050212/ai-tutor/internal/dto"
	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/pkg/logger"
	"github.com/parv18050212/ai-tutor/internal/repository/contract"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
	"github.com/parv18050212/ai-tutor/internal/repository/unitofwork"
	"github.com/parv18050212/ai-tutor/pkg/embedding"
	"github.com/parv18050212/ai-tutor/pkg/events"
	"github.com/parv18050212/ai-tutor/pkg/llm"
	pktNats "github.com/parv18050212/ai-tutor/pkg/nats"
	"github.com/parv18050212/ai-tutor/pkg/rag/accessibility"
	"github.com/parv18050212/ai-tutor/pkg/rag/prompt"
	"github.com/parv18050212/ai-tutor/pkg/rag/retriever"
)

type ITutorService interface {
	Ask(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID, sessionId *uuid.UUID) (*dto.HistoryResponse, error)
	ClearHistory(ctx context.Context, userId uuid.UUID, chapterId string) (*dto.ClearHistoryResponse, error)
	GetSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionResponse, error)
	ArchiveSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SessionResponse, error)
}

// sessionResolver is what the tutor needs from the session manager.
type sessionResolver interface {
	GetOrCreate(ctx context.Context, userId uuid.UUID, scope entity.TopicScope) (*entity.ChatSession, error)
	Archive(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error)
	Invalidate(userId uuid.UUID, chapterId string)
}

// contextRetriever is what the tutor needs from the retriever.
type contextRetriever interface {
	Retrieve(ctx context.Context, question string, chapterId string, p retriever.Params) ([]*contract.ScoredCourseChunk, error)
}

// historyEngine is what the tutor needs from the history engine.
type historyEngine interface {
	Window(ctx context.Context, sessionId uuid.UUID) ([]llm.Message, error)
	ShouldSummarize(count int) bool
	Summarize(ctx context.Context, session *entity.ChatSession, count int) bool
}

type tutorService struct {
	uowFactory     unitofwork.RepositoryFactory
	sessions       sessionResolver
	retriever      contextRetriever
	history        historyEngine
	llmProvider    llm.LLMProvider
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
	ragCfg         config.RagConfig
}

func NewTutorService(
	uowFactory unitofwork.RepositoryFactory,
	sessions sessionResolver,
	ragRetriever contextRetriever,
	historyEng historyEngine,
	llmProvider llm.LLMProvider,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	ragCfg config.RagConfig,
) ITutorService {
	return &tutorService{
		uowFactory:     uowFactory,
		sessions:       sessions,
		retriever:      ragRetriever,
		history:        historyEng,
		llmProvider:    llmProvider,
		eventPublisher: eventPublisher,
		logger:         log,
		ragCfg:         ragCfg,
	}
}

// Ask runs the full tutoring pipeline: session resolution, retrieval,
// history assembly, Socratic generation, accessibility post-processing,
// turn persistence and the summarization check.
func (s *tutorService) Ask(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error) {
	scope := entity.TopicScope{
		ExamId:      req.ExamId,
		SubjectId:   req.SubjectId,
		ChapterId:   req.ChapterId,
		ExamName:    req.ExamName,
		SubjectName: req.SubjectName,
		ChapterName: req.ChapterName,
	}

	session, err := s.sessions.GetOrCreate(ctx, userId, scope)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	ragContext, embedErr := s.retrieveContext(ctx, req.Question, req.ChapterId, session.Id)
	if embedErr != nil {
		// The question could not be embedded at all, so no retrieval and no
		// generation happened. Nothing is persisted.
		return &dto.AskResponse{
			Answer:    constant.FallbackAnswer,
			SessionId: session.Id,
		}, nil
	}

	window, err := s.history.Window(ctx, session.Id)
	if err != nil {
		s.logger.Warn("tutor", "failed to load history window", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		window = nil
	}

	socraticPrompt := prompt.NewSocraticBuilder(
		scope,
		req.Question,
		ragContext,
		window,
		session.ConversationSummary,
		req.Accessibility,
	).Build()

	answer, err := s.llmProvider.Generate(ctx, socraticPrompt,
		llm.WithTemperature(0.1),
		llm.WithTopP(0.1),
		llm.WithTopK(40),
		llm.WithMaxTokens(512),
	)
	if err != nil {
		// No half-completed turn pair: nothing is persisted on failure.
		s.logger.Error("tutor", "generation failed", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		return &dto.AskResponse{
			Answer:    constant.FallbackAnswer,
			SessionId: session.Id,
		}, nil
	}

	if req.Accessibility != nil {
		frustrated := accessibility.DetectFrustration(req.Question)
		answer = accessibility.ApplySupport(answer, frustrated)
		answer = accessibility.MemoryScaffold(answer, req.ChapterName, req.Accessibility)
	}

	count, persistErr := s.persistTurnPair(ctx, userId, session.Id, req.Question, answer)
	if persistErr != nil {
		// The student already has an answer, losing it over a storage
		// hiccup would be worse than a gap in the transcript.
		s.logger.Error("tutor", "failed to persist turn pair", map[string]interface{}{
			"session_id": session.Id,
			"error":      persistErr.Error(),
		})
		return &dto.AskResponse{Answer: answer, SessionId: session.Id}, nil
	}

	if s.history.ShouldSummarize(count) {
		if s.history.Summarize(ctx, session, count) {
			s.publishEvent(ctx, events.TypeSummaryGenerated, map[string]interface{}{
				"session_id":    session.Id,
				"user_id":       userId,
				"message_count": count,
			})
		}
	}

	return &dto.AskResponse{Answer: answer, SessionId: session.Id}, nil
}

// retrieveContext degrades to an empty context on search failure. Embedding
// failures are different: without a query vector nothing downstream is
// meaningful, so they propagate and the caller answers with the fallback.
// When nothing clears the chat threshold, a second pass at the lower
// exploratory threshold trades precision for recall before giving up.
func (s *tutorService) retrieveContext(ctx context.Context, question, chapterId string, sessionId uuid.UUID) (string, error) {
	scored, err := s.retriever.Retrieve(ctx, question, chapterId, retriever.Params{
		TopK:      s.ragCfg.TopK,
		Threshold: s.ragCfg.ChatThreshold,
	})
	if err != nil {
		var embedErr *embedding.EmbeddingError
		if errors.As(err, &embedErr) {
			s.logger.Error("tutor", "query embedding failed", map[string]interface{}{
				"session_id": sessionId,
				"model":      embedErr.Model,
				"error":      embedErr.Error(),
			})
			return "", err
		}
		s.logger.Error("tutor", "retrieval failed, continuing with empty context", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return "", nil
	}

	if len(scored) == 0 && s.ragCfg.ExploreThreshold < s.ragCfg.ChatThreshold {
		scored, err = s.retriever.Retrieve(ctx, question, chapterId, retriever.Params{
			TopK:      s.ragCfg.TopK,
			Threshold: s.ragCfg.ExploreThreshold,
		})
		if err != nil {
			s.logger.Warn("tutor", "exploratory retrieval pass failed", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
			return "", nil
		}
	}

	return retriever.BuildContext(scored), nil
}

// persistTurnPair writes the user and assistant turns in one transaction and
// bumps the session's user-message counter. Either both turns land or
// neither does.
func (s *tutorService) persistTurnPair(ctx context.Context, userId, sessionId uuid.UUID, question, answer string) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	now := time.Now()
	userTurn := &entity.ChatTurn{
		Id:        uuid.New(),
		SessionId: sessionId,
		UserId:    userId,
		Role:      constant.ChatTurnRoleUser,
		Message:   question,
		CreatedAt: now,
	}
	if err := uow.ChatTurnRepository().Create(ctx, userTurn); err != nil {
		return 0, err
	}

	assistantTurn := &entity.ChatTurn{
		Id:        uuid.New(),
		SessionId: sessionId,
		UserId:    userId,
		Role:      constant.ChatTurnRoleAssistant,
		Message:   answer,
		CreatedAt: now.Add(time.Millisecond),
	}
	if err := uow.ChatTurnRepository().Create(ctx, assistantTurn); err != nil {
		return 0, err
	}

	count, err := uow.ChatSessionRepository().IncrementMessageCount(ctx, sessionId)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, err
	}

	return count, nil
}

func (s *tutorService) GetHistory(ctx context.Context, userId uuid.UUID, sessionId *uuid.UUID) (*dto.HistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OwnedBy{UserID: userId},
	}
	if sessionId != nil {
		specs = append(specs,
			specification.BySessionID{SessionID: *sessionId},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
	} else {
		// Cross-session fallback stays bounded: only the most recent
		// window of turns, re-sorted to chronological below.
		specs = append(specs,
			specification.OrderBy{Field: "created_at", Desc: true},
			specification.Pagination{Limit: s.ragCfg.HistoryWindow},
		)
	}

	turns, err := uow.ChatTurnRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	if sessionId == nil {
		for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
			turns[i], turns[j] = turns[j], turns[i]
		}
	}

	res := &dto.HistoryResponse{
		Turns: make([]dto.ChatTurnResponse, len(turns)),
	}
	if sessionId != nil {
		res.SessionId = *sessionId
	}
	for i, turn := range turns {
		res.Turns[i] = dto.ChatTurnResponse{
			Role:      turn.Role,
			Message:   turn.Message,
			CreatedAt: turn.CreatedAt,
		}
	}
	return res, nil
}

func (s *tutorService) ClearHistory(ctx context.Context, userId uuid.UUID, chapterId string) (*dto.ClearHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var deleted int64

	if chapterId != "" {
		session, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.OwnedBy{UserID: userId},
			specification.ByChapterID{ChapterID: chapterId},
			specification.ActiveOnly{},
		)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return &dto.ClearHistoryResponse{DeletedTurns: 0}, nil
		}

		deleted, err = uow.ChatTurnRepository().DeleteBySessionId(ctx, session.Id)
		if err != nil {
			return nil, err
		}

		session.MessageCount = 0
		session.ConversationSummary = nil
		session.LastSummarizedAt = nil
		if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
			return nil, err
		}

		s.sessions.Invalidate(userId, chapterId)
	} else {
		var err error
		deleted, err = uow.ChatTurnRepository().DeleteByUserId(ctx, userId)
		if err != nil {
			return nil, err
		}
	}

	s.publishEvent(ctx, events.TypeHistoryCleared, map[string]interface{}{
		"user_id":       userId,
		"chapter_id":    chapterId,
		"deleted_turns": deleted,
	})

	return &dto.ClearHistoryResponse{DeletedTurns: deleted}, nil
}

func (s *tutorService) GetSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SessionResponse, len(sessions))
	for i, session := range sessions {
		res[i] = sessionToResponse(session)
	}
	return res, nil
}

func (s *tutorService) ArchiveSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.sessions.Archive(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	s.publishEvent(ctx, events.TypeSessionArchived, map[string]interface{}{
		"session_id": session.Id,
		"user_id":    userId,
		"chapter_id": session.Scope.ChapterId,
	})

	return sessionToResponse(session), nil
}

func (s *tutorService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("tutor", "failed to publish event", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}

func sessionToResponse(session *entity.ChatSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:           session.Id,
		SessionName:  session.SessionName,
		ExamName:     session.Scope.ExamName,
		SubjectName:  session.Scope.SubjectName,
		ChapterName:  session.Scope.ChapterName,
		ChapterId:    session.Scope.ChapterId,
		Status:       session.Status,
		MessageCount: session.MessageCount,
		CreatedAt:    session.CreatedAt,
	}
}
