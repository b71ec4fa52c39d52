package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/parv18050212/ai-tutor/internal/config"
	"github.com/parv18050212/ai-tutor/internal/constant"
	"github.com/parv18050212/ai-tutor/internal/dto"
	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/repository/contract"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
	"github.com/parv18050212/ai-tutor/internal/repository/unitofwork"
	"github.com/parv18050212/ai-tutor/pkg/embedding"
	"github.com/parv18050212/ai-tutor/pkg/llm"
	"github.com/parv18050212/ai-tutor/pkg/rag/retriever"
)

// ---- Fakes ----

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeUow buffers turn writes and only exposes them as persisted after Commit,
// mimicking the transactional turn-pair write.
type fakeUow struct {
	pendingTurns   []*entity.ChatTurn
	committedTurns *[]*entity.ChatTurn

	sessions *fakeSessionRepo
	turns    *fakeTurnRepo

	incrementErr error
	commitErr    error
	messageCount int

	began      bool
	committed  bool
	rolledBack bool
}

type fakeRepoFactory struct {
	uow *fakeUow
}

func (f *fakeRepoFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func (u *fakeUow) Begin(ctx context.Context) error {
	u.began = true
	u.pendingTurns = nil
	return nil
}

func (u *fakeUow) Commit() error {
	if u.commitErr != nil {
		return u.commitErr
	}
	u.committed = true
	*u.committedTurns = append(*u.committedTurns, u.pendingTurns...)
	u.pendingTurns = nil
	return nil
}

func (u *fakeUow) Rollback() error {
	if !u.committed {
		u.rolledBack = true
		u.pendingTurns = nil
	}
	return nil
}

func (u *fakeUow) CourseChunkRepository() contract.CourseChunkRepository       { return nil }
func (u *fakeUow) CourseMaterialRepository() contract.CourseMaterialRepository { return nil }
func (u *fakeUow) QuizResultRepository() contract.QuizResultRepository         { return nil }
func (u *fakeUow) ChatSessionRepository() contract.ChatSessionRepository       { return u.sessions }
func (u *fakeUow) ChatTurnRepository() contract.ChatTurnRepository             { return u.turns }

type fakeSessionRepo struct {
	uow     *fakeUow
	session *entity.ChatSession
	updated *entity.ChatSession
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	r.updated = session
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	return r.session, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	if r.session == nil {
		return nil, nil
	}
	return []*entity.ChatSession{r.session}, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (r *fakeSessionRepo) IncrementMessageCount(ctx context.Context, sessionId uuid.UUID) (int, error) {
	if r.uow.incrementErr != nil {
		return 0, r.uow.incrementErr
	}
	r.uow.messageCount++
	return r.uow.messageCount, nil
}

func (r *fakeSessionRepo) Touch(ctx context.Context, sessionId uuid.UUID) error { return nil }

type fakeTurnRepo struct {
	uow       *fakeUow
	createErr error
	deleted   int64
}

func (r *fakeTurnRepo) Create(ctx context.Context, turn *entity.ChatTurn) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.uow.pendingTurns = append(r.uow.pendingTurns, turn)
	return nil
}

// FindAll honors the ordering and pagination specs the service relies on.
// The committed slice is chronological, so descending order is a reversal.
func (r *fakeTurnRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error) {
	turns := make([]*entity.ChatTurn, len(*r.uow.committedTurns))
	copy(turns, *r.uow.committedTurns)

	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.OrderBy:
			if sp.Desc {
				for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
					turns[i], turns[j] = turns[j], turns[i]
				}
			}
		case specification.Pagination:
			if sp.Limit > 0 && len(turns) > sp.Limit {
				turns = turns[:sp.Limit]
			}
		}
	}
	return turns, nil
}

func (r *fakeTurnRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(*r.uow.committedTurns)), nil
}

func (r *fakeTurnRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) (int64, error) {
	return r.deleted, nil
}

func (r *fakeTurnRepo) DeleteByUserId(ctx context.Context, userId uuid.UUID) (int64, error) {
	return r.deleted, nil
}

type fakeResolver struct {
	session     *entity.ChatSession
	invalidated []string
}

func (f *fakeResolver) GetOrCreate(ctx context.Context, userId uuid.UUID, scope entity.TopicScope) (*entity.ChatSession, error) {
	return f.session, nil
}

func (f *fakeResolver) Archive(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error) {
	f.session.Status = constant.SessionStatusArchived
	return f.session, nil
}

func (f *fakeResolver) Invalidate(userId uuid.UUID, chapterId string) {
	f.invalidated = append(f.invalidated, chapterId)
}

type fakeRetriever struct {
	chunks []*contract.ScoredCourseChunk
	err    error

	// queue, when set, serves one result per call ahead of chunks.
	queue [][]*contract.ScoredCourseChunk
	calls []retriever.Params
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string, chapterId string, p retriever.Params) ([]*contract.ScoredCourseChunk, error) {
	f.calls = append(f.calls, p)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.queue) > 0 {
		next := f.queue[0]
		f.queue = f.queue[1:]
		return next, nil
	}
	return f.chunks, nil
}

type fakeHistory struct {
	window        []llm.Message
	summarized    bool
	summarizeArgs int
}

func (f *fakeHistory) Window(ctx context.Context, sessionId uuid.UUID) ([]llm.Message, error) {
	return f.window, nil
}

func (f *fakeHistory) ShouldSummarize(count int) bool {
	return count > 0 && count%10 == 0
}

func (f *fakeHistory) Summarize(ctx context.Context, session *entity.ChatSession, count int) bool {
	f.summarized = true
	f.summarizeArgs = count
	return true
}

type fakeLLM struct {
	answer     string
	err        error
	lastPrompt string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.answer, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.lastPrompt = prompt
	return f.answer, f.err
}

// ---- Harness ----

type tutorFixture struct {
	svc       ITutorService
	uow       *fakeUow
	resolver  *fakeResolver
	retriever *fakeRetriever
	history   *fakeHistory
	llm       *fakeLLM
	userId    uuid.UUID
	turns     []*entity.ChatTurn
}

func newTutorFixture() *tutorFixture {
	f := &tutorFixture{
		userId: uuid.New(),
	}

	f.uow = &fakeUow{committedTurns: &f.turns}
	f.uow.sessions = &fakeSessionRepo{uow: f.uow}
	f.uow.turns = &fakeTurnRepo{uow: f.uow}

	session := &entity.ChatSession{
		Id:     uuid.New(),
		UserId: f.userId,
		Scope: entity.TopicScope{
			ExamId:      "jee",
			SubjectId:   "math",
			ChapterId:   "matrices",
			ExamName:    "JEE",
			SubjectName: "Mathematics",
			ChapterName: "Matrices",
		},
		SessionName: "Matrices - 2026-08-30",
		Status:      constant.SessionStatusActive,
	}
	f.uow.sessions.session = session

	f.resolver = &fakeResolver{session: session}
	f.retriever = &fakeRetriever{
		chunks: []*contract.ScoredCourseChunk{
			{Chunk: &entity.CourseChunk{Content: "A matrix is a rectangular array of numbers."}, Similarity: 0.9},
		},
	}
	f.history = &fakeHistory{}
	f.llm = &fakeLLM{answer: "What do you think the rows of a matrix represent?"}

	f.svc = NewTutorService(
		&fakeRepoFactory{uow: f.uow},
		f.resolver,
		f.retriever,
		f.history,
		f.llm,
		nil,
		nopLogger{},
		config.RagConfig{TopK: 5, ChatThreshold: 0.3, ExploreThreshold: 0.2, QuizThreshold: 0.2, HistoryWindow: 6, SummarizeInterval: 10},
	)
	return f
}

func askRequest() *dto.AskRequest {
	return &dto.AskRequest{
		Question:    "What is a matrix?",
		ExamId:      "jee",
		SubjectId:   "math",
		ChapterId:   "matrices",
		ExamName:    "JEE",
		SubjectName: "Mathematics",
		ChapterName: "Matrices",
	}
}

// ---- Tests ----

func TestAskHappyPath(t *testing.T) {
	f := newTutorFixture()

	res, err := f.svc.Ask(context.Background(), f.userId, askRequest())
	assert.NoError(t, err)
	assert.Equal(t, f.llm.answer, res.Answer)
	assert.Equal(t, f.resolver.session.Id, res.SessionId)

	// Both turns persisted atomically
	assert.True(t, f.uow.committed)
	assert.Len(t, f.turns, 2)
	assert.Equal(t, constant.ChatTurnRoleUser, f.turns[0].Role)
	assert.Equal(t, "What is a matrix?", f.turns[0].Message)
	assert.Equal(t, constant.ChatTurnRoleAssistant, f.turns[1].Role)
	assert.True(t, f.turns[1].CreatedAt.After(f.turns[0].CreatedAt))
	assert.Equal(t, 1, f.uow.messageCount)

	// Retrieved material made it into the prompt
	assert.Contains(t, f.llm.lastPrompt, "rectangular array of numbers")
	assert.Contains(t, f.llm.lastPrompt, "Newton")
}

func TestAskEmbeddingFailureReturnsFallbackWithoutPersisting(t *testing.T) {
	f := newTutorFixture()
	f.retriever.err = &embedding.EmbeddingError{Model: "text-embedding-004", Err: errors.New("quota exceeded")}

	res, err := f.svc.Ask(context.Background(), f.userId, askRequest())
	assert.NoError(t, err)
	assert.Equal(t, constant.FallbackAnswer, res.Answer)
	assert.Equal(t, f.resolver.session.Id, res.SessionId)

	assert.Empty(t, f.turns)
	assert.Empty(t, f.llm.lastPrompt, "generation must not run when the query cannot be embedded")
}

func TestAskGenerationFailureReturnsFallbackWithoutPersisting(t *testing.T) {
	f := newTutorFixture()
	f.llm.err = &llm.GenerationError{Provider: "gemini", Err: errors.New("model overloaded")}

	res, err := f.svc.Ask(context.Background(), f.userId, askRequest())
	assert.NoError(t, err)
	assert.Equal(t, constant.FallbackAnswer, res.Answer)

	// No half-written turn pair
	assert.Empty(t, f.turns)
	assert.False(t, f.uow.committed)
}

func TestAskRetrievalFailureDegradesToEmptyContext(t *testing.T) {
	f := newTutorFixture()
	f.retriever.err = &retriever.RetrievalError{Err: errors.New("connection refused")}

	res, err := f.svc.Ask(context.Background(), f.userId, askRequest())
	assert.NoError(t, err)
	assert.Equal(t, f.llm.answer, res.Answer)

	// Answer still generated and persisted, just without course material
	assert.Contains(t, f.llm.lastPrompt, "(no course material found)")
	assert.Len(t, f.turns, 2)
}

func TestAskPersistenceFailureStillReturnsAnswer(t *testing.T) {
	f := newTutorFixture()
	f.uow.incrementErr = errors.New("deadlock detected")

	res, err := f.svc.Ask(context.Background(), f.userId, askRequest())
	assert.NoError(t, err)
	assert.Equal(t, f.llm.answer, res.Answer)

	assert.False(t, f.uow.committed)
	assert.Empty(t, f.turns)
}

func TestAskTriggersSummarizationOnInterval(t *testing.T) {
	f := newTutorFixture()
	f.uow.messageCount = 9 // this Ask makes it 10

	_, err := f.svc.Ask(context.Background(), f.userId, askRequest())
	assert.NoError(t, err)

	assert.True(t, f.history.summarized)
	assert.Equal(t, 10, f.history.summarizeArgs)
}

func TestAskDoesNotSummarizeOffInterval(t *testing.T) {
	f := newTutorFixture()
	f.uow.messageCount = 4

	_, err := f.svc.Ask(context.Background(), f.userId, askRequest())
	assert.NoError(t, err)
	assert.False(t, f.history.summarized)
}

func TestAskAppliesAccessibilitySupport(t *testing.T) {
	f := newTutorFixture()

	req := askRequest()
	req.Question = "I don't understand this at all, this is too hard"
	req.Accessibility = &dto.AccessibilitySettings{SimplifyLanguage: true}

	res, err := f.svc.Ask(context.Background(), f.userId, req)
	assert.NoError(t, err)

	// Frustration support wraps the answer, scaffold appends memory aids
	assert.Contains(t, res.Answer, "🌟")
	assert.Contains(t, res.Answer, "📋")
	assert.Contains(t, res.Answer, "Matrices")

	// The persisted assistant turn carries the post-processed answer
	assert.Equal(t, res.Answer, f.turns[1].Message)
}

func TestAskWithoutAccessibilityLeavesAnswerUntouched(t *testing.T) {
	f := newTutorFixture()

	req := askRequest()
	req.Question = "I don't understand this at all"

	res, err := f.svc.Ask(context.Background(), f.userId, req)
	assert.NoError(t, err)
	assert.Equal(t, f.llm.answer, res.Answer)
	assert.NotContains(t, res.Answer, "🌟")
}

func TestClearHistoryForChapterResetsSession(t *testing.T) {
	f := newTutorFixture()
	f.uow.turns.deleted = 7
	summary := "earlier we discussed matrix addition"
	f.resolver.session.ConversationSummary = &summary
	f.resolver.session.MessageCount = 7
	f.uow.sessions.session = f.resolver.session

	res, err := f.svc.ClearHistory(context.Background(), f.userId, "matrices")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), res.DeletedTurns)

	updated := f.uow.sessions.updated
	assert.NotNil(t, updated)
	assert.Equal(t, 0, updated.MessageCount)
	assert.Nil(t, updated.ConversationSummary)
	assert.Nil(t, updated.LastSummarizedAt)

	assert.Equal(t, []string{"matrices"}, f.resolver.invalidated)
}

func TestClearHistoryWithoutChapterDeletesAllTurns(t *testing.T) {
	f := newTutorFixture()
	f.uow.turns.deleted = 12

	res, err := f.svc.ClearHistory(context.Background(), f.userId, "")
	assert.NoError(t, err)
	assert.Equal(t, int64(12), res.DeletedTurns)
	assert.Empty(t, f.resolver.invalidated)
}

func TestClearHistoryNoActiveSessionIsNoop(t *testing.T) {
	f := newTutorFixture()
	f.uow.sessions.session = nil

	res, err := f.svc.ClearHistory(context.Background(), f.userId, "matrices")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), res.DeletedTurns)
}

func TestArchiveSession(t *testing.T) {
	f := newTutorFixture()

	res, err := f.svc.ArchiveSession(context.Background(), f.userId, f.resolver.session.Id)
	assert.NoError(t, err)
	assert.Equal(t, constant.SessionStatusArchived, res.Status)
	assert.Equal(t, "Matrices - 2026-08-30", res.SessionName)
}

func TestAskRetriesAtExploreThresholdWhenChatPassIsEmpty(t *testing.T) {
	f := newTutorFixture()
	// First pass (chat threshold) finds nothing, the wider pass does.
	f.retriever.queue = [][]*contract.ScoredCourseChunk{
		nil,
		{{Chunk: &entity.CourseChunk{Content: "Determinants measure scaling of area."}, Similarity: 0.25}},
	}

	res, err := f.svc.Ask(context.Background(), f.userId, askRequest())
	assert.NoError(t, err)
	assert.Equal(t, f.llm.answer, res.Answer)

	assert.Len(t, f.retriever.calls, 2)
	assert.Equal(t, 0.3, f.retriever.calls[0].Threshold)
	assert.Equal(t, 0.2, f.retriever.calls[1].Threshold)
	assert.Contains(t, f.llm.lastPrompt, "Determinants measure scaling of area.")
}

func TestAskSinglePassWhenChatThresholdMatches(t *testing.T) {
	f := newTutorFixture()

	_, err := f.svc.Ask(context.Background(), f.userId, askRequest())
	assert.NoError(t, err)
	assert.Len(t, f.retriever.calls, 1)
	assert.Equal(t, 0.3, f.retriever.calls[0].Threshold)
}

func TestGetHistoryWithoutSessionIsBoundedToRecentTurns(t *testing.T) {
	f := newTutorFixture()

	// Ten committed turns; the cross-session fallback must return only the
	// most recent window, in chronological order.
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 10; i++ {
		f.turns = append(f.turns, &entity.ChatTurn{
			Id:        uuid.New(),
			SessionId: f.resolver.session.Id,
			UserId:    f.userId,
			Role:      constant.ChatTurnRoleUser,
			Message:   fmt.Sprintf("question %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	res, err := f.svc.GetHistory(context.Background(), f.userId, nil)
	assert.NoError(t, err)
	assert.Len(t, res.Turns, 6)
	assert.Equal(t, "question 4", res.Turns[0].Message)
	assert.Equal(t, "question 9", res.Turns[5].Message)
}

func TestAskPromptCarriesHistoryAndSummary(t *testing.T) {
	f := newTutorFixture()
	summary := "The student learned what a determinant is."
	f.resolver.session.ConversationSummary = &summary
	f.history.window = []llm.Message{
		{Role: "user", Content: "What is a determinant?"},
		{Role: "assistant", Content: "What happens when you scale a unit square?"},
	}

	_, err := f.svc.Ask(context.Background(), f.userId, askRequest())
	assert.NoError(t, err)

	assert.Contains(t, f.llm.lastPrompt, "determinant")
	assert.Contains(t, f.llm.lastPrompt, "scale a unit square")
	assert.True(t, strings.Contains(f.llm.lastPrompt, summary))
}
