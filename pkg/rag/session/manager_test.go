package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/parv18050212/ai-tutor/internal/constant"
	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/repository/contract"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
	"github.com/parv18050212/ai-tutor/internal/repository/unitofwork"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// memSessionRepo keeps sessions in a map and honors the specs the manager
// actually uses: ByID, OwnedBy, ByChapterID, ActiveOnly.
type memSessionRepo struct {
	sessions      map[uuid.UUID]*entity.ChatSession
	createErr     error
	creates       int
	fullUpdates   int
	touches       int
	findOneMisses int
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]*entity.ChatSession)}
}

func (r *memSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	session.CreatedAt = time.Now()
	cp := *session
	r.sessions[session.Id] = &cp
	return nil
}

func (r *memSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	r.fullUpdates++
	cp := *session
	r.sessions[session.Id] = &cp
	return nil
}

func (r *memSessionRepo) Touch(ctx context.Context, sessionId uuid.UUID) error {
	s, ok := r.sessions[sessionId]
	if !ok {
		return fmt.Errorf("session not found")
	}
	r.touches++
	now := time.Now()
	s.UpdatedAt = &now
	return nil
}

func (r *memSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.sessions, id)
	return nil
}

func (r *memSessionRepo) matches(s *entity.ChatSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if s.Id != sp.ID {
				return false
			}
		case specification.OwnedBy:
			if s.UserId != sp.UserID {
				return false
			}
		case specification.ByChapterID:
			if s.Scope.ChapterId != sp.ChapterID {
				return false
			}
		case specification.ActiveOnly:
			if s.Status != constant.SessionStatusActive {
				return false
			}
		}
	}
	return true
}

func (r *memSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	if r.findOneMisses > 0 {
		r.findOneMisses--
		return nil, nil
	}
	for _, s := range r.sessions {
		if r.matches(s, specs) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	var out []*entity.ChatSession
	for _, s := range r.sessions {
		if r.matches(s, specs) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *memSessionRepo) IncrementMessageCount(ctx context.Context, sessionId uuid.UUID) (int, error) {
	s, ok := r.sessions[sessionId]
	if !ok {
		return 0, fmt.Errorf("session not found")
	}
	s.MessageCount++
	return s.MessageCount, nil
}

type memUow struct {
	sessions *memSessionRepo
}

func (u *memUow) Begin(ctx context.Context) error { return nil }
func (u *memUow) Commit() error                   { return nil }
func (u *memUow) Rollback() error                 { return nil }

func (u *memUow) CourseChunkRepository() contract.CourseChunkRepository       { return nil }
func (u *memUow) CourseMaterialRepository() contract.CourseMaterialRepository { return nil }
func (u *memUow) ChatTurnRepository() contract.ChatTurnRepository             { return nil }
func (u *memUow) QuizResultRepository() contract.QuizResultRepository         { return nil }
func (u *memUow) ChatSessionRepository() contract.ChatSessionRepository       { return u.sessions }

type memFactory struct {
	uow *memUow
}

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func newTestManager() (*Manager, *memSessionRepo) {
	repo := newMemSessionRepo()
	m := NewManager(
		&memFactory{uow: &memUow{sessions: repo}},
		nil, // no redis: rely on the unique index path
		cache.New(time.Minute, time.Minute),
		nopLogger{},
	)
	return m, repo
}

func testScope() entity.TopicScope {
	return entity.TopicScope{
		ExamId:      "jee",
		SubjectId:   "math",
		ChapterId:   "matrices",
		ExamName:    "JEE",
		SubjectName: "Mathematics",
		ChapterName: "Matrices",
	}
}

func TestGetOrCreateCreatesNamedActiveSession(t *testing.T) {
	m, repo := newTestManager()
	userId := uuid.New()

	session, err := m.GetOrCreate(context.Background(), userId, testScope())
	assert.NoError(t, err)
	assert.NotNil(t, session)

	assert.Equal(t, constant.SessionStatusActive, session.Status)
	assert.Equal(t, 0, session.MessageCount)
	expectedName := fmt.Sprintf("Matrices - %s", time.Now().Format("2006-01-02"))
	assert.Equal(t, expectedName, session.SessionName)
	assert.Equal(t, 1, repo.creates)
}

func TestGetOrCreateReusesActiveSession(t *testing.T) {
	m, repo := newTestManager()
	userId := uuid.New()

	first, err := m.GetOrCreate(context.Background(), userId, testScope())
	assert.NoError(t, err)

	second, err := m.GetOrCreate(context.Background(), userId, testScope())
	assert.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, 1, repo.creates, "second call must not create a new session")
}

func TestGetOrCreateIsScopedPerChapter(t *testing.T) {
	m, _ := newTestManager()
	userId := uuid.New()

	matrices, err := m.GetOrCreate(context.Background(), userId, testScope())
	assert.NoError(t, err)

	other := testScope()
	other.ChapterId = "calculus"
	other.ChapterName = "Calculus"
	calculus, err := m.GetOrCreate(context.Background(), userId, other)
	assert.NoError(t, err)

	assert.NotEqual(t, matrices.Id, calculus.Id)
}

func TestGetOrCreateRecoversFromLostRace(t *testing.T) {
	m, repo := newTestManager()
	userId := uuid.New()

	// Another instance won the race: its session is already in the table and
	// our insert bounces off the partial unique index.
	winner := &entity.ChatSession{
		Id:     uuid.New(),
		UserId: userId,
		Scope:  testScope(),
		Status: constant.SessionStatusActive,
	}
	repo.sessions[winner.Id] = winner

	// The first lookup misses (visibility gap), the insert violates the
	// unique index, and the re-fetch must land on the winner's session.
	repo.findOneMisses = 1
	repo.createErr = errors.New(`duplicate key value violates unique constraint "idx_chat_sessions_active_user_chapter" (SQLSTATE 23505)`)

	session, err := m.GetOrCreate(context.Background(), userId, testScope())
	assert.NoError(t, err)
	assert.Equal(t, winner.Id, session.Id)
}

func TestGetOrCreateReuseNeverRewritesSummary(t *testing.T) {
	m, repo := newTestManager()
	userId := uuid.New()

	session, err := m.GetOrCreate(context.Background(), userId, testScope())
	assert.NoError(t, err)

	// A summarizer on another instance persisted a summary after our read.
	summary := "The student is working through matrix multiplication."
	repo.sessions[session.Id].ConversationSummary = &summary

	for i := 0; i < 2; i++ {
		again, err := m.GetOrCreate(context.Background(), userId, testScope())
		assert.NoError(t, err)
		assert.Equal(t, session.Id, again.Id)
	}

	stored := repo.sessions[session.Id]
	assert.NotNil(t, stored.ConversationSummary)
	assert.Equal(t, summary, *stored.ConversationSummary)
	assert.Equal(t, 0, repo.fullUpdates, "reuse must bump updated_at without a full-row write")
	assert.Equal(t, 2, repo.touches)
	assert.NotNil(t, stored.UpdatedAt)
}

func TestArchiveIsTerminalAndIdempotent(t *testing.T) {
	m, repo := newTestManager()
	userId := uuid.New()

	session, err := m.GetOrCreate(context.Background(), userId, testScope())
	assert.NoError(t, err)

	archived, err := m.Archive(context.Background(), userId, session.Id)
	assert.NoError(t, err)
	assert.Equal(t, constant.SessionStatusArchived, archived.Status)

	// Archiving again is a no-op, not an error.
	again, err := m.Archive(context.Background(), userId, session.Id)
	assert.NoError(t, err)
	assert.Equal(t, constant.SessionStatusArchived, again.Status)

	// The next question on the chapter starts fresh.
	fresh, err := m.GetOrCreate(context.Background(), userId, testScope())
	assert.NoError(t, err)
	assert.NotEqual(t, session.Id, fresh.Id)
	assert.Equal(t, 2, repo.creates)
}

func TestArchiveUnknownSessionReturnsNil(t *testing.T) {
	m, _ := newTestManager()

	session, err := m.Archive(context.Background(), uuid.New(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, session)
}

func TestArchiveIgnoresForeignSessions(t *testing.T) {
	m, _ := newTestManager()
	owner := uuid.New()

	session, err := m.GetOrCreate(context.Background(), owner, testScope())
	assert.NoError(t, err)

	stranger := uuid.New()
	res, err := m.Archive(context.Background(), stranger, session.Id)
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(errors.New("duplicate key value violates unique constraint")))
	assert.True(t, isUniqueViolation(errors.New("ERROR: some constraint (SQLSTATE 23505)")))
}
