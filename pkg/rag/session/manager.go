package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/parv18050212/ai-tutor/internal/constant"
	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/internal/pkg/logger"
	"github.com/parv18050212/ai-tutor/internal/repository/specification"
	"github.com/parv18050212/ai-tutor/internal/repository/unitofwork"
)

const (
	lockTTL      = 5 * time.Second
	cacheTTL     = 10 * time.Minute
	lockKeyScope = "tutor:session:lock:%s:%s"
)

// Manager resolves the single active session per (user, chapter).
// The partial unique index on chat_sessions is the source of truth;
// the Redis lock just narrows the race window, and the local cache
// saves a lookup on the hot path.
type Manager struct {
	uowFactory unitofwork.RepositoryFactory
	redis      *redis.Client
	localCache *cache.Cache
	logger     logger.ILogger
}

func NewManager(uowFactory unitofwork.RepositoryFactory, redisClient *redis.Client, localCache *cache.Cache, log logger.ILogger) *Manager {
	return &Manager{
		uowFactory: uowFactory,
		redis:      redisClient,
		localCache: localCache,
		logger:     log,
	}
}

func cacheKey(userId uuid.UUID, chapterId string) string {
	return fmt.Sprintf("session:%s:%s", userId, chapterId)
}

// GetOrCreate returns the active session for the user and chapter, creating
// one when none exists. Archived sessions are never resurrected.
func (m *Manager) GetOrCreate(ctx context.Context, userId uuid.UUID, scope entity.TopicScope) (*entity.ChatSession, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	key := cacheKey(userId, scope.ChapterId)
	if cached, found := m.localCache.Get(key); found {
		if sessionId, ok := cached.(uuid.UUID); ok {
			session, err := repo.FindOne(ctx,
				specification.ByID{ID: sessionId},
				specification.ActiveOnly{},
			)
			if err == nil && session != nil {
				m.touch(ctx, repo, session)
				return session, nil
			}
			m.localCache.Delete(key)
		}
	}

	session, err := m.findActive(ctx, repo, userId, scope.ChapterId)
	if err != nil {
		return nil, err
	}
	if session != nil {
		m.touch(ctx, repo, session)
		m.localCache.Set(key, session.Id, cacheTTL)
		return session, nil
	}

	// Narrow the creation race across instances. The unique index still
	// backstops us if the lock is lost or Redis is down.
	lockKey := fmt.Sprintf(lockKeyScope, userId, scope.ChapterId)
	if m.redis != nil {
		acquired, lockErr := m.redis.SetNX(ctx, lockKey, "1", lockTTL).Result()
		if lockErr != nil {
			m.logger.Warn("session", "session lock unavailable, relying on unique index", map[string]interface{}{
				"error": lockErr.Error(),
			})
		} else if acquired {
			defer m.redis.Del(ctx, lockKey)
		} else {
			// Someone else is creating it, give them a beat then re-check.
			time.Sleep(100 * time.Millisecond)
			session, err = m.findActive(ctx, repo, userId, scope.ChapterId)
			if err != nil {
				return nil, err
			}
			if session != nil {
				m.localCache.Set(key, session.Id, cacheTTL)
				return session, nil
			}
		}
	}

	session = &entity.ChatSession{
		UserId:       userId,
		Scope:        scope,
		SessionName:  fmt.Sprintf("%s - %s", scope.ChapterName, time.Now().Format("2006-01-02")),
		Status:       constant.SessionStatusActive,
		MessageCount: 0,
	}

	if err := repo.Create(ctx, session); err != nil {
		if isUniqueViolation(err) {
			// Lost the race, the winner's session is the active one.
			existing, findErr := m.findActive(ctx, repo, userId, scope.ChapterId)
			if findErr != nil {
				return nil, findErr
			}
			if existing != nil {
				m.localCache.Set(key, existing.Id, cacheTTL)
				return existing, nil
			}
		}
		return nil, err
	}

	m.logger.Info("session", "created chat session", map[string]interface{}{
		"session_id": session.Id,
		"user_id":    userId,
		"chapter_id": scope.ChapterId,
	})
	m.localCache.Set(key, session.Id, cacheTTL)
	return session, nil
}

// Archive marks a session archived. The transition is terminal; the next
// question on that chapter starts a fresh session.
func (m *Manager) Archive(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	session, err := repo.FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	if session.Status == constant.SessionStatusArchived {
		return session, nil
	}

	session.Status = constant.SessionStatusArchived
	if err := repo.Update(ctx, session); err != nil {
		return nil, err
	}

	m.localCache.Delete(cacheKey(userId, session.Scope.ChapterId))
	m.logger.Info("session", "archived chat session", map[string]interface{}{
		"session_id": session.Id,
		"user_id":    userId,
	})
	return session, nil
}

// Invalidate drops the cached session for a user and chapter, used when
// history is cleared outside the manager.
func (m *Manager) Invalidate(userId uuid.UUID, chapterId string) {
	m.localCache.Delete(cacheKey(userId, chapterId))
}

func (m *Manager) findActive(ctx context.Context, repo interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
}, userId uuid.UUID, chapterId string) (*entity.ChatSession, error) {
	return repo.FindOne(ctx,
		specification.OwnedBy{UserID: userId},
		specification.ByChapterID{ChapterID: chapterId},
		specification.ActiveOnly{},
	)
}

// touch bumps updated_at through the single-column path. A full-row write
// here could clobber a summary persisted between our read and the write.
func (m *Manager) touch(ctx context.Context, repo interface {
	Touch(ctx context.Context, sessionId uuid.UUID) error
}, session *entity.ChatSession) {
	now := time.Now()
	session.UpdatedAt = &now
	if err := repo.Touch(ctx, session.Id); err != nil {
		m.logger.Warn("session", "failed to touch session", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "23505")
}
