package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

// SessionRepository is the single source of truth for sessions, keyed by code.
// Sessions are never evicted; they live for the process (or store) lifetime.
type SessionRepository interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByCode(ctx context.Context, code string) (*entity.Session, error)
	Exists(ctx context.Context, code string) (bool, error)
}

type memorySessions struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

// NewMemorySessionRepository returns the default in-process store. Sessions
// are deep-copied on the way in and out, so the stored state is never aliased
// by a caller: like the Redis backend, every read yields a fresh snapshot.
func NewMemorySessionRepository() SessionRepository {
	return &memorySessions{
		sessions: make(map[string]*entity.Session),
	}
}

func (that *memorySessions) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.Code] = session.Clone()

	return nil
}

func (that *memorySessions) GetByCode(_ context.Context, code string) (*entity.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[code]
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	return session.Clone(), nil
}

func (that *memorySessions) Exists(_ context.Context, code string) (bool, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	_, ok := that.sessions[code]

	return ok, nil
}
