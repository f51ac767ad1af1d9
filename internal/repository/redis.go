package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

type redisSessions struct {
	client *redis.Client
}

// NewRedisSessionRepository stores sessions as JSON under "session:<code>".
// No TTL is set: retention matches the in-memory store.
func NewRedisSessionRepository(client *redis.Client) SessionRepository {
	return &redisSessions{
		client: client,
	}
}

func (that *redisSessions) CreateOrUpdate(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	if err = that.client.Set(ctx, sessionKey(session.Code), sessionJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *redisSessions) GetByCode(ctx context.Context, code string) (*entity.Session, error) {
	response, err := that.client.Get(ctx, sessionKey(code)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by code: %w", err)
	}

	var session entity.Session
	if err = json.Unmarshal([]byte(response), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (that *redisSessions) Exists(ctx context.Context, code string) (bool, error) {
	count, err := that.client.Exists(ctx, sessionKey(code)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}

	return count > 0, nil
}

func sessionKey(code string) string {
	return "session:" + code
}
