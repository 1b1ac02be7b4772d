package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
	"shelftrack/pkg/redis"
)

const tokenKeyPrefix = "shelftrack:token:"

// TokenRepository keeps bearer tokens in Redis so they expire on their own
// and revocation is a single delete.
type TokenRepository struct {
	client *redis.Client
	logger logger.Logger
}

func NewTokenRepository(client *redis.Client, logger logger.Logger) domain.TokenRepository {
	return &TokenRepository{
		client: client,
		logger: logger,
	}
}

func (r *TokenRepository) Save(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if err := r.client.Set(ctx, tokenKeyPrefix+token, userID, ttl); err != nil {
		r.logger.Error("Could not store token", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return fmt.Errorf("could not store token: %w", err)
	}
	return nil
}

func (r *TokenRepository) Resolve(ctx context.Context, token string) (int64, error) {
	value, err := r.client.Get(ctx, tokenKeyPrefix+token)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, domain.ErrUnauthenticated
		}
		r.logger.Error("Could not resolve token", map[string]interface{}{"error": err.Error()})
		return 0, fmt.Errorf("could not resolve token: %w", err)
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt token entry: %w", err)
	}

	return userID, nil
}

func (r *TokenRepository) Delete(ctx context.Context, token string) error {
	if err := r.client.Delete(ctx, tokenKeyPrefix+token); err != nil {
		r.logger.Error("Could not delete token", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("could not delete token: %w", err)
	}
	return nil
}
