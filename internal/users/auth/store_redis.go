// Copyright (c) 2026 CLinCoDa. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/apperr"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/constants"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/sec"
)

// RedisResetTokenRepository implements ResetTokenRepository using Redis.
//
// Tokens are keyed by their SHA-256 digest, never stored raw: a leaked key
// dump cannot be replayed as reset links.
type RedisResetTokenRepository struct {
	client *redis.Client
}

// NewRedisResetTokenRepository creates a Redis-backed ResetTokenRepository.
func NewRedisResetTokenRepository(client *redis.Client) *RedisResetTokenRepository {
	return &RedisResetTokenRepository{client: client}
}

/*
Set stores a reset token with its associated userID and TTL.

Returns:
  - error: Execution errors
*/
func (repository *RedisResetTokenRepository) Set(ctx context.Context, token string, userID int, ttl time.Duration) error {

	// Key by digest, prefixed per the cache taxonomy
	key := constants.RedisPrefixResetToken + sec.HashToken(token)

	// Set the token with TTL
	if err := repository.client.Set(ctx, key, strconv.Itoa(userID), ttl).Err(); err != nil {
		return fmt.Errorf("redis_reset_token_set_failed: %w", err)
	}

	return nil
}

/*
Get retrieves the userID for a given token.

Description: Returns apperr.NotFound if the token is absent or expired.

Returns:
  - int: Original UserID
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisResetTokenRepository) Get(ctx context.Context, token string) (int, error) {

	// Key by digest, prefixed per the cache taxonomy
	key := constants.RedisPrefixResetToken + sec.HashToken(token)

	// Get the token from Redis
	raw, err := repository.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, apperr.NotFound("Reset token is invalid or expired")
		}
		return 0, fmt.Errorf("redis_reset_token_get_failed: %w", err)
	}

	userID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("redis_reset_token_parse_failed: %w", err)
	}

	return userID, nil
}

/*
Delete removes the token from Redis.

Returns:
  - error: Deletion failures
*/
func (repository *RedisResetTokenRepository) Delete(ctx context.Context, token string) error {

	// Key by digest, prefixed per the cache taxonomy
	key := constants.RedisPrefixResetToken + sec.HashToken(token)

	// Delete the token from Redis
	if err := repository.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis_reset_token_delete_failed: %w", err)
	}

	return nil
}
