// Copyright (c) 2026 CLinCoDa. All rights reserved.

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/apperr"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/sec"
)

// MemoryResetTokenRepository implements ResetTokenRepository in-process.
// It is the fallback for deployments without Redis; tokens do not survive a
// restart, which is acceptable for 30-minute reset links. Like the Redis
// implementation, it keys by the token's SHA-256 digest.
type MemoryResetTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
	now    func() time.Time
}

type memoryToken struct {
	userID    int
	expiresAt time.Time
}

// NewMemoryResetTokenRepository creates an in-process ResetTokenRepository.
func NewMemoryResetTokenRepository() *MemoryResetTokenRepository {
	return &MemoryResetTokenRepository{
		tokens: make(map[string]memoryToken),
		now:    time.Now,
	}
}

// Set stores a reset token with its expiry.
func (repository *MemoryResetTokenRepository) Set(_ context.Context, token string, userID int, ttl time.Duration) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.tokens[sec.HashToken(token)] = memoryToken{
		userID:    userID,
		expiresAt: repository.now().Add(ttl),
	}
	return nil
}

// Get retrieves the userID for a token, expiring lazily on read.
func (repository *MemoryResetTokenRepository) Get(_ context.Context, token string) (int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	key := sec.HashToken(token)
	entry, found := repository.tokens[key]
	if !found || repository.now().After(entry.expiresAt) {
		delete(repository.tokens, key)
		return 0, apperr.NotFound("Reset token is invalid or expired")
	}
	return entry.userID, nil
}

// Delete removes the token.
func (repository *MemoryResetTokenRepository) Delete(_ context.Context, token string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	delete(repository.tokens, sec.HashToken(token))
	return nil
}
