// Copyright (c) 2026 CLinCoDa. All rights reserved.

package auth

import (
	"context"
	"time"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/users"
)

// UserDirectory is the slice of the account store the auth flows need.
// The platform store satisfies it.
type UserDirectory interface {
	UserByID(id int) (users.User, bool)
	UserByUsername(username string) (users.User, bool)
	Users() []users.User
	UpdateUser(id int, patch users.Patch) (users.User, bool, error)
	RecordUserLogin(id int, record users.LoginRecord) (bool, error)
}

// ResetTokenRepository stores short-lived password reset tokens.
//
// Backed by Redis when available ([RedisResetTokenRepository]) with an
// in-process fallback ([MemoryResetTokenRepository]) for single-node
// deployments without one.
type ResetTokenRepository interface {
	Set(ctx context.Context, token string, userID int, ttl time.Duration) error
	Get(ctx context.Context, token string) (int, error)
	Delete(ctx context.Context, token string) error
}
