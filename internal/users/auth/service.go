// Copyright (c) 2026 CLinCoDa. All rights reserved.

/*
Package auth implements the identity flows of the SGPI platform.

It covers credential verification with exact failure classification, JWT
issuance, the password reset loop, and the per-user login audit trail.

Architecture:

  - Service: Orchestrates the flows (Authenticate, Login, ChangePassword).
  - UserDirectory: The account store slice these flows read and write.
  - ResetTokenRepository: Redis-backed (with in-process fallback) storage
    for short-lived reset tokens.
  - Security: Bcrypt hashes and RSA-signed JWTs from the sec package.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/apperr"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/constants"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/sec"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/validate"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/users"
)

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID int, username, role string, timeToLive time.Duration) (string, error)
}

// Service implements authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing or login
// logic must be reviewed before release.
type Service struct {
	directory            UserDirectory
	resetTokenRepository ResetTokenRepository
	tokenProvider        TokenProvider
	logger               *slog.Logger
	now                  func() time.Time
}

// NewService constructs an auth [Service] with necessary dependencies.
func NewService(directory UserDirectory, resetRepo ResetTokenRepository, tokenProv TokenProvider, logger *slog.Logger) *Service {
	return &Service{
		directory:            directory,
		resetTokenRepository: resetRepo,
		tokenProvider:        tokenProv,
		logger:               logger,
		now:                  time.Now,
	}
}

// # Authentication Flow

// ClientMeta carries the request fingerprint recorded in the audit trail.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

/*
Authenticate verifies a username/password pair against the directory.

Description: Failures are classified exactly, checked in a fixed order:
unknown user, then inactive account, then wrong password. Inactive and
wrong-password attempts are recorded in the user's audit trail; a success
additionally stamps last_login.

Returns:
  - users.Summary: The authenticated account projection
  - error: apperr.UserNotFound, apperr.UserInactive, or apperr.InvalidPassword
*/
func (service *Service) Authenticate(_ context.Context, username, password string, meta ClientMeta) (users.Summary, error) {

	// 1. Unknown user. Nothing to record: there is no account to attach
	// the attempt to.
	user, found := service.directory.UserByUsername(username)
	if !found {
		return users.Summary{}, apperr.UserNotFound(username)
	}

	// 2. Inactive account, checked before the password on purpose: a
	// deactivated user with correct credentials must learn the account is
	// inactive, not that the password failed.
	if !user.IsActive() {
		service.recordAttempt(user.ID, meta, false, FailureUserInactive)
		return users.Summary{}, apperr.UserInactive(username)
	}

	// 3. Constant-time hash comparison via bcrypt.
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		service.recordAttempt(user.ID, meta, false, FailureInvalidPassword)
		return users.Summary{}, apperr.InvalidPassword()
	}

	service.recordAttempt(user.ID, meta, true, "")

	return user.Summarize(), nil
}

// recordAttempt appends to the audit trail. Recording failures must never
// mask the authentication outcome, so errors are only logged.
func (service *Service) recordAttempt(userID int, meta ClientMeta, success bool, reason string) {
	record := users.LoginRecord{
		ID:            newRecordID(),
		UserID:        userID,
		LoginDate:     service.now().UTC(),
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
		Browser:       browserFamily(meta.UserAgent),
		Success:       success,
		FailureReason: reason,
	}

	if _, err := service.directory.RecordUserLogin(userID, record); err != nil {
		service.logger.Error("failed to record login attempt",
			slog.Int("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// newRecordID returns a time-sortable UUID, falling back to v4 when the
// monotonic source is unavailable.
func newRecordID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// browserFamily extracts the browser name from a raw User-Agent header.
func browserFamily(rawUserAgent string) string {
	if rawUserAgent == "" {
		return ""
	}
	name, _ := useragent.New(rawUserAgent).Browser()
	return name
}

// Session represents a successfully established login.
type Session struct {
	AccessToken string        `json:"access_token"`
	ExpiresIn   int           `json:"expires_in"` // Seconds.
	User        users.Summary `json:"user"`
}

/*
Login authenticates the credentials and issues a signed access token.

Returns:
  - *Session: Transport-ready token and account projection
  - error: Authentication or signing failures
*/
func (service *Service) Login(ctx context.Context, username, password string, meta ClientMeta) (*Session, error) {
	summary, err := service.Authenticate(ctx, username, password, meta)
	if err != nil {
		return nil, err
	}

	accessToken, err := service.tokenProvider.GenerateAccessToken(
		summary.ID, summary.Username, string(summary.Role), constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.logger.Info("user logged in",
		slog.Int("user_id", summary.ID),
		slog.String("username", summary.Username),
		slog.String("ip", meta.IPAddress),
	)

	return &Session{
		AccessToken: accessToken,
		ExpiresIn:   int(constants.AccessTokenTTL.Seconds()),
		User:        summary,
	}, nil
}

// # Password Management

/*
ChangePassword rotates an authenticated user's password.

Description: Verifies the current password before accepting the new one.

Returns:
  - error: apperr.InvalidPassword, validation, or storage failures
*/
func (service *Service) ChangePassword(_ context.Context, userID int, currentPassword, newPassword string) error {
	user, found := service.directory.UserByID(userID)
	if !found {
		return apperr.NotFound("Usuario")
	}

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.InvalidPassword()
	}

	v := &validate.Validator{}
	v.MinLen("new_password", newPassword, 8)
	if err := v.Err(); err != nil {
		return err
	}

	hash, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if _, _, err := service.directory.UpdateUser(userID, users.Patch{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	service.logger.Info("password changed", slog.Int("user_id", userID))
	return nil
}

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token bound to the account and stores it
with a 30-minute TTL. An unknown email yields an empty token and no error,
preventing account enumeration.

Returns:
  - string: Reset token (empty when the email is unknown)
  - error: Generation or storage failures
*/
func (service *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, found := service.userByEmail(email)
	if !found {
		return "", nil
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.resetTokenRepository.Set(ctx, token, user.ID, constants.ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	// TODO: deliver the token by email once the SMTP relay is provisioned.
	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Returns:
  - error: apperr.NotFound (bad token), validation, or storage failures
*/
func (service *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := service.resetTokenRepository.Get(ctx, token)
	if err != nil {
		return err
	}

	v := &validate.Validator{}
	v.MinLen("new_password", newPassword, 8)
	if err := v.Err(); err != nil {
		return err
	}

	hash, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if _, _, err := service.directory.UpdateUser(userID, users.Patch{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Single use: the token dies with the reset.
	_ = service.resetTokenRepository.Delete(ctx, token)

	service.logger.Info("password reset completed", slog.Int("user_id", userID))
	return nil
}

func (service *Service) userByEmail(email string) (users.User, bool) {
	for _, user := range service.directory.Users() {
		if user.Email == email {
			return user, true
		}
	}
	return users.User{}, false
}
