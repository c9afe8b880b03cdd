// Copyright (c) 2026 CLinCoDa. All rights reserved.

package auth

// ResetTokenLength is the entropy (in bytes) of password reset tokens.
const ResetTokenLength = 32

// Failure reasons recorded in the login audit trail.
const (
	FailureInvalidPassword = "invalid_password"
	FailureUserInactive    = "user_inactive"
)
