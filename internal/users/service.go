// Copyright (c) 2026 CLinCoDa. All rights reserved.

package users

import (
	"context"
	"log/slog"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/apperr"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/sec"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/validate"
)

// Service implements account administration on top of a [Repository].
//
// Authentication lives in the auth subpackage; this service only covers the
// administrative CRUD surface.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a users [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// NewUserInput is the creation payload. The plaintext password is hashed
// here and never stored.
type NewUserInput struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       Role   `json:"role"`
	FullName   string `json:"full_name"`
	Department string `json:"department"`
}

// minPasswordLength mirrors the frontend rule so the API is the authority.
const minPasswordLength = 8

func (input NewUserInput) validate() error {
	v := &validate.Validator{}
	v.Required("username", input.Username).MaxLen("username", input.Username, 50)
	v.Email("email", input.Email)
	v.MinLen("password", input.Password, minPasswordLength)
	v.Required("full_name", input.FullName)
	v.Custom("role", !input.Role.IsValid(),
		"Must be one of: administrador, gestor, docente, coordinador")
	return v.Err()
}

// ListUsers returns every account as a [Summary] projection.
func (service *Service) ListUsers(_ context.Context) []Summary {
	all := service.repo.Users()

	summaries := make([]Summary, 0, len(all))
	for _, u := range all {
		summaries = append(summaries, u.Summarize())
	}
	return summaries
}

// GetUser returns one account by id.
func (service *Service) GetUser(_ context.Context, id int) (User, error) {
	u, found := service.repo.UserByID(id)
	if !found {
		return User{}, apperr.NotFound("Usuario")
	}
	return u, nil
}

// CreateUser validates the input, hashes the password, and stores the new
// account. Role defaults drive the permission set.
func (service *Service) CreateUser(_ context.Context, input NewUserInput) (User, error) {
	if err := input.validate(); err != nil {
		return User{}, err
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return User{}, apperr.Internal(err)
	}

	created, err := service.repo.CreateUser(User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		FullName:     input.FullName,
		Department:   input.Department,
	})
	if err != nil {
		return User{}, err
	}

	service.logger.Info("user created",
		slog.Int("user_id", created.ID),
		slog.String("username", created.Username),
		slog.String("role", string(created.Role)),
	)

	return created, nil
}

// UpdateUser applies a partial update. Username and role are immutable.
func (service *Service) UpdateUser(_ context.Context, id int, patch Patch) (User, error) {
	v := &validate.Validator{}
	if patch.Email != nil {
		v.Email("email", *patch.Email)
	}
	if patch.Status != nil {
		v.OneOf("status", string(*patch.Status), string(StatusActivo), string(StatusInactivo))
	}
	if err := v.Err(); err != nil {
		return User{}, err
	}

	updated, found, err := service.repo.UpdateUser(id, patch)
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, apperr.NotFound("Usuario")
	}
	return updated, nil
}

// DeactivateUser performs the soft delete: the account row survives so
// solicitudes keep a valid owner reference.
func (service *Service) DeactivateUser(_ context.Context, id int) error {
	found, err := service.repo.DeleteUser(id, true)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("Usuario")
	}

	service.logger.Info("user deactivated", slog.Int("user_id", id))
	return nil
}
