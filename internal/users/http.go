// Copyright (c) 2026 CLinCoDa. All rights reserved.

package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/CLinCoDa/Repositoria-SGPI/internal/platform/request"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/respond"
)

// Handler implements the HTTP layer for account administration.
//
// The whole router is mounted behind the gestionar_usuarios capability:
// only administrators reach these endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a users [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with user administration
// endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listUsers)
	router.Get("/{id}", handler.getUser)
	router.Post("/", handler.createUser)
	router.Put("/{id}", handler.updateUser)
	router.Delete("/{id}", handler.deleteUser)
	return router
}

/*
GET /api/v1/users.

Description: Lists every account as a reduced summary (no password hashes,
no login history).

Response:
  - 200: []Summary with total
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	summaries := handler.service.ListUsers(request.Context())
	respond.List(writer, summaries, len(summaries))
}

/*
GET /api/v1/users/{id}.

Response:
  - 200: User: Success (includes the permission set)
  - 404: ErrNotFound: Usuario not found
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	u, err := handler.service.GetUser(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, u)
}

/*
POST /api/v1/users.

Description: Registers a new account. The permission set is derived from
the role; the password is hashed server-side.

Request (Body):
  - NewUserInput JSON object

Response:
  - 201: User: Created object
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 409: ErrConflict: Username already taken
*/
func (handler *Handler) createUser(writer http.ResponseWriter, request *http.Request) {
	var input NewUserInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.CreateUser(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

// userPatchPayload is the wire shape of a partial account update. Username
// and role are immutable and deliberately absent.
type userPatchPayload struct {
	Email      *string `json:"email"`
	FullName   *string `json:"full_name"`
	Department *string `json:"department"`
	Status     *Status `json:"status"`
}

/*
PUT /api/v1/users/{id}.

Response:
  - 200: User: Updated entity
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 404: ErrNotFound: Usuario not found
*/
func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input userPatchPayload
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateUser(request.Context(), id, Patch{
		Email:      input.Email,
		FullName:   input.FullName,
		Department: input.Department,
		Status:     input.Status,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
DELETE /api/v1/users/{id}.

Description: Deactivates the account (soft delete). The row survives so
solicitudes keep a valid owner; the user can no longer authenticate.

Response:
  - 204: No Content: Success
  - 404: ErrNotFound: Usuario not found
*/
func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeactivateUser(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
