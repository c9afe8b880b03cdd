// Copyright (c) 2026 CLinCoDa. All rights reserved.

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/apperr"
	requestutil "github.com/CLinCoDa/Repositoria-SGPI/internal/platform/request"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/respond"
)

// Handler implements the HTTP layer for authentication.
type Handler struct {
	service *Service
	users   UserDirectory
}

// NewHandler constructs an auth [Handler].
func NewHandler(service *Service, directory UserDirectory) *Handler {
	return &Handler{service: service, users: directory}
}

// Routes returns a [chi.Router] with the credential endpoints open and the
// session endpoints wrapped in the supplied middleware (the authentication
// gate, injected by the API server).
func (handler *Handler) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	router.Group(func(session chi.Router) {
		session.Use(requireAuth)
		session.Get("/me", handler.me)
		session.Post("/change-password", handler.changePassword)
		session.Post("/logout", handler.logout)
	})

	return router
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/*
POST /api/v1/auth/login.

Description: Verifies credentials and issues a signed access token. The
attempt is recorded in the account's login history either way.

Request (Body):
  - { "username": "string", "password": "string" }

Response:
  - 200: Session: Token and account summary
  - 401: USER_NOT_FOUND / USER_INACTIVE / INVALID_PASSWORD
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginPayload
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Login(request.Context(), input.Username, input.Password, clientMeta(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
GET /api/v1/auth/me.

Response:
  - 200: Summary: The caller's account projection
  - 401: ErrUnauthorized: Missing or invalid token
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, found := handler.users.UserByID(userID)
	if !found {
		respond.Error(writer, request, apperr.NotFound("Usuario"))
		return
	}

	respond.OK(writer, user.Summarize())
}

type changePasswordPayload struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

/*
POST /api/v1/auth/change-password.

Response:
  - 204: No Content: Success
  - 401: INVALID_PASSWORD: Current password incorrect
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordPayload
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ChangePassword(request.Context(), userID, input.CurrentPassword, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

type forgotPasswordPayload struct {
	Email string `json:"email"`
}

/*
POST /api/v1/auth/forgot-password.

Description: Always answers 200 with a generic message so the endpoint
cannot be used to enumerate registered emails.

Response:
  - 200: Message: Generic acknowledgement
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordPayload
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.service.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		"message": "Si el correo existe, se enviará un enlace de recuperación",
	})
}

type resetPasswordPayload struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

/*
POST /api/v1/auth/reset-password.

Response:
  - 204: No Content: Success
  - 404: ErrNotFound: Token invalid or expired
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordPayload
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ResetPassword(request.Context(), input.Token, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/auth/logout.

Description: Access tokens are stateless, so logout is an acknowledgement;
clients drop the token. Kept as an endpoint so the frontend flow and audit
logs have an explicit event.

Response:
  - 200: Message: Acknowledgement
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if _, err := requestutil.RequiredUserID(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"message": "Sesión finalizada"})
}

// clientMeta builds the audit fingerprint from transport headers.
func clientMeta(request *http.Request) ClientMeta {
	return ClientMeta{
		IPAddress: request.RemoteAddr,
		UserAgent: request.UserAgent(),
	}
}
