// Copyright (c) 2026 CLinCoDa. All rights reserved.

package solicitud

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/apperr"
	requestutil "github.com/CLinCoDa/Repositoria-SGPI/internal/platform/request"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/respond"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/sec"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/users"
)

// Handler implements the HTTP layer for solicitud operations.
//
// # Routing Strategy
//
// All endpoints require authentication. Visibility is scoped per role:
// accounts without the ver_todas_solicitudes capability only ever see
// their own records, enforced server-side regardless of query filters.
type Handler struct {
	service *Service
}

// NewHandler constructs a solicitud [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with solicitud endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listSolicitudes)
	router.Get("/{id}", handler.getSolicitud)
	router.Post("/", handler.createSolicitud)
	router.Delete("/{id}", handler.deleteSolicitud)
	return router
}

// seesAll reports whether the role may read other users' solicitudes.
func seesAll(claims *sec.AuthClaims) bool {
	role := users.Role(claims.Role)
	return role == users.RoleAdministrador ||
		users.DefaultPermissions(role).Allows(users.CapVerTodasSolicitudes)
}

/*
GET /api/v1/solicitudes.

Description: Retrieves the caller's visible registration requests.

Request:
  - estado: string (Exact status; empty for all)
  - tipo_pi: string (Exact IP type; empty for all)
  - convocatoria: string (Numeric convocatoria id; empty for all)
  - q: string (Accent-insensitive search over codigo/titulo)

Response:
  - 200: []Solicitud with total
  - 400: ErrValidation: Non-numeric convocatoria filter
*/
func (handler *Handler) listSolicitudes(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	queryParams := request.URL.Query()
	filter := Filter{
		Estado:         queryParams.Get("estado"),
		TipoPI:         queryParams.Get("tipo_pi"),
		ConvocatoriaID: queryParams.Get("convocatoria"),
		Query:          queryParams.Get("q"),
	}
	if !seesAll(claims) {
		filter.OwnerID = claims.UserID
	}

	solicitudes, err := handler.service.ListSolicitudes(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.List(writer, solicitudes, len(solicitudes))
}

/*
GET /api/v1/solicitudes/{id}.

Response:
  - 200: Solicitud: Success
  - 403: ErrForbidden: Record belongs to another user
  - 404: ErrNotFound: Solicitud not found
*/
func (handler *Handler) getSolicitud(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.GetSolicitud(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if s.UserID != claims.UserID && !seesAll(claims) {
		respond.Error(writer, request, apperr.Forbidden("No tiene acceso a esta solicitud"))
		return
	}

	respond.OK(writer, s)
}

/*
POST /api/v1/solicitudes.

Description: Files a new registration request owned by the caller. The
codigo and initial estado are assigned server-side.

Request (Body):
  - Solicitud JSON object

Response:
  - 201: Solicitud: Created object with generated codigo
  - 400: ErrInvalidJSON/Validation: Invalid input data
*/
func (handler *Handler) createSolicitud(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Solicitud
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.CreateSolicitud(request.Context(), input, claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

/*
DELETE /api/v1/solicitudes/{id}.

Description: Removes a request. Owners may delete their own records; roles
with full visibility may delete any.

Response:
  - 204: No Content: Success
  - 403: ErrForbidden: Record belongs to another user
  - 404: ErrNotFound: Solicitud not found
*/
func (handler *Handler) deleteSolicitud(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.GetSolicitud(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if s.UserID != claims.UserID && !seesAll(claims) {
		respond.Error(writer, request, apperr.Forbidden("No tiene acceso a esta solicitud"))
		return
	}

	if err := handler.service.DeleteSolicitud(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
