// Copyright (c) 2026 CLinCoDa. All rights reserved.

package convocatoria

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/CLinCoDa/Repositoria-SGPI/internal/platform/request"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/respond"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/validate"
)

// Handler implements the HTTP layer for convocatoria operations.
//
// # Routing Strategy
//
//   - Read endpoints are open to every authenticated role: the dashboard and
//     the docente submission form both browse periods.
//   - Write endpoints are mounted behind the gestionar_convocatorias
//     capability by the API server.
type Handler struct {
	service *Service
}

// NewHandler constructs a convocatoria [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the browse endpoints open and the
// management endpoints wrapped in the supplied middleware (the capability
// gate, injected by the API server).
func (handler *Handler) Routes(manage func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listConvocatorias)
	router.Get("/{id}", handler.getConvocatoria)

	router.Group(func(writes chi.Router) {
		writes.Use(manage)
		writes.Post("/", handler.createConvocatoria)
		writes.Put("/{id}", handler.updateConvocatoria)
		writes.Delete("/{id}", handler.deleteConvocatoria)
	})

	return router
}

/*
GET /api/v1/convocatorias.

Description: Retrieves the filtered list of application periods, newest
year first.

Request:
  - anio: string ("all" or a year)
  - tipo: string ("all", "normal", "extraordinaria")
  - estado: string ("all", "planificada", "registro", "finalizada")
  - q: string (Accent-insensitive search over nombre/descripcion/tipo)

Response:
  - 200: []Convocatoria with total
*/
func (handler *Handler) listConvocatorias(writer http.ResponseWriter, request *http.Request) {
	queryParams := request.URL.Query()

	filter := Filter{
		Anio:   queryParams.Get("anio"),
		Tipo:   queryParams.Get("tipo"),
		Estado: queryParams.Get("estado"),
		Query:  queryParams.Get("q"),
	}

	convocatorias := handler.service.ListConvocatorias(request.Context(), filter)
	respond.List(writer, convocatorias, len(convocatorias))
}

/*
GET /api/v1/convocatorias/{id}.

Response:
  - 200: Convocatoria: Success
  - 400: ErrValidation: Malformed identifier
  - 404: ErrNotFound: Convocatoria not found
*/
func (handler *Handler) getConvocatoria(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	c, err := handler.service.GetConvocatoria(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, c)
}

/*
POST /api/v1/convocatorias.

Description: Registers a new application period. Estado is derived from the
date range when omitted.

Request (Body):
  - Convocatoria JSON object

Response:
  - 201: Convocatoria: Created object
  - 400: ErrInvalidJSON/Validation: Invalid input data
*/
func (handler *Handler) createConvocatoria(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Convocatoria
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.CreateConvocatoria(request.Context(), input, userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

// patchPayload is the wire shape of a partial update: absent fields stay
// untouched, present fields (including explicit zero values) are applied.
// Trimestre is raw so an explicit null (clear it) can be told apart from
// an absent key (leave it).
type patchPayload struct {
	Tipo        *Tipo           `json:"tipo"`
	Anio        *int            `json:"anio"`
	Trimestre   json.RawMessage `json:"trimestre"`
	Nombre      *string         `json:"nombre"`
	Descripcion *string         `json:"descripcion"`
	FechaInicio *string         `json:"fecha_inicio"`
	FechaFin    *string         `json:"fecha_fin"`
	Estado      *Estado         `json:"estado"`
	Publicada   *bool           `json:"publicada"`
}

// trimestrePatch decodes the raw trimestre field into the three-state
// patch shape, or reports a malformed value.
func (p patchPayload) trimestrePatch() (**int, error) {
	if len(p.Trimestre) == 0 {
		return nil, nil
	}
	var trimestre *int
	if err := json.Unmarshal(p.Trimestre, &trimestre); err != nil {
		return nil, validate.ErrInvalidJSON
	}
	return &trimestre, nil
}

/*
PUT /api/v1/convocatorias/{id}.

Description: Applies a partial update. The merged record is re-validated
under the same invariants as creation; an explicitly supplied estado is
stored as-is.

Response:
  - 200: Convocatoria: Updated entity
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 404: ErrNotFound: Convocatoria not found
*/
func (handler *Handler) updateConvocatoria(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input patchPayload
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	trimestre, err := input.trimestrePatch()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateConvocatoria(request.Context(), id, Patch{
		Tipo:        input.Tipo,
		Anio:        input.Anio,
		Trimestre:   trimestre,
		Nombre:      input.Nombre,
		Descripcion: input.Descripcion,
		FechaInicio: input.FechaInicio,
		FechaFin:    input.FechaFin,
		Estado:      input.Estado,
		Publicada:   input.Publicada,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
DELETE /api/v1/convocatorias/{id}.

Response:
  - 204: No Content: Success
  - 404: ErrNotFound: Convocatoria not found
*/
func (handler *Handler) deleteConvocatoria(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteConvocatoria(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
