// Copyright (c) 2026 CLinCoDa. All rights reserved.

package solicitud

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/apperr"
	"github.com/CLinCoDa/Repositoria-SGPI/pkg/textfold"
)

// Filter is the conjunction of list constraints. Unlike the convocatoria
// dropdowns there is no "all" sentinel here: only the empty string lifts a
// constraint, matching the search form this API serves.
type Filter struct {
	Estado         string
	TipoPI         string
	ConvocatoriaID string // Raw query value; parsed when non-empty.
	Query          string // Matches codigo or titulo, accent-insensitive.

	// OwnerID scopes results to one user's records. Zero means no scoping;
	// it is set by the HTTP layer for roles without ver_todas_solicitudes.
	OwnerID int
}

// Service implements the solicitud use-cases on top of a [Repository].
type Service struct {
	repo    Repository
	periods PeriodLookup
	logger  *slog.Logger
}

// NewService constructs a solicitud [Service].
func NewService(repo Repository, periods PeriodLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		periods: periods,
		logger:  logger,
	}
}

// ListSolicitudes returns the filtered collection in insertion order.
//
// A non-numeric convocatoria filter is a client error, not an empty result.
// A parseable value that matches no record (including 0, which is never a
// valid id) yields an empty list — the constraint stays active.
func (service *Service) ListSolicitudes(_ context.Context, filter Filter) ([]Solicitud, error) {
	var convocatoriaID *int
	if filter.ConvocatoriaID != "" {
		parsed, err := strconv.Atoi(filter.ConvocatoriaID)
		if err != nil {
			return nil, apperr.ValidationError("El filtro de convocatoria debe ser un entero")
		}
		convocatoriaID = &parsed
	}

	all := service.repo.Solicitudes()
	matched := make([]Solicitud, 0, len(all))
	for _, s := range all {
		if filter.Estado != "" && string(s.Estado) != filter.Estado {
			continue
		}
		if filter.TipoPI != "" && string(s.TipoPI) != filter.TipoPI {
			continue
		}
		if convocatoriaID != nil && (s.ConvocatoriaID == nil || *s.ConvocatoriaID != *convocatoriaID) {
			continue
		}
		if filter.OwnerID != 0 && s.UserID != filter.OwnerID {
			continue
		}
		if filter.Query != "" &&
			!textfold.ContainsFold(s.Codigo, filter.Query) &&
			!textfold.ContainsFold(s.Titulo, filter.Query) {
			continue
		}
		matched = append(matched, s)
	}

	return matched, nil
}

// GetSolicitud returns one record by id.
func (service *Service) GetSolicitud(_ context.Context, id int) (Solicitud, error) {
	s, found := service.repo.SolicitudByID(id)
	if !found {
		return Solicitud{}, apperr.NotFound("Solicitud")
	}
	return s, nil
}

// CreateSolicitud validates the convocatoria reference and stores a new
// registration request on behalf of ownerID.
func (service *Service) CreateSolicitud(_ context.Context, s Solicitud, ownerID int) (Solicitud, error) {
	s.UserID = ownerID

	if s.ConvocatoriaID != nil {
		if _, found := service.periods.ConvocatoriaByID(*s.ConvocatoriaID); !found {
			return Solicitud{}, apperr.ValidationError("La convocatoria indicada no existe")
		}
	}

	created, err := service.repo.CreateSolicitud(s)
	if err != nil {
		return Solicitud{}, err
	}

	service.logger.Info("solicitud created",
		slog.Int("solicitud_id", created.ID),
		slog.String("codigo", created.Codigo),
		slog.String("tipo_pi", string(created.TipoPI)),
		slog.Int("user_id", created.UserID),
	)

	return created, nil
}

// DeleteSolicitud removes a record by id.
func (service *Service) DeleteSolicitud(_ context.Context, id int) error {
	found, err := service.repo.DeleteSolicitud(id)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("Solicitud")
	}

	service.logger.Info("solicitud deleted", slog.Int("solicitud_id", id))
	return nil
}
