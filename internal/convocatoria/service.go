// Copyright (c) 2026 CLinCoDa. All rights reserved.

package convocatoria

import (
	"context"
	"log/slog"
	"sort"
	"strconv"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/apperr"
	"github.com/CLinCoDa/Repositoria-SGPI/pkg/textfold"
)

// FilterAll is the sentinel dropdown value meaning "no constraint". The
// empty string is treated the same way.
const FilterAll = "all"

// Filter is the conjunction of list constraints. Every zero field (or the
// [FilterAll] sentinel) means "no constraint on that dimension"; an empty
// filter returns the whole collection.
type Filter struct {
	Anio   string // Compared against the record's year, both as strings.
	Tipo   string
	Estado string
	Query  string // Accent- and case-insensitive substring search.
}

func (f Filter) matchesAnio(c Convocatoria) bool {
	if f.Anio == "" || f.Anio == FilterAll {
		return true
	}
	return strconv.Itoa(c.Anio) == f.Anio
}

func (f Filter) matchesTipo(c Convocatoria) bool {
	if f.Tipo == "" || f.Tipo == FilterAll {
		return true
	}
	return string(c.Tipo) == f.Tipo
}

func (f Filter) matchesEstado(c Convocatoria) bool {
	if f.Estado == "" || f.Estado == FilterAll {
		return true
	}
	return string(c.Estado) == f.Estado
}

// matchesQuery searches nombre, descripcion, and tipo. Folding makes
// "diseño" and "DISENO" equivalent.
func (f Filter) matchesQuery(c Convocatoria) bool {
	if f.Query == "" {
		return true
	}
	return textfold.ContainsFold(c.Nombre, f.Query) ||
		textfold.ContainsFold(c.Descripcion, f.Query) ||
		textfold.ContainsFold(string(c.Tipo), f.Query)
}

// Matches reports whether the record satisfies every active constraint.
func (f Filter) Matches(c Convocatoria) bool {
	return f.matchesAnio(c) && f.matchesTipo(c) && f.matchesEstado(c) && f.matchesQuery(c)
}

// Service implements the convocatoria use-cases on top of a [Repository].
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a convocatoria [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ListConvocatorias returns the filtered collection in presentation order:
// newest year first, trimestres ascending within a year (T1 before T4),
// extraordinarias (no trimestre) last.
func (service *Service) ListConvocatorias(_ context.Context, filter Filter) []Convocatoria {
	all := service.repo.Convocatorias()

	matched := make([]Convocatoria, 0, len(all))
	for _, c := range all {
		if filter.Matches(c) {
			matched = append(matched, c)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Anio != matched[j].Anio {
			return matched[i].Anio > matched[j].Anio
		}
		return trimestreRank(matched[i].Trimestre) < trimestreRank(matched[j].Trimestre)
	})

	return matched
}

// trimestreRank orders trimestres 1–4 ahead of the nil (extraordinaria) slot.
func trimestreRank(t *int) int {
	if t == nil {
		return 5
	}
	return *t
}

// GetConvocatoria returns one record by id.
func (service *Service) GetConvocatoria(_ context.Context, id int) (Convocatoria, error) {
	c, found := service.repo.ConvocatoriaByID(id)
	if !found {
		return Convocatoria{}, apperr.NotFound("Convocatoria")
	}
	return c, nil
}

// CreateConvocatoria validates and stores a new application period,
// recording the creating user.
func (service *Service) CreateConvocatoria(_ context.Context, c Convocatoria, createdBy int) (Convocatoria, error) {
	if createdBy > 0 {
		c.CreatedBy = &createdBy
	}

	created, err := service.repo.CreateConvocatoria(c)
	if err != nil {
		return Convocatoria{}, err
	}

	service.logger.Info("convocatoria created",
		slog.Int("convocatoria_id", created.ID),
		slog.String("nombre", created.Nombre),
		slog.String("estado", string(created.Estado)),
	)

	return created, nil
}

// UpdateConvocatoria applies a partial update.
func (service *Service) UpdateConvocatoria(_ context.Context, id int, patch Patch) (Convocatoria, error) {
	updated, found, err := service.repo.UpdateConvocatoria(id, patch)
	if err != nil {
		return Convocatoria{}, err
	}
	if !found {
		return Convocatoria{}, apperr.NotFound("Convocatoria")
	}
	return updated, nil
}

// DeleteConvocatoria removes a record by id.
func (service *Service) DeleteConvocatoria(_ context.Context, id int) error {
	found, err := service.repo.DeleteConvocatoria(id)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("Convocatoria")
	}

	service.logger.Info("convocatoria deleted", slog.Int("convocatoria_id", id))
	return nil
}
