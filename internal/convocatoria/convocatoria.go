// Copyright (c) 2026 CLinCoDa. All rights reserved.

// Package convocatoria defines the application-period aggregate of the SGPI
// platform and its lifecycle rules.
//
// # Architecture
//
// The entity and the status-derivation engine live here with no dependencies
// on storage or HTTP. The repository contract ([Repository]) is defined in
// store.go and satisfied by the platform store; the service and transport
// layers live in service.go and http.go.
package convocatoria

import (
	"time"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/apperr"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/validate"
)

// Tipo classifies a convocatoria.
type Tipo string

const (
	// TipoNormal is a regular trimester application period.
	TipoNormal Tipo = "normal"
	// TipoExtraordinaria is an out-of-calendar period for special projects.
	TipoExtraordinaria Tipo = "extraordinaria"
)

// IsValid reports whether t is a recognised [Tipo] value.
func (t Tipo) IsValid() bool {
	return t == TipoNormal || t == TipoExtraordinaria
}

// Estado is the lifecycle status of a convocatoria.
type Estado string

const (
	// EstadoPlanificada: the period has not opened yet.
	EstadoPlanificada Estado = "planificada"
	// EstadoRegistro: solicitudes may be submitted right now.
	EstadoRegistro Estado = "registro"
	// EstadoFinalizada: the period has closed.
	EstadoFinalizada Estado = "finalizada"
)

// IsValid reports whether e is a recognised [Estado] value.
func (e Estado) IsValid() bool {
	switch e {
	case EstadoPlanificada, EstadoRegistro, EstadoFinalizada:
		return true
	}
	return false
}

// Convocatoria is a time-boxed application period during which solicitudes
// may be submitted.
//
// # Rules
//   - FechaInicio must not be after FechaFin.
//   - Estado is derived from the date range at creation when not supplied.
//     It is NOT re-derived as time passes: a row created as "planificada"
//     stays that way until an explicit update. Callers that need current
//     status must re-derive via [DeriveStatus].
type Convocatoria struct {
	ID          int    `json:"id"`
	Tipo        Tipo   `json:"tipo"`
	Anio        int    `json:"anio"`
	Trimestre   *int   `json:"trimestre,omitempty"` // 1–4; nil for extraordinarias.
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	// Calendar dates in ISO form (YYYY-MM-DD), as the frontend sends them.
	FechaInicio string    `json:"fecha_inicio"`
	FechaFin    string    `json:"fecha_fin"`
	Estado      Estado    `json:"estado"`
	Publicada   bool      `json:"publicada"`
	CreatedBy   *int      `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the construction invariants.
//
// # Returns
//   - nil when the record is well-formed.
//   - [apperr.ValidationError] naming every violated field otherwise.
func (c Convocatoria) Validate() error {
	v := &validate.Validator{}

	v.OneOf("tipo", string(c.Tipo), string(TipoNormal), string(TipoExtraordinaria))
	v.Custom("anio", c.Anio <= 0, "Must be a positive year")
	v.Date("fecha_inicio", c.FechaInicio)
	v.Date("fecha_fin", c.FechaFin)
	v.DateOrder("fecha_inicio", c.FechaInicio, c.FechaFin)

	if c.Trimestre != nil {
		v.Range("trimestre", *c.Trimestre, 1, 4)
	}
	if c.Estado != "" && !c.Estado.IsValid() {
		v.Custom("estado", true, "Must be one of: planificada, registro, finalizada")
	}

	return v.Err()
}

// Fechas returns the parsed start and end dates.
//
// It must only be called on a validated record; malformed dates surface as a
// ValidationError here too so the invariant cannot be silently bypassed.
func (c Convocatoria) Fechas() (inicio, fin time.Time, err error) {
	inicio, err = time.Parse(validate.DateLayout, c.FechaInicio)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.ValidationError("Las fechas deben estar en formato ISO (YYYY-MM-DD)")
	}
	fin, err = time.Parse(validate.DateLayout, c.FechaFin)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.ValidationError("Las fechas deben estar en formato ISO (YYYY-MM-DD)")
	}
	return inicio, fin, nil
}

// # Status Engine

// DeriveStatus computes the lifecycle status of a period from today's date.
//
// # Mapping
//   - today < inicio          → planificada
//   - inicio ≤ today ≤ fin    → registro
//   - today > fin             → finalizada
//
// The mapping is total and deterministic for a fixed "today". Comparison is
// calendar-date granular: the time-of-day portion of the inputs is ignored.
func DeriveStatus(today, inicio, fin time.Time) Estado {
	d := dateOnly(today)
	start := dateOnly(inicio)
	end := dateOnly(fin)

	switch {
	case d.Before(start):
		return EstadoPlanificada
	case !d.After(end):
		return EstadoRegistro
	default:
		return EstadoFinalizada
	}
}

// dateOnly truncates a timestamp to midnight UTC of its calendar day.
func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Patch carries a partial update. Nil fields are left untouched; the store
// re-validates the merged record under the same invariants as creation.
//
// ID and CreatedAt are immutable and intentionally absent.
type Patch struct {
	Tipo *Tipo
	Anio *int
	// Trimestre distinguishes three cases: nil leaves the stored value
	// alone, a pointer to nil clears it (converting a normal period to an
	// extraordinaria must not leave a stale trimestre behind), and a
	// pointer to a value sets it.
	Trimestre   **int
	Nombre      *string
	Descripcion *string
	FechaInicio *string
	FechaFin    *string
	// Estado set through a patch is stored as-is: updates do not force a
	// re-derivation against the date range.
	Estado    *Estado
	Publicada *bool
}
