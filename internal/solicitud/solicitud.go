// Copyright (c) 2026 CLinCoDa. All rights reserved.

// Package solicitud defines the intellectual-property registration request
// aggregate and its code-generation rules.
package solicitud

import (
	"fmt"
	"time"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/validate"
)

// TipoPI is the category of intellectual-property asset being registered.
type TipoPI string

const (
	TipoPatente          TipoPI = "patente"
	TipoMarca            TipoPI = "marca"
	TipoDerechoAutor     TipoPI = "derecho_autor"
	TipoModeloUtilidad   TipoPI = "modelo_utilidad"
	TipoDisenoIndustrial TipoPI = "diseño_industrial"
)

// IsValid reports whether t is a recognised [TipoPI] value.
func (t TipoPI) IsValid() bool {
	switch t {
	case TipoPatente, TipoMarca, TipoDerechoAutor, TipoModeloUtilidad, TipoDisenoIndustrial:
		return true
	}
	return false
}

// codePrefixes is the fixed TipoPI → code prefix mapping.
var codePrefixes = map[TipoPI]string{
	TipoPatente:          "PT",
	TipoMarca:            "MC",
	TipoDerechoAutor:     "DA",
	TipoModeloUtilidad:   "MU",
	TipoDisenoIndustrial: "DI",
}

// CodePrefix returns the two-letter code prefix for an IP type, or "XX" for
// unrecognised values (which never pass validation anyway).
func (t TipoPI) CodePrefix() string {
	if prefix, ok := codePrefixes[t]; ok {
		return prefix
	}
	return "XX"
}

// Estado is the review status of a solicitud.
type Estado string

const (
	EstadoBorrador   Estado = "borrador"
	EstadoEnviada    Estado = "enviada"
	EstadoEnRevision Estado = "en_revision"
	EstadoObservada  Estado = "observada"
	EstadoAprobada   Estado = "aprobada"
	EstadoRechazada  Estado = "rechazada"
)

// IsValid reports whether e is a recognised [Estado] value.
func (e Estado) IsValid() bool {
	switch e {
	case EstadoBorrador, EstadoEnviada, EstadoEnRevision, EstadoObservada, EstadoAprobada, EstadoRechazada:
		return true
	}
	return false
}

// Solicitud is an individual IP registration request submitted by a user,
// optionally tied to a convocatoria.
//
// # Rules
//   - UserID (the owner) is required.
//   - Estado defaults to "enviada" when FechaEnvio is present at creation,
//     "borrador" otherwise.
//   - Codigo is system-generated, unique, and immutable once assigned.
type Solicitud struct {
	ID             int        `json:"id"`
	TipoPI         TipoPI     `json:"tipo_pi"`
	Titulo         string     `json:"titulo"`
	UserID         int        `json:"user_id"`
	Descripcion    string     `json:"descripcion,omitempty"`
	ConvocatoriaID *int       `json:"convocatoria_id,omitempty"`
	Observaciones  string     `json:"observaciones,omitempty"` // Reviewer notes.
	Estado         Estado     `json:"estado"`
	FechaEnvio     *time.Time `json:"fecha_envio,omitempty"`
	RevisorID      *int       `json:"revisor_id,omitempty"`
	Codigo         string     `json:"codigo"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Validate checks the construction invariants.
func (s Solicitud) Validate() error {
	v := &validate.Validator{}

	v.Custom("tipo_pi", !s.TipoPI.IsValid(),
		"Must be one of: patente, marca, derecho_autor, modelo_utilidad, diseño_industrial")
	v.Required("titulo", s.Titulo)
	v.Custom("user_id", s.UserID <= 0, "Owner user id is required")

	if s.Estado != "" && !s.Estado.IsValid() {
		v.Custom("estado", true,
			"Must be one of: borrador, enviada, en_revision, observada, aprobada, rechazada")
	}

	return v.Err()
}

// DefaultEstado is the initial status rule: a record carrying a formal
// submission date starts as "enviada", otherwise it is a "borrador".
func (s Solicitud) DefaultEstado() Estado {
	if s.FechaEnvio != nil {
		return EstadoEnviada
	}
	return EstadoBorrador
}

// # Code Generation

// GenerateCode builds a registration code like "PT-2025-0001".
//
// # Purity
//
// Deterministic and side-effect-free: the same (prefix, year, sequence)
// always yields the same code. The sequence segment is zero-padded to
// [width] digits; the canonical project-wide width is 4 (the historical
// seed path used 3, which was consolidated away).
func GenerateCode(prefix string, year, sequence, width int) string {
	return fmt.Sprintf("%s-%d-%0*d", prefix, year, width, sequence)
}
