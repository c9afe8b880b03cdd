// Copyright (c) 2026 CLinCoDa. All rights reserved.

package solicitud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/apperr"
)

func TestGenerateCode(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		year     int
		sequence int
		want     string
	}{
		{"first_patente", "PT", 2025, 1, "PT-2025-0001"},
		{"marca", "MC", 2025, 42, "MC-2025-0042"},
		{"four_digit_sequence", "DA", 2024, 1234, "DA-2024-1234"},
		{"overflow_keeps_digits", "DI", 2025, 12345, "DI-2025-12345"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := GenerateCode(test.prefix, test.year, test.sequence, 4)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestGenerateCode_IsDeterministic(t *testing.T) {
	first := GenerateCode("PT", 2025, 7, 4)
	second := GenerateCode("PT", 2025, 7, 4)
	assert.Equal(t, first, second)
}

func TestCodePrefix(t *testing.T) {
	tests := []struct {
		tipo TipoPI
		want string
	}{
		{TipoPatente, "PT"},
		{TipoMarca, "MC"},
		{TipoDerechoAutor, "DA"},
		{TipoModeloUtilidad, "MU"},
		{TipoDisenoIndustrial, "DI"},
		{TipoPI("otro"), "XX"},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, test.tipo.CodePrefix())
	}
}

func TestDefaultEstado(t *testing.T) {
	draft := Solicitud{TipoPI: TipoPatente, Titulo: "X", UserID: 1}
	assert.Equal(t, EstadoBorrador, draft.DefaultEstado())

	sent := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	submitted := Solicitud{TipoPI: TipoPatente, Titulo: "X", UserID: 1, FechaEnvio: &sent}
	assert.Equal(t, EstadoEnviada, submitted.DefaultEstado())
}

func TestValidate(t *testing.T) {
	valid := Solicitud{
		TipoPI: TipoPatente,
		Titulo: "Sistema de riego automatizado",
		UserID: 3,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Solicitud)
		field  string
	}{
		{"unknown_tipo_pi", func(s *Solicitud) { s.TipoPI = "software" }, "tipo_pi"},
		{"empty_titulo", func(s *Solicitud) { s.Titulo = "  " }, "titulo"},
		{"missing_owner", func(s *Solicitud) { s.UserID = 0 }, "user_id"},
		{"unknown_estado", func(s *Solicitud) { s.Estado = "pendiente" }, "estado"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := valid
			test.mutate(&s)

			err := s.Validate()
			require.Error(t, err)

			appErr := apperr.As(err)
			require.NotNil(t, appErr)

			fields := make([]string, 0, len(appErr.Details))
			for _, detail := range appErr.Details {
				fields = append(fields, detail.Field)
			}
			assert.Contains(t, fields, test.field)
		})
	}
}
