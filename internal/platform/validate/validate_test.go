// Copyright (c) 2026 CLinCoDa. All rights reserved.

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/apperr"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "nombre", "Convocatoria T1", false},
		{"empty_string", "nombre", "", true},
		{"whitespace_only", "nombre", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Date checks the ISO calendar-date rule.
*/
func TestValidator_Date(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"valid_date", "2025-01-01", true},
		{"slash_format", "2025/01/01", false},
		{"month_out_of_range", "2025-13-01", false},
		{"datetime_not_date", "2025-01-01T10:00:00", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Date("fecha_inicio", tt.value)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_DateOrder verifies start/end ordering including the equal-dates edge.
*/
func TestValidator_DateOrder(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		isValid bool
	}{
		{"start_before_end", "2025-01-01", "2025-03-31", true},
		{"same_day", "2025-01-01", "2025-01-01", true},
		{"start_after_end", "2025-04-01", "2025-03-31", false},
		{"malformed_start_ignored", "not-a-date", "2025-03-31", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.DateOrder("fechas", tt.start, tt.end)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_OneOf checks the enumeration rule used for tipo/estado fields.
*/
func TestValidator_OneOf(t *testing.T) {
	v := &validate.Validator{}
	v.OneOf("tipo", "normal", "normal", "extraordinaria")
	assert.False(t, v.HasErrors())

	v2 := &validate.Validator{}
	v2.OneOf("tipo", "especial", "normal", "extraordinaria")
	assert.True(t, v2.HasErrors())
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	// Multi-rule validation
	err := v.
		Required("nombre", "Convocatoria T1").
		MinLen("nombre", "Convocatoria T1", 3).
		MaxLen("nombre", "Convocatoria T1", 100).
		Date("fecha_inicio", "2025-01-01").
		Date("fecha_fin", "2025-03-31").
		DateOrder("fechas", "2025-01-01", "2025-03-31").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}
