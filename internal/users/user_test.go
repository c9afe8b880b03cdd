// Copyright (c) 2026 CLinCoDa. All rights reserved.

package users

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPermissions(t *testing.T) {
	tests := []struct {
		name  string
		role  Role
		check func(t *testing.T, p Permissions)
	}{
		{
			name: "administrador_manages_platform",
			role: RoleAdministrador,
			check: func(t *testing.T, p Permissions) {
				assert.True(t, p.GestionarUsuarios)
				assert.True(t, p.GestionarConvocatorias)
				assert.True(t, p.PublicarConvocatorias)
				assert.False(t, p.GestionarSolicitudes)
				assert.False(t, p.ValidarSolicitudes)
			},
		},
		{
			name: "gestor_prevalidates_only",
			role: RoleGestor,
			check: func(t *testing.T, p Permissions) {
				assert.True(t, p.PrevalidarSolicitudes)
				assert.True(t, p.VerTodasSolicitudes)
				assert.False(t, p.GestionarConvocatorias)
				assert.False(t, p.GestionarUsuarios)
			},
		},
		{
			name: "docente_files_own_requests",
			role: RoleDocente,
			check: func(t *testing.T, p Permissions) {
				assert.True(t, p.GestionarSolicitudes)
				assert.True(t, p.ExportarDatos)
				assert.False(t, p.VerTodasSolicitudes)
				assert.False(t, p.ValidarSolicitudes)
			},
		},
		{
			name: "coordinador_runs_full_workflow",
			role: RoleCoordinador,
			check: func(t *testing.T, p Permissions) {
				assert.True(t, p.ValidarSolicitudes)
				assert.True(t, p.VerTodasSolicitudes)
				assert.True(t, p.GestionarConvocatorias)
				assert.False(t, p.GestionarUsuarios)
			},
		},
		{
			name: "unknown_role_dashboard_only",
			role: Role("invitado"),
			check: func(t *testing.T, p Permissions) {
				assert.Equal(t, Permissions{VerDashboard: true}, p)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := DefaultPermissions(test.role)
			assert.True(t, p.VerDashboard, "every role sees the dashboard")
			test.check(t, p)
		})
	}
}

func TestPermissions_Allows(t *testing.T) {
	p := DefaultPermissions(RoleGestor)

	assert.True(t, p.Allows(CapVerDashboard))
	assert.True(t, p.Allows(CapPrevalidarSolicitudes))
	assert.False(t, p.Allows(CapGestionarUsuarios))
	assert.False(t, p.Allows(Capability("inventada")))
}

func TestRoleAndStatusValidity(t *testing.T) {
	for _, role := range []Role{RoleAdministrador, RoleGestor, RoleDocente, RoleCoordinador} {
		assert.True(t, role.IsValid())
	}
	assert.False(t, Role("root").IsValid())
}

func TestUserJSONNeverLeaksSecrets(t *testing.T) {
	u := User{
		ID:           1,
		Username:     "admin",
		PasswordHash: "$2a$10$secret",
		Role:         RoleAdministrador,
		LoginHistory: []LoginRecord{{ID: "x", UserID: 1}},
	}

	payload, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(payload), "secret")
	assert.NotContains(t, string(payload), "login_history")
}

func TestSummarize(t *testing.T) {
	u := User{
		ID:         7,
		Username:   "jperez",
		Email:      "jperez@sgpi.edu",
		Role:       RoleDocente,
		FullName:   "Juan Pérez",
		Status:     StatusActivo,
		Department: "Ingeniería de Sistemas",
	}

	summary := u.Summarize()
	assert.Equal(t, u.ID, summary.ID)
	assert.Equal(t, u.Username, summary.Username)
	assert.Equal(t, u.Role, summary.Role)
	assert.Equal(t, u.Department, summary.Department)
}
