// Copyright (c) 2026 CLinCoDa. All rights reserved.

// Package users defines the actor model of the SGPI platform.
//
// # Architecture
//
// Entities in this package represent the "Truth" of the system.
// They have no dependencies on outer layers (like storage, HTTP, or caches).
// This makes the core logic highly testable and resilient to technology changes.
package users

import "time"

// Role represents the institutional role granted to an account.
//
// # Usage
//
// Used by [middleware.RequirePermission] to derive the capability set
// enforced on API endpoints. Roles are immutable post-creation; there is
// no role-change operation.
type Role string

const (
	RoleAdministrador Role = "administrador" // Platform administration (CATI-UG).
	RoleGestor        Role = "gestor"        // Department manager: pre-validates solicitudes.
	RoleDocente       Role = "docente"       // Instructor: files their own solicitudes.
	RoleCoordinador   Role = "coordinador"   // IP coordinator: full registration workflow.
)

// IsValid reports whether r is a recognised [Role] value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdministrador, RoleGestor, RoleDocente, RoleCoordinador:
		return true
	}
	return false
}

// Status represents the account state. Accounts are never hard-deleted;
// deactivation is the terminal state.
type Status string

const (
	StatusActivo   Status = "activo"
	StatusInactivo Status = "inactivo"
)

// # Capabilities

// Capability names a single permission flag in a [Permissions] set.
type Capability string

const (
	CapVerDashboard            Capability = "ver_dashboard"
	CapGestionarConvocatorias  Capability = "gestionar_convocatorias"
	CapGestionarSolicitudes    Capability = "gestionar_solicitudes"
	CapGestionarUsuarios       Capability = "gestionar_usuarios"
	CapVerReportes             Capability = "ver_reportes"
	CapExportarDatos           Capability = "exportar_datos"
	CapCrearConvocatorias      Capability = "crear_convocatorias"
	CapPublicarConvocatorias   Capability = "publicar_convocatorias"
	CapValidarSolicitudes      Capability = "validar_solicitudes"
	CapPrevalidarSolicitudes   Capability = "prevalidar_solicitudes"
	CapVerTodasSolicitudes     Capability = "ver_todas_solicitudes"
)

// Permissions is the fixed record of capability flags attached to a user.
//
// The zero value (all false) is treated as "unset" by the store, which then
// derives the set from the role — every real permission set has VerDashboard
// enabled, so the zero struct can never be a legitimate stored value.
type Permissions struct {
	VerDashboard           bool `json:"puede_ver_dashboard"`
	GestionarConvocatorias bool `json:"puede_gestionar_convocatorias"`
	GestionarSolicitudes   bool `json:"puede_gestionar_solicitudes"`
	GestionarUsuarios      bool `json:"puede_gestionar_usuarios"`
	VerReportes            bool `json:"puede_ver_reportes"`
	ExportarDatos          bool `json:"puede_exportar_datos"`
	CrearConvocatorias     bool `json:"puede_crear_convocatorias"`
	PublicarConvocatorias  bool `json:"puede_publicar_convocatorias"`
	ValidarSolicitudes     bool `json:"puede_validar_solicitudes"`
	PrevalidarSolicitudes  bool `json:"puede_prevalidar_solicitudes"`
	VerTodasSolicitudes    bool `json:"puede_ver_todas_solicitudes"`
}

// Allows reports whether the capability flag is enabled in this set.
func (p Permissions) Allows(c Capability) bool {
	switch c {
	case CapVerDashboard:
		return p.VerDashboard
	case CapGestionarConvocatorias:
		return p.GestionarConvocatorias
	case CapGestionarSolicitudes:
		return p.GestionarSolicitudes
	case CapGestionarUsuarios:
		return p.GestionarUsuarios
	case CapVerReportes:
		return p.VerReportes
	case CapExportarDatos:
		return p.ExportarDatos
	case CapCrearConvocatorias:
		return p.CrearConvocatorias
	case CapPublicarConvocatorias:
		return p.PublicarConvocatorias
	case CapValidarSolicitudes:
		return p.ValidarSolicitudes
	case CapPrevalidarSolicitudes:
		return p.PrevalidarSolicitudes
	case CapVerTodasSolicitudes:
		return p.VerTodasSolicitudes
	}
	return false
}

// defaultPermissionsByRole is the data-driven role → capability table.
//
// VerDashboard is always on; everything else is opt-in per role.
var defaultPermissionsByRole = map[Role]Permissions{
	RoleAdministrador: {
		VerDashboard:           true,
		GestionarConvocatorias: true,
		CrearConvocatorias:     true,
		PublicarConvocatorias:  true,
		GestionarUsuarios:      true,
		VerReportes:            true,
		ExportarDatos:          true,
	},
	RoleGestor: {
		VerDashboard:          true,
		PrevalidarSolicitudes: true,
		VerTodasSolicitudes:   true,
	},
	RoleDocente: {
		VerDashboard:         true,
		GestionarSolicitudes: true,
		ExportarDatos:        true,
	},
	RoleCoordinador: {
		VerDashboard:           true,
		GestionarConvocatorias: true,
		GestionarSolicitudes:   true,
		VerReportes:            true,
		ExportarDatos:          true,
		ValidarSolicitudes:     true,
		VerTodasSolicitudes:    true,
		CrearConvocatorias:     true,
		PublicarConvocatorias:  true,
	},
}

// DefaultPermissions returns the capability set a role grants.
//
// # Purity
//
// This is a pure table lookup — it is applied once at user creation when no
// explicit permission set is supplied, and is never auto-recomputed (roles
// cannot change). Unknown roles get the dashboard only.
func DefaultPermissions(role Role) Permissions {
	if permissions, ok := defaultPermissionsByRole[role]; ok {
		return permissions
	}
	return Permissions{VerDashboard: true}
}

// # Entity

// User represents a registered member of the SGPI platform.
//
// # Rules
//   - Username is unique.
//   - PasswordHash is generated via Bcrypt exclusively by the auth service.
//   - Role is immutable after creation.
//   - Deleting a user flips Status to inactivo; rows are never removed.
type User struct {
	ID           int         `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"` // Explicitly omitted from JSON for security.
	Role         Role        `json:"role"`
	FullName     string      `json:"full_name"`
	Status       Status      `json:"status"`
	Department   string      `json:"department,omitempty"`
	Permissions  Permissions `json:"permissions"`
	LastLogin    *time.Time  `json:"last_login,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	// LoginHistory is volatile audit data; capped by the store.
	LoginHistory []LoginRecord `json:"-"`
}

// IsActive reports whether the account can authenticate.
func (u User) IsActive() bool { return u.Status == StatusActivo }

// Summary is the reduced projection returned by authenticate and list
// endpoints — never includes the password hash or history.
type Summary struct {
	ID         int        `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	FullName   string     `json:"full_name"`
	Status     Status     `json:"status"`
	Department string     `json:"department,omitempty"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

// Summarize projects the user into a [Summary].
func (u User) Summarize() Summary {
	return Summary{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		FullName:   u.FullName,
		Status:     u.Status,
		Department: u.Department,
		LastLogin:  u.LastLogin,
	}
}

// LoginRecord is one entry in a user's login audit trail.
type LoginRecord struct {
	ID            string    `json:"id"` // UUID v7.
	UserID        int       `json:"user_id"`
	LoginDate     time.Time `json:"login_date"`
	IPAddress     string    `json:"ip_address,omitempty"`
	UserAgent     string    `json:"user_agent,omitempty"`  // Raw User-Agent header.
	Browser       string    `json:"browser,omitempty"`     // Parsed browser family.
	Success       bool      `json:"success"`
	FailureReason string    `json:"failure_reason,omitempty"`
}

// Patch carries a partial update for a user. Nil fields are left untouched.
//
// ID, CreatedAt, Username, and Role are intentionally absent: they are
// immutable after creation.
type Patch struct {
	Email        *string
	FullName     *string
	Department   *string
	Status       *Status
	PasswordHash *string
}
