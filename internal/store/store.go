// Copyright (c) 2026 CLinCoDa. All rights reserved.

/*
Package store owns the authoritative in-memory collections of the SGPI
platform: users, convocatorias, and solicitudes.

Architecture:

  - One explicitly constructed [Store] instance is wired through the
    application at startup — no ambient globals, no hidden state.
  - Each collection is an ordered slice keyed by an auto-incrementing
    integer identifier, unique within its collection and independent of
    the other collections.
  - Mutations are serialized with a mutex per collection so concurrent
    HTTP handlers can never race on identifier assignment.
  - All reads hand out defensive copies: callers can never corrupt the
    canonical collection by mutating a returned value.

Durability:

When opened with Persist enabled, every mutating operation synchronously
rewrites the whole affected collection to its JSON snapshot before the
in-memory state is committed. A failed write aborts the mutation, so the
memory image and the snapshot can never diverge.
*/
package store

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/convocatoria"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/apperr"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/constants"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/solicitud"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/users"
)

// maxLoginHistory caps the per-user login audit trail kept in memory.
const maxLoginHistory = 50

// Options configures a [Store].
type Options struct {
	// DataDir is where collection snapshots live (durable mode only).
	DataDir string
	// Persist enables synchronous whole-collection snapshots on mutation.
	Persist bool
	// Clock overrides time.Now, letting tests pin "today" for status
	// derivation and timestamp assertions. Nil means time.Now.
	Clock func() time.Time
	// Logger receives store lifecycle events. Nil means slog.Default.
	Logger *slog.Logger
}

// Store holds the three canonical collections.
type Store struct {
	log  *slog.Logger
	now  func() time.Time
	snap *snapshotter // nil when persistence is disabled

	usersMu sync.Mutex
	users   []users.User

	convocatoriasMu sync.Mutex
	convocatorias   []convocatoria.Convocatoria

	solicitudesMu sync.Mutex
	solicitudes   []solicitud.Solicitud
}

// Open constructs a Store and, in durable mode, loads existing snapshots.
func Open(opts Options) (*Store, error) {
	s := &Store{
		log: opts.Logger,
		now: opts.Clock,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}

	if opts.Persist {
		snap, err := newSnapshotter(opts.DataDir, s.now)
		if err != nil {
			return nil, err
		}
		s.snap = snap

		if err := s.loadAll(); err != nil {
			return nil, err
		}

		s.log.Info("store opened in durable mode",
			slog.String("data_dir", opts.DataDir),
			slog.Int("users", len(s.users)),
			slog.Int("convocatorias", len(s.convocatorias)),
			slog.Int("solicitudes", len(s.solicitudes)),
		)
	}

	return s, nil
}

// userRecord is the snapshot shape for users: it re-exposes the password
// hash, which the API representation deliberately strips (json:"-").
type userRecord struct {
	users.User
	PasswordHash string `json:"password_hash"`
}

func (s *Store) loadAll() error {
	records, err := loadSnapshot[userRecord](s.snap, constants.SnapshotFileUsers)
	if err != nil {
		return err
	}
	s.users = make([]users.User, 0, len(records))
	for _, record := range records {
		user := record.User
		user.PasswordHash = record.PasswordHash
		s.users = append(s.users, user)
	}

	if s.convocatorias, err = loadSnapshot[convocatoria.Convocatoria](s.snap, constants.SnapshotFileConvocatorias); err != nil {
		return err
	}
	if s.solicitudes, err = loadSnapshot[solicitud.Solicitud](s.snap, constants.SnapshotFileSolicitudes); err != nil {
		return err
	}
	return nil
}

// ── Persistence Helpers ──────────────────────────────────────────────────────

func (s *Store) persistUsers(candidate []users.User) error {
	if s.snap == nil {
		return nil
	}
	records := make([]userRecord, 0, len(candidate))
	for _, user := range candidate {
		records = append(records, userRecord{User: user, PasswordHash: user.PasswordHash})
	}
	return s.snap.write(constants.SnapshotFileUsers, records)
}

func (s *Store) persistConvocatorias(candidate []convocatoria.Convocatoria) error {
	if s.snap == nil {
		return nil
	}
	return s.snap.write(constants.SnapshotFileConvocatorias, candidate)
}

func (s *Store) persistSolicitudes(candidate []solicitud.Solicitud) error {
	if s.snap == nil {
		return nil
	}
	return s.snap.write(constants.SnapshotFileSolicitudes, candidate)
}

// nextID computes max existing id + 1 (1 for an empty collection).
// Callers must hold the collection mutex: read-max-then-increment is not
// atomic on its own.
func nextID[T any](items []T, id func(T) int) int {
	max := 0
	for _, item := range items {
		if id(item) > max {
			max = id(item)
		}
	}
	return max + 1
}

// ── Users ────────────────────────────────────────────────────────────────────

// cloneUser deep-copies a user so returned values never alias store memory.
func cloneUser(u users.User) users.User {
	if u.LastLogin != nil {
		lastLogin := *u.LastLogin
		u.LastLogin = &lastLogin
	}
	u.LoginHistory = slices.Clone(u.LoginHistory)
	return u
}

// CreateUser appends a new user, assigning its identifier and defaults.
//
// # Defaults
//   - Status: activo when unset.
//   - Permissions: derived from the role when the zero set is supplied.
//
// Returns [apperr.Conflict] if the username is already taken.
func (s *Store) CreateUser(u users.User) (users.User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return users.User{}, apperr.Conflict("Username is already taken")
		}
	}

	now := s.now()
	u.ID = nextID(s.users, func(x users.User) int { return x.ID })
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Status == "" {
		u.Status = users.StatusActivo
	}
	if u.Permissions == (users.Permissions{}) {
		u.Permissions = users.DefaultPermissions(u.Role)
	}

	candidate := append(slices.Clone(s.users), u)
	if err := s.persistUsers(candidate); err != nil {
		return users.User{}, err
	}
	s.users = candidate

	return cloneUser(u), nil
}

// UserByID returns the user with the given id.
func (s *Store) UserByID(id int) (users.User, bool) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	for _, u := range s.users {
		if u.ID == id {
			return cloneUser(u), true
		}
	}
	return users.User{}, false
}

// UserByUsername returns the user with the given username.
func (s *Store) UserByUsername(username string) (users.User, bool) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return cloneUser(u), true
		}
	}
	return users.User{}, false
}

// Users returns a snapshot of the whole collection in insertion order.
func (s *Store) Users() []users.User {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	snapshot := make([]users.User, 0, len(s.users))
	for _, u := range s.users {
		snapshot = append(snapshot, cloneUser(u))
	}
	return snapshot
}

// UpdateUser merges the patch into the stored record. The identifier and
// CreatedAt are immutable; UpdatedAt is stamped on success.
//
// The boolean reports whether the id was found — an absent id is a distinct
// outcome from a persistence error.
func (s *Store) UpdateUser(id int, patch users.Patch) (users.User, bool, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	index := slices.IndexFunc(s.users, func(u users.User) bool { return u.ID == id })
	if index < 0 {
		return users.User{}, false, nil
	}

	merged := cloneUser(s.users[index])
	if patch.Email != nil {
		merged.Email = *patch.Email
	}
	if patch.FullName != nil {
		merged.FullName = *patch.FullName
	}
	if patch.Department != nil {
		merged.Department = *patch.Department
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
	}
	if patch.PasswordHash != nil {
		merged.PasswordHash = *patch.PasswordHash
	}
	merged.UpdatedAt = s.now()

	candidate := slices.Clone(s.users)
	candidate[index] = merged
	if err := s.persistUsers(candidate); err != nil {
		return users.User{}, true, err
	}
	s.users = candidate

	return cloneUser(merged), true, nil
}

// DeleteUser removes or deactivates a user.
//
// # Modes
//   - soft (the default for the API): flips Status to inactivo, keeping the
//     row for referential integrity with solicitudes.
//   - hard: removes the row entirely.
func (s *Store) DeleteUser(id int, soft bool) (bool, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	index := slices.IndexFunc(s.users, func(u users.User) bool { return u.ID == id })
	if index < 0 {
		return false, nil
	}

	candidate := slices.Clone(s.users)
	if soft {
		deactivated := cloneUser(candidate[index])
		deactivated.Status = users.StatusInactivo
		deactivated.UpdatedAt = s.now()
		candidate[index] = deactivated
	} else {
		candidate = slices.Delete(candidate, index, index+1)
	}

	if err := s.persistUsers(candidate); err != nil {
		return true, err
	}
	s.users = candidate

	return true, nil
}

// RecordUserLogin appends a login attempt to the user's audit trail.
// LastLogin is stamped only for successful attempts.
func (s *Store) RecordUserLogin(id int, record users.LoginRecord) (bool, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	index := slices.IndexFunc(s.users, func(u users.User) bool { return u.ID == id })
	if index < 0 {
		return false, nil
	}

	updated := cloneUser(s.users[index])
	updated.LoginHistory = append(updated.LoginHistory, record)
	if overflow := len(updated.LoginHistory) - maxLoginHistory; overflow > 0 {
		updated.LoginHistory = updated.LoginHistory[overflow:]
	}
	if record.Success {
		loginDate := record.LoginDate
		updated.LastLogin = &loginDate
	}
	updated.UpdatedAt = s.now()

	candidate := slices.Clone(s.users)
	candidate[index] = updated
	if err := s.persistUsers(candidate); err != nil {
		return true, err
	}
	s.users = candidate

	return true, nil
}

// ── Convocatorias ────────────────────────────────────────────────────────────

// cloneConvocatoria copies pointer fields so callers never alias store memory.
func cloneConvocatoria(c convocatoria.Convocatoria) convocatoria.Convocatoria {
	if c.Trimestre != nil {
		trimestre := *c.Trimestre
		c.Trimestre = &trimestre
	}
	if c.CreatedBy != nil {
		createdBy := *c.CreatedBy
		c.CreatedBy = &createdBy
	}
	return c
}

// CreateConvocatoria validates and appends a new application period.
//
// When the caller supplied no estado, it is derived exactly once from
// {today, fecha_inicio, fecha_fin} — and never re-derived afterwards.
func (s *Store) CreateConvocatoria(c convocatoria.Convocatoria) (convocatoria.Convocatoria, error) {
	if err := c.Validate(); err != nil {
		return convocatoria.Convocatoria{}, err
	}

	s.convocatoriasMu.Lock()
	defer s.convocatoriasMu.Unlock()

	now := s.now()
	c.ID = nextID(s.convocatorias, func(x convocatoria.Convocatoria) int { return x.ID })
	c.CreatedAt = now
	c.UpdatedAt = now

	if c.Estado == "" {
		inicio, fin, err := c.Fechas()
		if err != nil {
			return convocatoria.Convocatoria{}, err
		}
		c.Estado = convocatoria.DeriveStatus(now, inicio, fin)
	}

	candidate := append(slices.Clone(s.convocatorias), c)
	if err := s.persistConvocatorias(candidate); err != nil {
		return convocatoria.Convocatoria{}, err
	}
	s.convocatorias = candidate

	return cloneConvocatoria(c), nil
}

// ConvocatoriaByID returns the period with the given id.
func (s *Store) ConvocatoriaByID(id int) (convocatoria.Convocatoria, bool) {
	s.convocatoriasMu.Lock()
	defer s.convocatoriasMu.Unlock()

	for _, c := range s.convocatorias {
		if c.ID == id {
			return cloneConvocatoria(c), true
		}
	}
	return convocatoria.Convocatoria{}, false
}

// Convocatorias returns a snapshot of the whole collection in insertion order.
func (s *Store) Convocatorias() []convocatoria.Convocatoria {
	s.convocatoriasMu.Lock()
	defer s.convocatoriasMu.Unlock()

	snapshot := make([]convocatoria.Convocatoria, 0, len(s.convocatorias))
	for _, c := range s.convocatorias {
		snapshot = append(snapshot, cloneConvocatoria(c))
	}
	return snapshot
}

// UpdateConvocatoria merges the patch and re-validates the merged record
// under the same invariants as creation. An explicitly patched estado is
// stored as-is — updates do not force a re-derivation against the dates.
func (s *Store) UpdateConvocatoria(id int, patch convocatoria.Patch) (convocatoria.Convocatoria, bool, error) {
	s.convocatoriasMu.Lock()
	defer s.convocatoriasMu.Unlock()

	index := slices.IndexFunc(s.convocatorias, func(c convocatoria.Convocatoria) bool { return c.ID == id })
	if index < 0 {
		return convocatoria.Convocatoria{}, false, nil
	}

	merged := cloneConvocatoria(s.convocatorias[index])
	if patch.Tipo != nil {
		merged.Tipo = *patch.Tipo
	}
	if patch.Anio != nil {
		merged.Anio = *patch.Anio
	}
	if patch.Trimestre != nil {
		if *patch.Trimestre == nil {
			merged.Trimestre = nil
		} else {
			trimestre := **patch.Trimestre
			merged.Trimestre = &trimestre
		}
	}
	if patch.Nombre != nil {
		merged.Nombre = *patch.Nombre
	}
	if patch.Descripcion != nil {
		merged.Descripcion = *patch.Descripcion
	}
	if patch.FechaInicio != nil {
		merged.FechaInicio = *patch.FechaInicio
	}
	if patch.FechaFin != nil {
		merged.FechaFin = *patch.FechaFin
	}
	if patch.Estado != nil {
		merged.Estado = *patch.Estado
	}
	if patch.Publicada != nil {
		merged.Publicada = *patch.Publicada
	}

	if err := merged.Validate(); err != nil {
		return convocatoria.Convocatoria{}, true, err
	}
	merged.UpdatedAt = s.now()

	candidate := slices.Clone(s.convocatorias)
	candidate[index] = merged
	if err := s.persistConvocatorias(candidate); err != nil {
		return convocatoria.Convocatoria{}, true, err
	}
	s.convocatorias = candidate

	return cloneConvocatoria(merged), true, nil
}

// DeleteConvocatoria removes the period. Always a hard removal.
func (s *Store) DeleteConvocatoria(id int) (bool, error) {
	s.convocatoriasMu.Lock()
	defer s.convocatoriasMu.Unlock()

	index := slices.IndexFunc(s.convocatorias, func(c convocatoria.Convocatoria) bool { return c.ID == id })
	if index < 0 {
		return false, nil
	}

	candidate := slices.Delete(slices.Clone(s.convocatorias), index, index+1)
	if err := s.persistConvocatorias(candidate); err != nil {
		return true, err
	}
	s.convocatorias = candidate

	return true, nil
}

// ── Solicitudes ──────────────────────────────────────────────────────────────

// cloneSolicitud copies pointer fields so callers never alias store memory.
func cloneSolicitud(sol solicitud.Solicitud) solicitud.Solicitud {
	if sol.ConvocatoriaID != nil {
		convocatoriaID := *sol.ConvocatoriaID
		sol.ConvocatoriaID = &convocatoriaID
	}
	if sol.FechaEnvio != nil {
		fechaEnvio := *sol.FechaEnvio
		sol.FechaEnvio = &fechaEnvio
	}
	if sol.RevisorID != nil {
		revisorID := *sol.RevisorID
		sol.RevisorID = &revisorID
	}
	return sol
}

// CreateSolicitud validates and appends a new registration request.
//
// # Defaults
//   - Estado: "enviada" when a submission date is present, else "borrador".
//   - Codigo: generated from the IP type prefix, the current year, and the
//     assigned identifier, zero-padded to the canonical 4-digit width.
func (s *Store) CreateSolicitud(sol solicitud.Solicitud) (solicitud.Solicitud, error) {
	if err := sol.Validate(); err != nil {
		return solicitud.Solicitud{}, err
	}

	s.solicitudesMu.Lock()
	defer s.solicitudesMu.Unlock()

	now := s.now()
	sol.ID = nextID(s.solicitudes, func(x solicitud.Solicitud) int { return x.ID })
	sol.CreatedAt = now
	sol.UpdatedAt = now

	if sol.Estado == "" {
		sol.Estado = sol.DefaultEstado()
	}
	if sol.Codigo == "" {
		sol.Codigo = solicitud.GenerateCode(sol.TipoPI.CodePrefix(), now.Year(), sol.ID, constants.CodeSequenceWidth)
	}

	candidate := append(slices.Clone(s.solicitudes), sol)
	if err := s.persistSolicitudes(candidate); err != nil {
		return solicitud.Solicitud{}, err
	}
	s.solicitudes = candidate

	return cloneSolicitud(sol), nil
}

// SolicitudByID returns the request with the given id.
func (s *Store) SolicitudByID(id int) (solicitud.Solicitud, bool) {
	s.solicitudesMu.Lock()
	defer s.solicitudesMu.Unlock()

	for _, sol := range s.solicitudes {
		if sol.ID == id {
			return cloneSolicitud(sol), true
		}
	}
	return solicitud.Solicitud{}, false
}

// Solicitudes returns a snapshot of the whole collection in insertion order.
func (s *Store) Solicitudes() []solicitud.Solicitud {
	s.solicitudesMu.Lock()
	defer s.solicitudesMu.Unlock()

	snapshot := make([]solicitud.Solicitud, 0, len(s.solicitudes))
	for _, sol := range s.solicitudes {
		snapshot = append(snapshot, cloneSolicitud(sol))
	}
	return snapshot
}

// DeleteSolicitud removes the request. Always a hard removal.
func (s *Store) DeleteSolicitud(id int) (bool, error) {
	s.solicitudesMu.Lock()
	defer s.solicitudesMu.Unlock()

	index := slices.IndexFunc(s.solicitudes, func(sol solicitud.Solicitud) bool { return sol.ID == id })
	if index < 0 {
		return false, nil
	}

	candidate := slices.Delete(slices.Clone(s.solicitudes), index, index+1)
	if err := s.persistSolicitudes(candidate); err != nil {
		return true, err
	}
	s.solicitudes = candidate

	return true, nil
}

// ── Stats ────────────────────────────────────────────────────────────────────

// Stats are the dashboard counters.
type Stats struct {
	TotalUsers         int       `json:"total_users"`
	TotalConvocatorias int       `json:"total_convocatorias"`
	TotalSolicitudes   int       `json:"total_solicitudes"`
	LastUpdated        time.Time `json:"last_updated"`
}

// Stats returns current collection counts.
func (s *Store) Stats() Stats {
	s.usersMu.Lock()
	totalUsers := len(s.users)
	s.usersMu.Unlock()

	s.convocatoriasMu.Lock()
	totalConvocatorias := len(s.convocatorias)
	s.convocatoriasMu.Unlock()

	s.solicitudesMu.Lock()
	totalSolicitudes := len(s.solicitudes)
	s.solicitudesMu.Unlock()

	return Stats{
		TotalUsers:         totalUsers,
		TotalConvocatorias: totalConvocatorias,
		TotalSolicitudes:   totalSolicitudes,
		LastUpdated:        s.now(),
	}
}
