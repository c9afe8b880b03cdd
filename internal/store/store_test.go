// Copyright (c) 2026 CLinCoDa. All rights reserved.

package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/convocatoria"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/apperr"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/constants"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/solicitud"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/users"
)

// fixedClock pins "today" so status derivation and timestamps are stable.
func fixedClock(isoDate string) func() time.Time {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func newTestStore(t *testing.T, clock func() time.Time) *Store {
	t.Helper()
	s, err := Open(Options{Clock: clock})
	require.NoError(t, err)
	return s
}

func intPtr(v int) *int { return &v }

func TestCreateUser_AssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t, nil)

	usernames := []string{"admin", "gestor1", "docente1", "coordinador1", "docente2"}
	for i, username := range usernames {
		created, err := s.CreateUser(users.User{
			Username: username,
			Email:    username + "@sgpi.edu",
			Role:     users.RoleDocente,
			FullName: "Test " + username,
		})
		require.NoError(t, err)
		assert.Equal(t, i+1, created.ID)
	}

	assert.Len(t, s.Users(), len(usernames))
}

func TestCreateUser_Defaults(t *testing.T) {
	s := newTestStore(t, nil)

	created, err := s.CreateUser(users.User{
		Username: "mrodriguez",
		Email:    "mrodriguez@sgpi.edu",
		Role:     users.RoleGestor,
		FullName: "María Rodríguez",
	})
	require.NoError(t, err)

	assert.Equal(t, users.StatusActivo, created.Status)
	assert.True(t, created.Permissions.VerDashboard)
	assert.True(t, created.Permissions.PrevalidarSolicitudes)
	assert.False(t, created.Permissions.GestionarUsuarios)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := newTestStore(t, nil)

	_, err := s.CreateUser(users.User{Username: "admin", Role: users.RoleAdministrador})
	require.NoError(t, err)

	_, err = s.CreateUser(users.User{Username: "admin", Role: users.RoleDocente})
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStore(t, nil)

	created, err := s.CreateUser(users.User{
		Username:   "jperez",
		Email:      "jperez@sgpi.edu",
		Role:       users.RoleDocente,
		FullName:   "Juan Pérez",
		Department: "Ingeniería de Sistemas",
	})
	require.NoError(t, err)

	fetched, found := s.UserByID(created.ID)
	require.True(t, found)
	assert.Equal(t, created, fetched)

	byName, found := s.UserByUsername("jperez")
	require.True(t, found)
	assert.Equal(t, created.ID, byName.ID)

	_, found = s.UserByID(999)
	assert.False(t, found)
}

func TestUpdateUser_MergesPatch(t *testing.T) {
	s := newTestStore(t, nil)

	created, err := s.CreateUser(users.User{Username: "jperez", Role: users.RoleDocente, Email: "old@sgpi.edu"})
	require.NoError(t, err)

	newEmail := "new@sgpi.edu"
	updated, found, err := s.UpdateUser(created.ID, users.Patch{Email: &newEmail})
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, newEmail, updated.Email)
	assert.Equal(t, created.Username, updated.Username)

	_, found, err = s.UpdateUser(999, users.Patch{Email: &newEmail})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteUser_SoftDeactivates(t *testing.T) {
	s := newTestStore(t, nil)

	created, err := s.CreateUser(users.User{Username: "jperez", Role: users.RoleDocente})
	require.NoError(t, err)

	found, err := s.DeleteUser(created.ID, true)
	require.NoError(t, err)
	require.True(t, found)

	fetched, ok := s.UserByID(created.ID)
	require.True(t, ok, "soft delete keeps the row")
	assert.Equal(t, users.StatusInactivo, fetched.Status)
}

func TestDeleteUser_HardRemoves(t *testing.T) {
	s := newTestStore(t, nil)

	created, err := s.CreateUser(users.User{Username: "jperez", Role: users.RoleDocente})
	require.NoError(t, err)

	found, err := s.DeleteUser(created.ID, false)
	require.NoError(t, err)
	require.True(t, found)

	_, ok := s.UserByID(created.ID)
	assert.False(t, ok)

	// Deleting an already-deleted id reports not-found, not an error.
	found, err = s.DeleteUser(created.ID, false)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRecordUserLogin(t *testing.T) {
	s := newTestStore(t, fixedClock("2025-02-15"))

	created, err := s.CreateUser(users.User{Username: "jperez", Role: users.RoleDocente})
	require.NoError(t, err)
	require.Nil(t, created.LastLogin)

	loginAt := time.Date(2025, 2, 15, 9, 30, 0, 0, time.UTC)

	found, err := s.RecordUserLogin(created.ID, users.LoginRecord{
		ID:            "0194fdc2-fa2f-7fcc-8f30-999024f9de3c",
		UserID:        created.ID,
		LoginDate:     loginAt,
		Success:       false,
		FailureReason: "invalid_password",
	})
	require.NoError(t, err)
	require.True(t, found)

	fetched, _ := s.UserByID(created.ID)
	assert.Nil(t, fetched.LastLogin, "failed attempts never stamp last_login")
	assert.Len(t, fetched.LoginHistory, 1)

	found, err = s.RecordUserLogin(created.ID, users.LoginRecord{
		ID:        "0194fdc2-fa2f-7fcc-8f30-999024f9de3d",
		UserID:    created.ID,
		LoginDate: loginAt,
		Success:   true,
	})
	require.NoError(t, err)
	require.True(t, found)

	fetched, _ = s.UserByID(created.ID)
	require.NotNil(t, fetched.LastLogin)
	assert.Equal(t, loginAt, *fetched.LastLogin)
	assert.Len(t, fetched.LoginHistory, 2)
}

func TestCreateConvocatoria_DerivesStatusOnce(t *testing.T) {
	s := newTestStore(t, fixedClock("2025-02-15"))

	created, err := s.CreateConvocatoria(convocatoria.Convocatoria{
		Tipo:        convocatoria.TipoNormal,
		Anio:        2025,
		Trimestre:   intPtr(1),
		Nombre:      "Convocatoria T1 2025",
		FechaInicio: "2025-01-01",
		FechaFin:    "2025-03-31",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, created.ID)
	assert.Equal(t, convocatoria.EstadoRegistro, created.Estado)
}

func TestCreateConvocatoria_KeepsExplicitStatus(t *testing.T) {
	s := newTestStore(t, fixedClock("2025-02-15"))

	created, err := s.CreateConvocatoria(convocatoria.Convocatoria{
		Tipo:        convocatoria.TipoNormal,
		Anio:        2025,
		Nombre:      "Convocatoria cerrada a mano",
		FechaInicio: "2025-01-01",
		FechaFin:    "2025-03-31",
		Estado:      convocatoria.EstadoFinalizada,
	})
	require.NoError(t, err)
	assert.Equal(t, convocatoria.EstadoFinalizada, created.Estado)
}

func TestCreateConvocatoria_RejectsInvertedDates(t *testing.T) {
	s := newTestStore(t, nil)

	_, err := s.CreateConvocatoria(convocatoria.Convocatoria{
		Tipo:        convocatoria.TipoNormal,
		Anio:        2025,
		Nombre:      "Rango invertido",
		FechaInicio: "2025-03-31",
		FechaFin:    "2025-01-01",
	})
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Empty(t, s.Convocatorias())
}

func TestUpdateConvocatoria(t *testing.T) {
	s := newTestStore(t, fixedClock("2025-02-15"))

	created, err := s.CreateConvocatoria(convocatoria.Convocatoria{
		Tipo:        convocatoria.TipoNormal,
		Anio:        2025,
		Nombre:      "Convocatoria T1 2025",
		FechaInicio: "2025-01-01",
		FechaFin:    "2025-03-31",
	})
	require.NoError(t, err)

	published := true
	updated, found, err := s.UpdateConvocatoria(created.ID, convocatoria.Patch{Publicada: &published})
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, updated.Publicada)
	assert.Equal(t, convocatoria.EstadoRegistro, updated.Estado, "patched fields only; status untouched")

	// A patch producing an invalid merged record is rejected wholesale.
	badDate := "2025-12-31"
	_, found, err = s.UpdateConvocatoria(created.ID, convocatoria.Patch{FechaInicio: &badDate})
	require.Error(t, err)
	assert.True(t, found)

	fetched, _ := s.ConvocatoriaByID(created.ID)
	assert.Equal(t, "2025-01-01", fetched.FechaInicio, "failed update leaves the record intact")
}

func TestUpdateConvocatoria_ClearsTrimestre(t *testing.T) {
	s := newTestStore(t, fixedClock("2025-02-15"))

	created, err := s.CreateConvocatoria(convocatoria.Convocatoria{
		Tipo:        convocatoria.TipoNormal,
		Anio:        2025,
		Trimestre:   intPtr(2),
		Nombre:      "Convocatoria T2 2025",
		FechaInicio: "2025-04-01",
		FechaFin:    "2025-06-30",
	})
	require.NoError(t, err)

	// Converting a normal period to an extraordinaria must also drop the
	// trimestre, or sorting would keep treating it as a T2 slot.
	tipo := convocatoria.TipoExtraordinaria
	var cleared *int
	updated, found, err := s.UpdateConvocatoria(created.ID, convocatoria.Patch{
		Tipo:      &tipo,
		Trimestre: &cleared,
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, convocatoria.TipoExtraordinaria, updated.Tipo)
	assert.Nil(t, updated.Trimestre)

	// A patch that never mentions trimestre leaves it alone.
	trimestre := intPtr(3)
	updated, found, err = s.UpdateConvocatoria(created.ID, convocatoria.Patch{Trimestre: &trimestre})
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, updated.Trimestre)
	assert.Equal(t, 3, *updated.Trimestre)

	nombre := "Renombrada"
	updated, found, err = s.UpdateConvocatoria(created.ID, convocatoria.Patch{Nombre: &nombre})
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, updated.Trimestre)
	assert.Equal(t, 3, *updated.Trimestre)
}

func TestDeleteConvocatoria(t *testing.T) {
	s := newTestStore(t, fixedClock("2025-02-15"))

	created, err := s.CreateConvocatoria(convocatoria.Convocatoria{
		Tipo:        convocatoria.TipoExtraordinaria,
		Anio:        2025,
		Nombre:      "Extraordinaria",
		FechaInicio: "2025-06-01",
		FechaFin:    "2025-06-30",
	})
	require.NoError(t, err)

	found, err := s.DeleteConvocatoria(created.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.DeleteConvocatoria(created.ID)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = s.DeleteConvocatoria(999)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCreateSolicitud_GeneratesCode(t *testing.T) {
	s := newTestStore(t, fixedClock("2025-02-15"))

	created, err := s.CreateSolicitud(solicitud.Solicitud{
		TipoPI: solicitud.TipoPatente,
		Titulo: "Sistema de riego automatizado",
		UserID: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "PT-2025-0001", created.Codigo)
	assert.Equal(t, solicitud.EstadoBorrador, created.Estado)
}

func TestCreateSolicitud_SubmittedStartsEnviada(t *testing.T) {
	s := newTestStore(t, fixedClock("2025-02-15"))

	sent := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	created, err := s.CreateSolicitud(solicitud.Solicitud{
		TipoPI:     solicitud.TipoMarca,
		Titulo:     "Marca institucional",
		UserID:     3,
		FechaEnvio: &sent,
	})
	require.NoError(t, err)
	assert.Equal(t, solicitud.EstadoEnviada, created.Estado)
	assert.Equal(t, "MC-2025-0001", created.Codigo)
}

func TestCreateSolicitud_RejectsMissingOwner(t *testing.T) {
	s := newTestStore(t, nil)

	_, err := s.CreateSolicitud(solicitud.Solicitud{
		TipoPI: solicitud.TipoPatente,
		Titulo: "Sin dueño",
	})
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestDeleteSolicitud(t *testing.T) {
	s := newTestStore(t, fixedClock("2025-02-15"))

	created, err := s.CreateSolicitud(solicitud.Solicitud{
		TipoPI: solicitud.TipoDerechoAutor,
		Titulo: "Manual de laboratorio",
		UserID: 2,
	})
	require.NoError(t, err)

	found, err := s.DeleteSolicitud(created.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.DeleteSolicitud(created.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDurableRoundTrip(t *testing.T) {
	dir := t.TempDir()
	clock := fixedClock("2025-02-15")

	s, err := Open(Options{DataDir: dir, Persist: true, Clock: clock})
	require.NoError(t, err)

	user, err := s.CreateUser(users.User{
		Username:     "admin",
		Email:        "admin@sgpi.edu",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Role:         users.RoleAdministrador,
		FullName:     "Administrador SGPI",
	})
	require.NoError(t, err)

	conv, err := s.CreateConvocatoria(convocatoria.Convocatoria{
		Tipo:        convocatoria.TipoNormal,
		Anio:        2025,
		Trimestre:   intPtr(1),
		Nombre:      "Convocatoria T1 2025",
		FechaInicio: "2025-01-01",
		FechaFin:    "2025-03-31",
	})
	require.NoError(t, err)

	sol, err := s.CreateSolicitud(solicitud.Solicitud{
		TipoPI:         solicitud.TipoPatente,
		Titulo:         "Sistema de riego automatizado",
		UserID:         user.ID,
		ConvocatoriaID: intPtr(conv.ID),
	})
	require.NoError(t, err)

	reopened, err := Open(Options{DataDir: dir, Persist: true, Clock: clock})
	require.NoError(t, err)

	loadedUser, found := reopened.UserByUsername("admin")
	require.True(t, found)
	assert.Equal(t, user.PasswordHash, loadedUser.PasswordHash, "hash survives the snapshot")

	loadedConv, found := reopened.ConvocatoriaByID(conv.ID)
	require.True(t, found)
	assert.Equal(t, conv.Estado, loadedConv.Estado)

	loadedSol, found := reopened.SolicitudByID(sol.ID)
	require.True(t, found)
	assert.Equal(t, "PT-2025-0001", loadedSol.Codigo)

	// Identifiers keep counting from where the snapshot left off.
	next, err := reopened.CreateSolicitud(solicitud.Solicitud{
		TipoPI: solicitud.TipoMarca,
		Titulo: "Marca institucional",
		UserID: user.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, sol.ID+1, next.ID)
}

func TestDurableWriteFailureRollsBack(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Options{DataDir: dir, Persist: true})
	require.NoError(t, err)

	// Squat on the snapshot's temp-file path with a directory so the
	// write cannot succeed. Permission bits won't do: tests may run as
	// root, where a read-only directory is still writable.
	blocker := filepath.Join(dir, constants.SnapshotFileUsers+".tmp")
	require.NoError(t, os.Mkdir(blocker, 0o755))

	_, err = s.CreateUser(users.User{
		Username: "admin",
		Email:    "admin@sgpi.edu",
		Role:     users.RoleAdministrador,
		FullName: "Administrador SGPI",
	})
	require.Error(t, err)
	assert.Empty(t, s.Users(), "failed snapshot write aborts the mutation")

	// Once the write path is usable again the same create goes through,
	// proving the failed attempt left no half-applied state behind.
	require.NoError(t, os.Remove(blocker))

	created, err := s.CreateUser(users.User{
		Username: "admin",
		Email:    "admin@sgpi.edu",
		Role:     users.RoleAdministrador,
		FullName: "Administrador SGPI",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	assert.Len(t, s.Users(), 1)
}

func TestStats(t *testing.T) {
	s := newTestStore(t, fixedClock("2025-02-15"))

	_, err := s.CreateUser(users.User{Username: "admin", Role: users.RoleAdministrador})
	require.NoError(t, err)
	_, err = s.CreateSolicitud(solicitud.Solicitud{TipoPI: solicitud.TipoPatente, Titulo: "X", UserID: 1})
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 0, stats.TotalConvocatorias)
	assert.Equal(t, 1, stats.TotalSolicitudes)
}
