// Copyright (c) 2026 CLinCoDa. All rights reserved.

// Package seed loads the development dataset: a handful of accounts per
// role, the four trimester convocatorias of the current year plus one
// extraordinaria, and sample solicitudes spread across the IP types.
//
// Seeding goes through the store's public operations so identifiers,
// codigos, and derived estados come out exactly as production writes would
// produce them.
package seed

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/convocatoria"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/sec"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/solicitud"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/store"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/users"
)

// Apply populates an empty store. A store that already has users is left
// untouched, making the call idempotent across restarts.
func Apply(s *store.Store, logger *slog.Logger) error {
	if len(s.Users()) > 0 {
		logger.Info("seed skipped, store is not empty")
		return nil
	}

	docentes, err := seedUsers(s)
	if err != nil {
		return fmt.Errorf("seed: users: %w", err)
	}

	convocatorias, err := seedConvocatorias(s)
	if err != nil {
		return fmt.Errorf("seed: convocatorias: %w", err)
	}

	if err := seedSolicitudes(s, docentes, convocatorias); err != nil {
		return fmt.Errorf("seed: solicitudes: %w", err)
	}

	stats := s.Stats()
	logger.Info("seed applied",
		slog.Int("users", stats.TotalUsers),
		slog.Int("convocatorias", stats.TotalConvocatorias),
		slog.Int("solicitudes", stats.TotalSolicitudes),
	)
	return nil
}

type seedAccount struct {
	username   string
	email      string
	password   string
	role       users.Role
	fullName   string
	department string
}

var seedAccounts = []seedAccount{
	{"admin", "admin@sgpi.edu", "Admin123!", users.RoleAdministrador, "Administrador del Sistema", "dipi"},
	{"gestor_ingenieria", "gestor.ingenieria@sgpi.edu", "Gestor123!", users.RoleGestor, "María González", "facultad_ingenieria"},
	{"coordinador_pi", "coordinador.pi@sgpi.edu", "Coordinador123!", users.RoleCoordinador, "Carlos Mendoza", "dipi"},
	{"docente1", "docente1@sgpi.edu", "Docente1123!", users.RoleDocente, "Juan Pérez", "facultad_ingenieria"},
	{"docente2", "docente2@sgpi.edu", "Docente2123!", users.RoleDocente, "Ana Castillo", "facultad_salud"},
	{"docente3", "docente3@sgpi.edu", "Docente3123!", users.RoleDocente, "Luis Herrera", "facultad_ciencias"},
}

// seedUsers creates the accounts and returns the docente ids, which own
// the sample solicitudes.
func seedUsers(s *store.Store) ([]int, error) {
	var docentes []int

	for _, account := range seedAccounts {
		hash, err := sec.HashPassword(account.password)
		if err != nil {
			return nil, err
		}

		created, err := s.CreateUser(users.User{
			Username:     account.username,
			Email:        account.email,
			PasswordHash: hash,
			Role:         account.role,
			FullName:     account.fullName,
			Department:   account.department,
		})
		if err != nil {
			return nil, err
		}
		if created.Role == users.RoleDocente {
			docentes = append(docentes, created.ID)
		}
	}

	return docentes, nil
}

// seedConvocatorias creates the four trimester periods of the current year
// plus one extraordinaria, and returns the created ids.
//
// Estados are left empty so the store derives them from today's date, the
// same way a real creation would.
func seedConvocatorias(s *store.Store) ([]int, error) {
	year := time.Now().Year()
	var ids []int

	for trimestre := 1; trimestre <= 4; trimestre++ {
		t := trimestre
		created, err := s.CreateConvocatoria(convocatoria.Convocatoria{
			Tipo:        convocatoria.TipoNormal,
			Anio:        year,
			Trimestre:   &t,
			Nombre:      fmt.Sprintf("Convocatoria T%d - %d", trimestre, year),
			Descripcion: fmt.Sprintf("Convocatoria del trimestre %d del año %d", trimestre, year),
			FechaInicio: fmt.Sprintf("%d-%02d-01", year, (trimestre-1)*3+1),
			FechaFin:    fmt.Sprintf("%d-%02d-28", year, trimestre*3),
			Publicada:   true,
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, created.ID)
	}

	extraordinaria, err := s.CreateConvocatoria(convocatoria.Convocatoria{
		Tipo:        convocatoria.TipoExtraordinaria,
		Anio:        year,
		Nombre:      fmt.Sprintf("Convocatoria Extraordinaria - %d", year),
		Descripcion: "Convocatoria extraordinaria para proyectos especiales",
		FechaInicio: fmt.Sprintf("%d-07-01", year),
		FechaFin:    fmt.Sprintf("%d-07-31", year),
		Publicada:   false,
	})
	if err != nil {
		return nil, err
	}
	ids = append(ids, extraordinaria.ID)

	return ids, nil
}

type seedSolicitud struct {
	tipo   solicitud.TipoPI
	titulo string
	estado solicitud.Estado
}

var seedProjects = []seedSolicitud{
	{solicitud.TipoPatente, "Sistema de riego automatizado por goteo", solicitud.EstadoEnviada},
	{solicitud.TipoPatente, "Dispositivo de monitoreo cardiaco portátil", solicitud.EstadoEnRevision},
	{solicitud.TipoMarca, "Marca institucional del laboratorio de innovación", solicitud.EstadoAprobada},
	{solicitud.TipoDerechoAutor, "Manual interactivo de química orgánica", solicitud.EstadoBorrador},
	{solicitud.TipoModeloUtilidad, "Soporte ergonómico para microscopía", solicitud.EstadoObservada},
	{solicitud.TipoDisenoIndustrial, "Carcasa modular para estación meteorológica", solicitud.EstadoEnviada},
	{solicitud.TipoDerechoAutor, "Plataforma de evaluación por competencias", solicitud.EstadoRechazada},
	{solicitud.TipoPatente, "Proceso de tratamiento de aguas residuales", solicitud.EstadoBorrador},
}

// seedSolicitudes spreads the sample projects across the docentes and the
// created convocatorias.
func seedSolicitudes(s *store.Store, docentes, convocatorias []int) error {
	if len(docentes) == 0 || len(convocatorias) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i, project := range seedProjects {
		record := solicitud.Solicitud{
			TipoPI:      project.tipo,
			Titulo:      project.titulo,
			Descripcion: "Proyecto de ejemplo para desarrollo y pruebas",
			UserID:      docentes[i%len(docentes)],
			Estado:      project.estado,
		}
		if project.estado != solicitud.EstadoBorrador {
			convocatoriaID := convocatorias[i%len(convocatorias)]
			record.ConvocatoriaID = &convocatoriaID
			fechaEnvio := now.AddDate(0, 0, -i)
			record.FechaEnvio = &fechaEnvio
		}

		if _, err := s.CreateSolicitud(record); err != nil {
			return err
		}
	}

	return nil
}
