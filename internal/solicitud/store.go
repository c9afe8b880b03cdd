// Copyright (c) 2026 CLinCoDa. All rights reserved.

package solicitud

import "github.com/CLinCoDa/Repositoria-SGPI/internal/convocatoria"

// Repository is the persistence contract for solicitudes. The platform
// store satisfies it; tests may substitute their own fake.
type Repository interface {
	CreateSolicitud(s Solicitud) (Solicitud, error)
	SolicitudByID(id int) (Solicitud, bool)
	Solicitudes() []Solicitud
	DeleteSolicitud(id int) (bool, error)
}

// PeriodLookup resolves convocatoria references when a solicitud is filed
// against one. The platform store satisfies it too.
type PeriodLookup interface {
	ConvocatoriaByID(id int) (convocatoria.Convocatoria, bool)
}
