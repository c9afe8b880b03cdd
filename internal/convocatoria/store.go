// Copyright (c) 2026 CLinCoDa. All rights reserved.

package convocatoria

// Repository is the persistence contract for convocatorias. The platform
// store satisfies it; tests may substitute their own fake.
type Repository interface {
	CreateConvocatoria(c Convocatoria) (Convocatoria, error)
	ConvocatoriaByID(id int) (Convocatoria, bool)
	Convocatorias() []Convocatoria
	UpdateConvocatoria(id int, patch Patch) (Convocatoria, bool, error)
	DeleteConvocatoria(id int) (bool, error)
}
