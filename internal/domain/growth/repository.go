package growth

import (
	"context"
	"time"

	"livestock-registry/internal/domain/identification"
)

// MeasurementLog es el log append-only de mediciones por animal. El análisis
// solo lee; Append lo usa el ingest del feed de detección.
type MeasurementLog interface {
	ListByAnimal(ctx context.Context, animalID string) ([]Measurement, error)
	Append(ctx context.Context, m Measurement) error
}

// Animals resuelve la ficha del animal (fecha de nacimiento).
type Animals interface {
	GetByID(ctx context.Context, id string) (identification.Record, error)
}

var _ Animals = (*identification.Service)(nil)

// birthOf devuelve la fecha de nacimiento como medianoche UTC.
func birthOf(r identification.Record) time.Time {
	return identification.Date(r.Subject.DateOfBirth)
}
