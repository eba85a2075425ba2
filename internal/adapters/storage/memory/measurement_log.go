package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"livestock-registry/internal/domain/growth"
)

// measurementLog es append-only: no hay update ni delete.
type measurementLog struct {
	mu       sync.RWMutex
	byAnimal map[string][]growth.Measurement
}

func NewMeasurementLog() growth.MeasurementLog {
	return &measurementLog{
		byAnimal: make(map[string][]growth.Measurement),
	}
}

func (l *measurementLog) Append(ctx context.Context, m growth.Measurement) error {
	if strings.TrimSpace(m.AnimalID) == "" {
		return errors.New("animal id required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.byAnimal[m.AnimalID] = append(l.byAnimal[m.AnimalID], m)
	return nil
}

// ListByAnimal devuelve una copia en orden de llegada.
func (l *measurementLog) ListByAnimal(ctx context.Context, animalID string) ([]growth.Measurement, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	src := l.byAnimal[animalID]
	out := make([]growth.Measurement, len(src))
	copy(out, src)
	return out, nil
}
