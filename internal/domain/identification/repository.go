package identification

import (
	"context"
	"errors"
	"strings"
	"time"

	"livestock-registry/internal/domain/nni"
	"livestock-registry/internal/domain/query"
	"livestock-registry/internal/domain/validation"
)

var (
	ErrInvalidInput = validation.ErrInvalidInput
	ErrFutureDate   = validation.ErrFutureDate
	ErrNotFound     = errors.New("identification not found")
	ErrDuplicateNNI = errors.New("nni already registered")
)

// UpdateFunc recibe el record vigente, leído dentro de la misma unidad
// atómica que la escritura, y devuelve el siguiente. changed=false: no se
// escribe nada y el repo devuelve current.
type UpdateFunc func(current Record) (next Record, changed bool, err error)

// Repository es el store de records + índice de unicidad por NNI.
// Create/Update deben hacer el chequeo de unicidad y la escritura como una
// sola unidad atómica (lock o constraint), devolviendo ErrDuplicateNNI.
// Update además lee, aplica fn y escribe sin que otro update se intercale.
type Repository interface {
	Create(ctx context.Context, r Record) error
	Update(ctx context.Context, id string, fn UpdateFunc) (Record, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Record, error)
	GetByNNI(ctx context.Context, n nni.NNI) (Record, error)
	Search(ctx context.Context, f Filter, p query.Page) (query.Result[Record], error)
}

// Filter es una conjunción de predicados opcionales (zero value = sin filtro).
type Filter struct {
	NNI      string
	NNIMatch query.MatchMode

	Breed   Breed
	Sex     Sex
	Species Species

	BreederID    string
	HoldingID    string
	LocalAgentID string

	// Rangos inclusivos.
	BornFrom    *time.Time
	BornTo      *time.Time
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// Normalize limpia el filtro (trim, mayúsculas en NNI, fechas a día).
func (f Filter) Normalize() Filter {
	f.NNI = strings.ToUpper(strings.TrimSpace(f.NNI))
	if f.NNIMatch == "" {
		f.NNIMatch = query.MatchExact
	}
	f.Breed = Breed(strings.ToLower(strings.TrimSpace(string(f.Breed))))
	f.Sex = Sex(strings.ToLower(strings.TrimSpace(string(f.Sex))))
	f.Species = Species(strings.ToLower(strings.TrimSpace(string(f.Species))))
	f.BreederID = strings.TrimSpace(f.BreederID)
	f.HoldingID = strings.TrimSpace(f.HoldingID)
	f.LocalAgentID = strings.TrimSpace(f.LocalAgentID)
	if f.BornFrom != nil {
		d := Date(*f.BornFrom)
		f.BornFrom = &d
	}
	if f.BornTo != nil {
		d := Date(*f.BornTo)
		f.BornTo = &d
	}
	return f
}

// Matches evalúa el filtro sobre un record (lo usa el store in-memory; el de
// Postgres traduce los mismos predicados a SQL).
func (f Filter) Matches(r Record) bool {
	if !query.MatchString(f.NNIMatch, string(r.Subject.NNI), f.NNI) {
		return false
	}
	if f.Breed != "" && r.Subject.Breed != f.Breed {
		return false
	}
	if f.Sex != "" && r.Subject.Sex != f.Sex {
		return false
	}
	if f.Species != "" && r.Subject.Species != f.Species {
		return false
	}
	if f.BreederID != "" && r.Admin.BreederID != f.BreederID {
		return false
	}
	if f.HoldingID != "" && r.Admin.HoldingID != f.HoldingID {
		return false
	}
	if f.LocalAgentID != "" && r.Admin.LocalAgentID != f.LocalAgentID {
		return false
	}
	if !query.InRange(Date(r.Subject.DateOfBirth), f.BornFrom, f.BornTo) {
		return false
	}
	if !query.InRange(r.CreatedAt, f.CreatedFrom, f.CreatedTo) {
		return false
	}
	return true
}
