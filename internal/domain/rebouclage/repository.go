package rebouclage

import (
	"context"
	"errors"
	"strings"
	"time"

	"livestock-registry/internal/domain/query"
	"livestock-registry/internal/domain/validation"
)

var (
	ErrInvalidInput     = validation.ErrInvalidInput
	ErrFutureDate       = validation.ErrFutureDate
	ErrNotFound         = errors.New("rebouclage not found")
	ErrSameIdentifier   = errors.New("must differ from old_nni")
	ErrExtractionFailed = errors.New("could not extract identifier from image")
)

// UpdateFunc recibe el record vigente dentro de la unidad atómica del
// update. changed=false: no se escribe y el repo devuelve current.
type UpdateFunc func(current Record) (next Record, changed bool, err error)

type Repository interface {
	Create(ctx context.Context, r Record) error
	Update(ctx context.Context, id string, fn UpdateFunc) (Record, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Record, error)
	Search(ctx context.Context, f Filter, p query.Page) (query.Result[Record], error)
}

// Filter: NNI matchea contra el anterior o el nuevo. Rango inclusivo sobre
// la fecha de reemplazo.
type Filter struct {
	NNI      string
	NNIMatch query.MatchMode
	AgentID  string
	Mode     Mode
	From     *time.Time
	To       *time.Time
}

func (f Filter) Normalize() Filter {
	f.NNI = strings.ToUpper(strings.TrimSpace(f.NNI))
	if f.NNIMatch == "" {
		f.NNIMatch = query.MatchExact
	}
	f.AgentID = strings.TrimSpace(f.AgentID)
	f.Mode = Mode(strings.ToLower(strings.TrimSpace(string(f.Mode))))
	return f
}

func (f Filter) Matches(r Record) bool {
	if f.NNI != "" &&
		!query.MatchString(f.NNIMatch, string(r.OldNNI), f.NNI) &&
		!query.MatchString(f.NNIMatch, string(r.NewNNI), f.NNI) {
		return false
	}
	if f.AgentID != "" && r.AgentID != f.AgentID {
		return false
	}
	if f.Mode != "" && r.Mode != f.Mode {
		return false
	}
	return query.InRange(r.ReplacementDate, f.From, f.To)
}
