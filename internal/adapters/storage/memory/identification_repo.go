package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"livestock-registry/internal/domain/identification"
	"livestock-registry/internal/domain/nni"
	"livestock-registry/internal/domain/query"
)

// identificationRepo guarda records + índice NNI -> id bajo el mismo lock,
// así el chequeo de unicidad y la escritura son una sola unidad atómica.
type identificationRepo struct {
	mu    sync.RWMutex
	byID  map[string]identification.Record
	byNNI map[nni.NNI]string
}

func NewIdentificationRepo() identification.Repository {
	return &identificationRepo{
		byID:  make(map[string]identification.Record),
		byNNI: make(map[nni.NNI]string),
	}
}

func (r *identificationRepo) Create(ctx context.Context, rec identification.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("identification id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("identification already exists")
	}
	if _, taken := r.byNNI[rec.Subject.NNI]; taken {
		return identification.ErrDuplicateNNI
	}

	r.byID[rec.ID] = rec.Clone()
	r.byNNI[rec.Subject.NNI] = rec.ID
	return nil
}

// Update corre fn bajo el write lock: dos updates del mismo record se
// serializan y cada uno ve lo que escribió el anterior.
func (r *identificationRepo) Update(ctx context.Context, id string, fn identification.UpdateFunc) (identification.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.byID[id]
	if !ok {
		return identification.Record{}, identification.ErrNotFound
	}

	next, changed, err := fn(prev.Clone())
	if err != nil {
		return identification.Record{}, err
	}
	if !changed {
		return prev.Clone(), nil
	}
	next.ID = prev.ID

	if prev.Subject.NNI != next.Subject.NNI {
		if owner, taken := r.byNNI[next.Subject.NNI]; taken && owner != id {
			return identification.Record{}, identification.ErrDuplicateNNI
		}
		delete(r.byNNI, prev.Subject.NNI)
		r.byNNI[next.Subject.NNI] = id
	}

	r.byID[id] = next.Clone()
	return next.Clone(), nil
}

func (r *identificationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return identification.ErrNotFound
	}
	delete(r.byID, id)
	if r.byNNI[rec.Subject.NNI] == id {
		delete(r.byNNI, rec.Subject.NNI)
	}
	return nil
}

func (r *identificationRepo) GetByID(ctx context.Context, id string) (identification.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return identification.Record{}, identification.ErrNotFound
	}
	return rec.Clone(), nil
}

func (r *identificationRepo) GetByNNI(ctx context.Context, n nni.NNI) (identification.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byNNI[n]
	if !ok {
		return identification.Record{}, identification.ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *identificationRepo) Search(ctx context.Context, f identification.Filter, p query.Page) (query.Result[identification.Record], error) {
	r.mu.RLock()
	out := make([]identification.Record, 0)
	for _, rec := range r.byID {
		if f.Matches(rec) {
			out = append(out, rec.Clone())
		}
	}
	r.mu.RUnlock()

	// Orden estable por created_at asc, id como desempate.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return query.Paginate(out, p), nil
}
