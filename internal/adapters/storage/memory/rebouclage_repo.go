package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"livestock-registry/internal/domain/query"
	"livestock-registry/internal/domain/rebouclage"
)

type rebouclageRepo struct {
	mu   sync.RWMutex
	byID map[string]rebouclage.Record
}

func NewRebouclageRepo() rebouclage.Repository {
	return &rebouclageRepo{
		byID: make(map[string]rebouclage.Record),
	}
}

func (r *rebouclageRepo) Create(ctx context.Context, rec rebouclage.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("rebouclage id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("rebouclage already exists")
	}
	r.byID[rec.ID] = rec
	return nil
}

// Update corre fn bajo el write lock (read-modify-write sin intercalados).
func (r *rebouclageRepo) Update(ctx context.Context, id string, fn rebouclage.UpdateFunc) (rebouclage.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.byID[id]
	if !exists {
		return rebouclage.Record{}, rebouclage.ErrNotFound
	}
	next, changed, err := fn(current)
	if err != nil {
		return rebouclage.Record{}, err
	}
	if !changed {
		return current, nil
	}
	next.ID = id
	r.byID[id] = next
	return next, nil
}

func (r *rebouclageRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return rebouclage.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *rebouclageRepo) GetByID(ctx context.Context, id string) (rebouclage.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return rebouclage.Record{}, rebouclage.ErrNotFound
	}
	return rec, nil
}

func (r *rebouclageRepo) Search(ctx context.Context, f rebouclage.Filter, p query.Page) (query.Result[rebouclage.Record], error) {
	r.mu.RLock()
	out := make([]rebouclage.Record, 0)
	for _, rec := range r.byID {
		if f.Matches(rec) {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	// Más reciente primero (fecha de reemplazo desc, id como desempate).
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReplacementDate.Equal(out[j].ReplacementDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].ReplacementDate.After(out[j].ReplacementDate)
	})

	return query.Paginate(out, p), nil
}
