package postgres

import (
	"context"
	"database/sql"
	"errors"

	"livestock-registry/internal/domain/query"
	"livestock-registry/internal/domain/rebouclage"
)

const rebouclageSelect = `
	SELECT id, old_nni, new_nni, replacement_date, agent_id, mode, created_at, updated_at
	FROM rebouclages`

type RebouclageRepo struct {
	db *sql.DB
}

func NewRebouclageRepo(db *sql.DB) *RebouclageRepo {
	return &RebouclageRepo{db: db}
}

func (r *RebouclageRepo) Create(ctx context.Context, rec rebouclage.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rebouclages (
			id, old_nni, new_nni, replacement_date, agent_id, mode, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		rec.ID,
		string(rec.OldNNI),
		string(rec.NewNNI),
		rec.ReplacementDate,
		rec.AgentID,
		string(rec.Mode),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

// Update: SELECT ... FOR UPDATE + UPDATE en la misma transacción.
func (r *RebouclageRepo) Update(ctx context.Context, id string, fn rebouclage.UpdateFunc) (rebouclage.Record, error) {
	var out rebouclage.Record
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := scanRebouclage(tx.QueryRowContext(ctx, rebouclageSelect+" WHERE id = $1 FOR UPDATE", id))
		if errors.Is(err, sql.ErrNoRows) {
			return rebouclage.ErrNotFound
		}
		if err != nil {
			return err
		}

		next, changed, err := fn(current)
		if err != nil {
			return err
		}
		if !changed {
			out = current
			return nil
		}
		next.ID = current.ID

		_, err = tx.ExecContext(ctx, `
			UPDATE rebouclages
			SET
				old_nni = $2,
				new_nni = $3,
				replacement_date = $4,
				agent_id = $5,
				updated_at = $6
			WHERE id = $1
		`,
			next.ID,
			string(next.OldNNI),
			string(next.NewNNI),
			next.ReplacementDate,
			next.AgentID,
			next.UpdatedAt,
		)
		if err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return rebouclage.Record{}, err
	}
	return out, nil
}

func (r *RebouclageRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rebouclages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return rebouclage.ErrNotFound
	}
	return nil
}

func (r *RebouclageRepo) GetByID(ctx context.Context, id string) (rebouclage.Record, error) {
	rec, err := scanRebouclage(r.db.QueryRowContext(ctx, rebouclageSelect+" WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return rebouclage.Record{}, rebouclage.ErrNotFound
	}
	return rec, err
}

func (r *RebouclageRepo) Search(ctx context.Context, f rebouclage.Filter, p query.Page) (query.Result[rebouclage.Record], error) {
	w := rebouclageWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rebouclages"+w.String(), w.args...).Scan(&total); err != nil {
		return query.Result[rebouclage.Record]{}, err
	}

	q := rebouclageSelect + w.String() + " ORDER BY replacement_date DESC, id ASC" + w.paging(p)
	rows, err := r.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return query.Result[rebouclage.Record]{}, err
	}
	defer rows.Close()

	out := make([]rebouclage.Record, 0)
	for rows.Next() {
		rec, err := scanRebouclage(rows)
		if err != nil {
			return query.Result[rebouclage.Record]{}, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return query.Result[rebouclage.Record]{}, err
	}

	return query.NewResult(out, total, p), nil
}

func rebouclageWhere(f rebouclage.Filter) *where {
	w := &where{}
	w.text(f.NNIMatch, f.NNI, "old_nni", "new_nni")
	w.eq("agent_id", f.AgentID)
	w.eq("mode", string(f.Mode))
	if f.From != nil {
		w.add("replacement_date >= %s", *f.From)
	}
	if f.To != nil {
		w.add("replacement_date <= %s", *f.To)
	}
	return w
}

func scanRebouclage(s scanner) (rebouclage.Record, error) {
	var rec rebouclage.Record
	err := s.Scan(
		&rec.ID,
		&rec.OldNNI,
		&rec.NewNNI,
		&rec.ReplacementDate,
		&rec.AgentID,
		&rec.Mode,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}
