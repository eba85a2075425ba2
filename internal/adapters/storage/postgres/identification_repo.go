package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"livestock-registry/internal/domain/identification"
	"livestock-registry/internal/domain/nni"
	"livestock-registry/internal/domain/query"
)

const subjectNNIKey = "identifications_subject_nni_key"

// identificationColumns en el orden de scan/insert. Los ancestros van
// aplanados como <rol>_nni, <rol>_date_of_birth, <rol>_breed.
var identificationColumns = func() []string {
	cols := []string{
		"id",
		"subject_nni", "subject_date_of_birth", "subject_breed",
		"subject_sex", "subject_species", "subject_photos",
	}
	for _, role := range identification.Roles {
		r := string(role)
		cols = append(cols, r+"_nni", r+"_date_of_birth", r+"_breed")
	}
	return append(cols,
		"breeder_id", "holding_id", "local_agent_id",
		"created_by", "created_at", "updated_at",
	)
}()

var identificationSelect = "SELECT " + strings.Join(identificationColumns, ", ") + " FROM identifications"

type IdentificationRepo struct {
	db *sql.DB
}

func NewIdentificationRepo(db *sql.DB) *IdentificationRepo {
	return &IdentificationRepo{db: db}
}

// El constraint UNIQUE resuelve el check-then-insert en una sola sentencia.
func (r *IdentificationRepo) Create(ctx context.Context, rec identification.Record) error {
	values, err := identificationValues(rec)
	if err != nil {
		return err
	}

	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO identifications ("+strings.Join(identificationColumns, ", ")+") VALUES ("+strings.Join(placeholders, ",")+")",
		values...,
	)
	if isUniqueViolation(err, subjectNNIKey) {
		return identification.ErrDuplicateNNI
	}
	return err
}

// Update bloquea la fila (SELECT ... FOR UPDATE) y escribe en la misma
// transacción: un update concurrente espera y lee el resultado de este.
func (r *IdentificationRepo) Update(ctx context.Context, id string, fn identification.UpdateFunc) (identification.Record, error) {
	var out identification.Record
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := scanIdentification(tx.QueryRowContext(ctx, identificationSelect+" WHERE id = $1 FOR UPDATE", id))
		if errors.Is(err, sql.ErrNoRows) {
			return identification.ErrNotFound
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

		values, err := identificationValues(next)
		if err != nil {
			return err
		}

		// $1 = id; el resto en el orden de identificationColumns (sin id ni created_*).
		sets := make([]string, 0, len(identificationColumns))
		args := []any{next.ID}
		for i, col := range identificationColumns {
			switch col {
			case "id", "created_by", "created_at":
				continue
			}
			args = append(args, values[i])
			sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
		}

		_, err = tx.ExecContext(ctx, "UPDATE identifications SET "+strings.Join(sets, ", ")+" WHERE id = $1", args...)
		if isUniqueViolation(err, subjectNNIKey) {
			return identification.ErrDuplicateNNI
		}
		if err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return identification.Record{}, err
	}
	return out, nil
}

func (r *IdentificationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM identifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return identification.ErrNotFound
	}
	return nil
}

func (r *IdentificationRepo) GetByID(ctx context.Context, id string) (identification.Record, error) {
	return r.getOne(ctx, identificationSelect+" WHERE id = $1", id)
}

func (r *IdentificationRepo) GetByNNI(ctx context.Context, n nni.NNI) (identification.Record, error) {
	return r.getOne(ctx, identificationSelect+" WHERE subject_nni = $1", string(n))
}

func (r *IdentificationRepo) getOne(ctx context.Context, q string, arg any) (identification.Record, error) {
	rec, err := scanIdentification(r.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return identification.Record{}, identification.ErrNotFound
	}
	return rec, err
}

func (r *IdentificationRepo) Search(ctx context.Context, f identification.Filter, p query.Page) (query.Result[identification.Record], error) {
	w := identificationWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM identifications"+w.String(), w.args...).Scan(&total); err != nil {
		return query.Result[identification.Record]{}, err
	}

	q := identificationSelect + w.String() + " ORDER BY created_at ASC, id ASC" + w.paging(p)
	rows, err := r.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return query.Result[identification.Record]{}, err
	}
	defer rows.Close()

	out := make([]identification.Record, 0)
	for rows.Next() {
		rec, err := scanIdentification(rows)
		if err != nil {
			return query.Result[identification.Record]{}, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return query.Result[identification.Record]{}, err
	}

	return query.NewResult(out, total, p), nil
}

func identificationWhere(f identification.Filter) *where {
	w := &where{}
	w.text(f.NNIMatch, f.NNI, "subject_nni")
	w.eq("subject_breed", string(f.Breed))
	w.eq("subject_sex", string(f.Sex))
	w.eq("subject_species", string(f.Species))
	w.eq("breeder_id", f.BreederID)
	w.eq("holding_id", f.HoldingID)
	w.eq("local_agent_id", f.LocalAgentID)
	if f.BornFrom != nil {
		w.add("subject_date_of_birth >= %s", *f.BornFrom)
	}
	if f.BornTo != nil {
		w.add("subject_date_of_birth <= %s", *f.BornTo)
	}
	if f.CreatedFrom != nil {
		w.add("created_at >= %s", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		w.add("created_at <= %s", *f.CreatedTo)
	}
	return w
}

func identificationValues(rec identification.Record) ([]any, error) {
	photos := rec.Subject.Photos
	if photos == nil {
		photos = []string{}
	}
	photosJSON, err := json.Marshal(photos)
	if err != nil {
		return nil, err
	}

	values := []any{
		rec.ID,
		string(rec.Subject.NNI), rec.Subject.DateOfBirth, string(rec.Subject.Breed),
		string(rec.Subject.Sex), string(rec.Subject.Species), string(photosJSON),
	}
	for _, role := range identification.Roles {
		s := rec.Lineage.Slot(role)
		values = append(values, string(s.NNI), s.DateOfBirth, string(s.Breed))
	}
	return append(values,
		rec.Admin.BreederID, rec.Admin.HoldingID, rec.Admin.LocalAgentID,
		rec.CreatedBy, rec.CreatedAt, rec.UpdatedAt,
	), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIdentification(s scanner) (identification.Record, error) {
	var (
		rec        identification.Record
		photosJSON []byte
		slots      [5]identification.LineageSlot
	)

	dest := []any{
		&rec.ID,
		&rec.Subject.NNI, &rec.Subject.DateOfBirth, &rec.Subject.Breed,
		&rec.Subject.Sex, &rec.Subject.Species, &photosJSON,
	}
	for i := range identification.Roles {
		dest = append(dest, &slots[i].NNI, &slots[i].DateOfBirth, &slots[i].Breed)
	}
	dest = append(dest,
		&rec.Admin.BreederID, &rec.Admin.HoldingID, &rec.Admin.LocalAgentID,
		&rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)

	if err := s.Scan(dest...); err != nil {
		return identification.Record{}, err
	}

	if len(photosJSON) > 0 {
		if err := json.Unmarshal(photosJSON, &rec.Subject.Photos); err != nil {
			return identification.Record{}, fmt.Errorf("decode photos: %w", err)
		}
	}
	if len(rec.Subject.Photos) == 0 {
		rec.Subject.Photos = nil
	}

	rec.Lineage = identification.Lineage{
		Mother:              slots[0],
		MaternalGrandfather: slots[1],
		Father:              slots[2],
		PaternalGrandfather: slots[3],
		PaternalGrandmother: slots[4],
	}
	rec.Subject.DateOfBirth = identification.Date(rec.Subject.DateOfBirth)
	return rec, nil
}
