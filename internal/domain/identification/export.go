package identification

import (
	"context"
	"io"
	"time"

	"livestock-registry/internal/domain/query"
)

// ExportColumns es el orden fijo de columnas del export:
// id, sujeto (nni, fecha, raza, sexo, especie), por cada rol en Roles
// (<rol>_nni, <rol>_date_of_birth, <rol>_breed), refs administrativas,
// created_by, created_at, updated_at.
var ExportColumns = exportColumns()

func exportColumns() []string {
	cols := []string{
		"id",
		"nni", "date_of_birth", "breed", "sex", "species_type",
	}
	for _, role := range Roles {
		r := string(role)
		cols = append(cols, r+"_nni", r+"_date_of_birth", r+"_breed")
	}
	return append(cols,
		"breeder_id", "holding_id", "local_agent_id",
		"created_by", "created_at", "updated_at",
	)
}

// ExportRow formatea un record en el orden de ExportColumns.
func ExportRow(r Record) []string {
	row := []string{
		r.ID,
		string(r.Subject.NNI),
		formatDay(r.Subject.DateOfBirth),
		string(r.Subject.Breed),
		string(r.Subject.Sex),
		string(r.Subject.Species),
	}
	for _, role := range Roles {
		slot := r.Lineage.Slot(role)
		row = append(row, string(slot.NNI), formatDay(slot.DateOfBirth), string(slot.Breed))
	}
	return append(row,
		r.Admin.BreederID,
		r.Admin.HoldingID,
		r.Admin.LocalAgentID,
		r.CreatedBy,
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.UpdatedAt.UTC().Format(time.RFC3339),
	)
}

// Export escribe el conjunto filtrado completo (sin paginar).
func (s *Service) Export(ctx context.Context, f Filter, format query.Format, w io.Writer) error {
	res, err := s.repo.Search(ctx, f.Normalize(), query.All())
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(res.Items))
	for _, r := range res.Items {
		rows = append(rows, ExportRow(r))
	}
	return query.WriteDelimited(w, format, ExportColumns, rows)
}
