package rebouclage

import (
	"context"
	"io"
	"time"

	"livestock-registry/internal/domain/query"
)

// ExportColumns: orden fijo del export de re-crotalados.
var ExportColumns = []string{
	"id", "old_nni", "new_nni", "replacement_date", "agent_id", "mode", "created_at", "updated_at",
}

func ExportRow(r Record) []string {
	return []string{
		r.ID,
		string(r.OldNNI),
		string(r.NewNNI),
		r.ReplacementDate.UTC().Format(time.RFC3339),
		r.AgentID,
		string(r.Mode),
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

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
