package postgres

import (
	"fmt"
	"strings"

	"livestock-registry/internal/domain/query"
)

// where arma un WHERE con placeholders $N en orden.
type where struct {
	conds []string
	args  []any
}

// add agrega una condición; cada %s en cond se reemplaza por el placeholder de arg.
func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	ph := fmt.Sprintf("$%d", len(w.args))
	w.conds = append(w.conds, strings.ReplaceAll(cond, "%s", ph))
}

// text agrega un predicado de texto exacto o "contiene" sobre una o más columnas (OR).
func (w *where) text(mode query.MatchMode, needle string, cols ...string) {
	if needle == "" {
		return
	}
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		if mode == query.MatchContains {
			parts = append(parts, "UPPER("+c+") LIKE '%' || %s || '%' ESCAPE '\\'")
		} else {
			parts = append(parts, c+" = %s")
		}
	}
	cond := strings.Join(parts, " OR ")
	if len(parts) > 1 {
		cond = "(" + cond + ")"
	}

	arg := needle
	if mode == query.MatchContains {
		arg = escapeLike(strings.ToUpper(needle))
	}
	w.add(cond, arg)
}

func (w *where) eq(col, value string) {
	if value == "" {
		return
	}
	w.add(col+" = %s", value)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// paging devuelve LIMIT/OFFSET para p (vacío si es sin paginar).
func (w *where) paging(p query.Page) string {
	p = p.Normalize()
	if p.Unpaged() {
		return ""
	}
	n := len(w.args)
	w.args = append(w.args, p.Size, p.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
