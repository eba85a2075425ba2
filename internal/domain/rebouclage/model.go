package rebouclage

import (
	"strings"
	"time"

	"livestock-registry/internal/domain/nni"
	"livestock-registry/internal/domain/validation"
)

// Mode indica cómo se obtuvo el NNI anterior.
// @Enum manual, automatic
type Mode string

const (
	ModeManual    Mode = "manual"
	ModeAutomatic Mode = "automatic"
)

// Record es un evento de re-crotalado: el animal pasa de OldNNI a NewNNI.
// Se relaciona con la ficha de identificación solo por el valor del NNI.
type Record struct {
	ID string

	OldNNI          nni.NNI
	NewNNI          nni.NNI
	ReplacementDate time.Time
	AgentID         string
	Mode            Mode

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Draft es la entrada todavía sin validar (manual, automática o un update
// ya mergeado). Solo Validate produce un Validated.
type Draft struct {
	OldNNI          string     `json:"old_nni" validate:"required,nni"`
	NewNNI          string     `json:"new_nni" validate:"required,nni"`
	AgentID         string     `json:"agent_id" validate:"required"`
	ReplacementDate *time.Time `json:"replacement_date"`
	Mode            Mode       `json:"mode" validate:"required,oneof=manual automatic"`
}

// Validated es un Draft que pasó formato, diferencia, agente y fecha.
// Los campos son privados: fuera del paquete no se puede fabricar uno.
type Validated struct {
	oldNNI  nni.NNI
	newNNI  nni.NNI
	agentID string
	date    time.Time
	mode    Mode
}

func (d Draft) trimmed() Draft {
	d.OldNNI = strings.ToUpper(strings.TrimSpace(d.OldNNI))
	d.NewNNI = strings.ToUpper(strings.TrimSpace(d.NewNNI))
	d.AgentID = strings.TrimSpace(d.AgentID)
	d.Mode = Mode(strings.ToLower(strings.TrimSpace(string(d.Mode))))
	return d
}

// Validate junta todos los fallos en un *validation.Error. Sin fecha se usa now.
func (d Draft) Validate(now time.Time) (Validated, error) {
	d = d.trimmed()

	var errs validation.Errors
	d.check(&errs, now)
	if err := errs.Err(); err != nil {
		return Validated{}, err
	}

	date := now
	if d.ReplacementDate != nil {
		date = *d.ReplacementDate
	}
	oldNNI, _ := nni.Normalize(d.OldNNI)
	newNNI, _ := nni.Normalize(d.NewNNI)

	return Validated{
		oldNNI:  oldNNI,
		newNNI:  newNNI,
		agentID: d.AgentID,
		date:    date.UTC(),
		mode:    d.Mode,
	}, nil
}

func (d Draft) check(errs *validation.Errors, now time.Time) {
	errs.Struct("", d)

	if !errs.Has("old_nni") && !errs.Has("new_nni") && d.OldNNI == d.NewNNI {
		errs.AddErr("new_nni", ErrSameIdentifier)
	}
	if d.ReplacementDate != nil && d.ReplacementDate.After(now) {
		errs.AddErr("replacement_date", ErrFutureDate)
	}
}

// commit genera el record persistible de un evento nuevo.
func (v Validated) commit(id string, now time.Time) Record {
	return Record{
		ID:              id,
		OldNNI:          v.oldNNI,
		NewNNI:          v.newNNI,
		ReplacementDate: v.date,
		AgentID:         v.agentID,
		Mode:            v.mode,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// apply corrige un record existente conservando id, modo y created_at.
func (v Validated) apply(current Record, now time.Time) Record {
	next := current
	next.OldNNI = v.oldNNI
	next.NewNNI = v.newNNI
	next.AgentID = v.agentID
	next.ReplacementDate = v.date

	next.UpdatedAt = now
	if !next.UpdatedAt.After(current.UpdatedAt) {
		next.UpdatedAt = current.UpdatedAt.Add(time.Microsecond)
	}
	return next
}

// draftFrom reconstruye el Draft de un record guardado (base del merge en update).
func draftFrom(r Record) Draft {
	date := r.ReplacementDate
	return Draft{
		OldNNI:          string(r.OldNNI),
		NewNNI:          string(r.NewNNI),
		AgentID:         r.AgentID,
		ReplacementDate: &date,
		Mode:            r.Mode,
	}
}
