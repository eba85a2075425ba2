package identification

import (
	"context"
	"errors"
	"strings"
	"time"

	"livestock-registry/internal/domain/nni"
	"livestock-registry/internal/domain/query"
	"livestock-registry/internal/domain/validation"
	"livestock-registry/internal/platform/logger"
	"livestock-registry/internal/platform/metrics"

	"github.com/google/uuid"
)

const module = "identification"

type Service struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		log:  log.With(map[string]any{"module": module}),
		now:  time.Now,
	}
}

// Create valida todos los campos en una sola pasada y luego inserta. La
// unicidad del NNI la resuelve el repo de forma atómica con el insert.
func (s *Service) Create(ctx context.Context, createdBy string, in CreateInput) (rec Record, err error) {
	defer func() { metrics.Operation(module, "create", err) }()

	createdBy, in = trimCreate(createdBy, in)
	now := s.now()

	if err := validateCreate(createdBy, in, now); err != nil {
		s.log.Warn("identification rejected", map[string]any{"err": err})
		return Record{}, err
	}

	subject, _ := in.Subject.toSubject()
	var lineage Lineage
	for _, role := range Roles {
		slot, _ := in.Lineage.slot(role).toSlot()
		lineage.set(role, slot)
	}

	rec = Record{
		ID:        uuid.NewString(),
		Subject:   subject,
		Lineage:   lineage,
		Admin:     in.Admin.toRefs(),
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		if errors.Is(err, ErrDuplicateNNI) {
			s.log.Warn("duplicate nni", map[string]any{"nni": rec.Subject.NNI})
		}
		return Record{}, err
	}

	s.log.Info("identification created", map[string]any{"id": rec.ID, "nni": rec.Subject.NNI})
	return rec.Clone(), nil
}

// ValidateCreate corre las mismas validaciones locales que Create sin
// escribir. Los chequeos remotos (directorio) van después de esto.
func (s *Service) ValidateCreate(createdBy string, in CreateInput) error {
	createdBy, in = trimCreate(createdBy, in)
	return validateCreate(createdBy, in, s.now())
}

func (s *Service) GetByID(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// GetByNNI busca por identificador (normalizado antes de consultar).
func (s *Service) GetByNNI(ctx context.Context, raw string) (Record, error) {
	n, err := nni.Normalize(raw)
	if err != nil {
		var errs validation.Errors
		errs.AddErr("nni", err)
		return Record{}, errs.Err()
	}
	return s.repo.GetByNNI(ctx, n)
}

// Update aplica un update parcial por diff: solo se validan los grupos que
// cambian de valor. Sin cambios no se escribe nada y updated_at no avanza.
// El diff se calcula dentro del repo.Update, contra el record vigente.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (rec Record, err error) {
	defer func() { metrics.Operation(module, "update", err) }()

	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrNotFound
	}

	var (
		cs         ChangeSet
		nniChanged bool
	)
	rec, err = s.repo.Update(ctx, id, func(current Record) (Record, bool, error) {
		cs = Changes(current, in)
		nniChanged = cs.SubjectNNIChanged(current)
		if cs.Empty() {
			return current, false, nil
		}
		now := s.now()
		if err := validateChanges(current, cs, now); err != nil {
			return Record{}, false, err
		}
		return applyChanges(current, cs, now), true, nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			s.log.Warn("identification update rejected", map[string]any{"id": id, "err": err})
		}
		return Record{}, err
	}
	if !cs.Empty() {
		s.log.Info("identification updated", map[string]any{"id": rec.ID, "nni_changed": nniChanged})
	}
	return rec.Clone(), nil
}

// PrepareUpdate calcula y valida el change-set contra el record actual sin
// escribir. Sirve para decidir chequeos remotos antes del Update (un
// change-set vacío no los necesita). El Update vuelve a calcularlo.
func (s *Service) PrepareUpdate(ctx context.Context, id string, in UpdateInput) (Record, ChangeSet, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Record{}, ChangeSet{}, err
	}
	cs := Changes(current, in)
	if cs.Empty() {
		return current, cs, nil
	}
	if err := validateChanges(current, cs, s.now()); err != nil {
		return Record{}, ChangeSet{}, err
	}
	return current, cs, nil
}

// Delete borra el record y libera su NNI.
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	defer func() { metrics.Operation(module, "delete", err) }()

	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("identification deleted", map[string]any{"id": id})
	return nil
}

func (s *Service) Search(ctx context.Context, f Filter, p query.Page) (query.Result[Record], error) {
	return s.repo.Search(ctx, f.Normalize(), p.Normalize())
}

// -------------------------
// Validación por grupo
// -------------------------

func trimCreate(createdBy string, in CreateInput) (string, CreateInput) {
	return strings.TrimSpace(createdBy), CreateInput{
		Subject: in.Subject.trimmed(),
		Lineage: trimLineage(in.Lineage),
		Admin:   in.Admin.trimmed(),
	}
}

func validateCreate(createdBy string, in CreateInput, now time.Time) error {
	var errs validation.Errors
	if createdBy == "" {
		errs.Add("created_by", "required")
	}
	validateSubject(&errs, in.Subject, now)
	for _, role := range Roles {
		validateSlot(&errs, role, in.Lineage.slot(role), now)
	}
	errs.Struct("administrative_refs.", in.Admin)
	checkAncestorsDiffer(&errs, in.Subject, func(r Role) (SlotInput, bool) {
		return in.Lineage.slot(r), true
	})
	return errs.Err()
}

func validateChanges(current Record, cs ChangeSet, now time.Time) error {
	var errs validation.Errors
	if cs.Subject != nil {
		validateSubject(&errs, *cs.Subject, now)
	}
	for _, role := range Roles {
		if slot, ok := cs.Lineage[role]; ok {
			validateSlot(&errs, role, slot, now)
		}
	}
	if cs.Admin != nil {
		errs.Struct("administrative_refs.", *cs.Admin)
	}

	// Ancestros vs sujeto resultante: si cambió el sujeto se revisan todos.
	subjectIn := subjectInputFrom(current.Subject)
	if cs.Subject != nil {
		subjectIn = *cs.Subject
	}
	checkAncestorsDiffer(&errs, subjectIn, func(r Role) (SlotInput, bool) {
		if slot, ok := cs.Lineage[r]; ok {
			return slot, true
		}
		return slotInputFrom(current.Lineage.Slot(r)), cs.Subject != nil
	})
	return errs.Err()
}

// applyChanges arma el record siguiente; updated_at siempre avanza estrictamente.
func applyChanges(current Record, cs ChangeSet, now time.Time) Record {
	next := current.Clone()
	if cs.Subject != nil {
		next.Subject, _ = cs.Subject.toSubject()
	}
	for role, slotIn := range cs.Lineage {
		slot, _ := slotIn.toSlot()
		next.Lineage.set(role, slot)
	}
	if cs.Admin != nil {
		next.Admin = cs.Admin.toRefs()
	}

	next.UpdatedAt = now
	if !next.UpdatedAt.After(current.UpdatedAt) {
		next.UpdatedAt = current.UpdatedAt.Add(time.Microsecond)
	}
	return next
}

func trimLineage(l LineageInput) LineageInput {
	return LineageInput{
		Mother:              l.Mother.trimmed(),
		MaternalGrandfather: l.MaternalGrandfather.trimmed(),
		Father:              l.Father.trimmed(),
		PaternalGrandfather: l.PaternalGrandfather.trimmed(),
		PaternalGrandmother: l.PaternalGrandmother.trimmed(),
	}
}

func validateSubject(errs *validation.Errors, in SubjectInput, now time.Time) {
	errs.Struct("subject.", in)
	checkNotFuture(errs, "subject.date_of_birth", in.DateOfBirth, now)
}

func validateSlot(errs *validation.Errors, role Role, in SlotInput, now time.Time) {
	prefix := "lineage." + string(role) + "."
	errs.Struct(prefix, in)
	checkNotFuture(errs, prefix+"date_of_birth", in.DateOfBirth, now)
}

func checkNotFuture(errs *validation.Errors, field, day string, now time.Time) {
	if errs.Has(field) {
		return
	}
	dob, err := time.Parse(DateLayout, day)
	if err != nil {
		return
	}
	if dob.After(Date(now)) {
		errs.AddErr(field, ErrFutureDate)
	}
}

// checkAncestorsDiffer: ningún ancestro puede tener el NNI del sujeto.
// slot devuelve (input, revisar) por rol.
func checkAncestorsDiffer(errs *validation.Errors, subject SubjectInput, slot func(Role) (SlotInput, bool)) {
	subjectNNI, err := nni.Normalize(subject.NNI)
	if err != nil {
		return
	}
	for _, role := range Roles {
		in, check := slot(role)
		if !check {
			continue
		}
		n, err := nni.Normalize(in.NNI)
		if err != nil {
			continue
		}
		if n == subjectNNI {
			errs.Add("lineage."+string(role)+".nni", "must differ from subject nni")
		}
	}
}
