package rebouclage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"livestock-registry/internal/domain/nni"
	"livestock-registry/internal/domain/query"
	"livestock-registry/internal/domain/validation"
	"livestock-registry/internal/platform/logger"
	"livestock-registry/internal/platform/metrics"
	"livestock-registry/internal/ports/extraction"

	"github.com/google/uuid"
)

const module = "rebouclage"

type Service struct {
	repo      Repository
	extractor extraction.Extractor
	log       logger.Logger
	now       func() time.Time
}

// NewService: extractor puede ser nil; en ese caso CreateAutomatic siempre
// devuelve ErrExtractionFailed.
func NewService(repo Repository, extractor extraction.Extractor, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		extractor: extractor,
		log:       log.With(map[string]any{"module": module}),
		now:       time.Now,
	}
}

type ManualInput struct {
	OldNNI          string     `json:"old_nni"`
	NewNNI          string     `json:"new_nni"`
	AgentID         string     `json:"agent_id"`
	ReplacementDate *time.Time `json:"replacement_date"`
}

// AutomaticInput: el NNI anterior se lee de la foto del crotal retirado.
type AutomaticInput struct {
	Image           extraction.Image `json:"-"`
	NewNNI          string           `json:"new_nni" validate:"required,nni"`
	AgentID         string           `json:"agent_id" validate:"required"`
	ReplacementDate *time.Time       `json:"replacement_date"`
}

// UpdateInput: nil = no tocar. El modo no se corrige.
type UpdateInput struct {
	OldNNI          *string    `json:"old_nni"`
	NewNNI          *string    `json:"new_nni"`
	AgentID         *string    `json:"agent_id"`
	ReplacementDate *time.Time `json:"replacement_date"`
}

func (s *Service) CreateManual(ctx context.Context, in ManualInput) (rec Record, err error) {
	defer func() { metrics.Operation(module, "create_manual", err) }()

	return s.create(ctx, Draft{
		OldNNI:          in.OldNNI,
		NewNNI:          in.NewNNI,
		AgentID:         in.AgentID,
		ReplacementDate: in.ReplacementDate,
		Mode:            ModeManual,
	})
}

// CreateAutomatic valida primero lo que no depende de la imagen (para no
// llamar al extractor con un request inválido), resuelve old_nni y sigue
// como el camino manual. Si la extracción falla no se persiste nada.
func (s *Service) CreateAutomatic(ctx context.Context, in AutomaticInput) (rec Record, err error) {
	defer func() { metrics.Operation(module, "create_automatic", err) }()

	in.NewNNI = strings.ToUpper(strings.TrimSpace(in.NewNNI))
	in.AgentID = strings.TrimSpace(in.AgentID)

	var errs validation.Errors
	if len(in.Image.Data) == 0 {
		errs.Add("image", "required")
	}
	errs.Struct("", in)
	if in.ReplacementDate != nil && in.ReplacementDate.After(s.now()) {
		errs.AddErr("replacement_date", ErrFutureDate)
	}
	if err := errs.Err(); err != nil {
		return Record{}, err
	}

	oldNNI, err := s.extract(ctx, in.Image)
	if err != nil {
		s.log.Warn("extraction failed", map[string]any{"err": err})
		return Record{}, err
	}

	return s.create(ctx, Draft{
		OldNNI:          string(oldNNI),
		NewNNI:          in.NewNNI,
		AgentID:         in.AgentID,
		ReplacementDate: in.ReplacementDate,
		Mode:            ModeAutomatic,
	})
}

func (s *Service) extract(ctx context.Context, img extraction.Image) (nni.NNI, error) {
	if s.extractor == nil {
		return "", fmt.Errorf("%w: no extractor configured", ErrExtractionFailed)
	}
	raw, err := s.extractor.ExtractNNI(ctx, img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	// Un candidato que no cumple el formato cuenta como extracción fallida.
	n, err := nni.Normalize(raw)
	if err != nil {
		return "", fmt.Errorf("%w: candidate %q: %v", ErrExtractionFailed, raw, err)
	}
	return n, nil
}

func (s *Service) create(ctx context.Context, d Draft) (Record, error) {
	now := s.now()

	v, err := d.Validate(now)
	if err != nil {
		s.log.Warn("rebouclage rejected", map[string]any{"mode": d.Mode, "err": err})
		return Record{}, err
	}

	rec := v.commit(uuid.NewString(), now)
	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}

	s.log.Info("rebouclage created", map[string]any{
		"id":      rec.ID,
		"mode":    rec.Mode,
		"old_nni": rec.OldNNI,
		"new_nni": rec.NewNNI,
	})
	return rec, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Update mergea el patch sobre el record vigente y vuelve a pasar por
// Validate, todo dentro de repo.Update. Si el resultado es igual al
// guardado no se escribe.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (rec Record, err error) {
	defer func() { metrics.Operation(module, "update", err) }()

	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrNotFound
	}

	written := false
	rec, err = s.repo.Update(ctx, id, func(current Record) (Record, bool, error) {
		merged := applyPatch(draftFrom(current), in).trimmed()
		if unchanged(merged, current) {
			return current, false, nil
		}
		now := s.now()
		v, err := merged.Validate(now)
		if err != nil {
			return Record{}, false, err
		}
		written = true
		return v.apply(current, now), true, nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			s.log.Warn("rebouclage update rejected", map[string]any{"id": id, "err": err})
		}
		return Record{}, err
	}

	if written {
		s.log.Info("rebouclage updated", map[string]any{"id": rec.ID})
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id string) (err error) {
	defer func() { metrics.Operation(module, "delete", err) }()

	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("rebouclage deleted", map[string]any{"id": id})
	return nil
}

func (s *Service) Search(ctx context.Context, f Filter, p query.Page) (query.Result[Record], error) {
	return s.repo.Search(ctx, f.Normalize(), p.Normalize())
}

func applyPatch(base Draft, p UpdateInput) Draft {
	if p.OldNNI != nil {
		base.OldNNI = *p.OldNNI
	}
	if p.NewNNI != nil {
		base.NewNNI = *p.NewNNI
	}
	if p.AgentID != nil {
		base.AgentID = *p.AgentID
	}
	if p.ReplacementDate != nil {
		d := *p.ReplacementDate
		base.ReplacementDate = &d
	}
	return base
}

func unchanged(d Draft, r Record) bool {
	return d.OldNNI == string(r.OldNNI) &&
		d.NewNNI == string(r.NewNNI) &&
		d.AgentID == r.AgentID &&
		d.ReplacementDate != nil && d.ReplacementDate.Equal(r.ReplacementDate)
}
