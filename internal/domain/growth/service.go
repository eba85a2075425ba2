package growth

import (
	"context"
	"strings"
	"time"

	"livestock-registry/internal/domain/validation"
	"livestock-registry/internal/platform/logger"
	"livestock-registry/internal/platform/metrics"
)

const module = "growth"

var (
	ErrInvalidInput = validation.ErrInvalidInput
	ErrFutureDate   = validation.ErrFutureDate
)

type Service struct {
	animals Animals
	log     MeasurementLog
	logger  logger.Logger
	now     func() time.Time
}

func NewService(animals Animals, log MeasurementLog, lg logger.Logger) *Service {
	if lg == nil {
		lg = logger.Nop()
	}
	return &Service{
		animals: animals,
		log:     log,
		logger:  lg.With(map[string]any{"module": module}),
		now:     time.Now,
	}
}

// MeasurementInput es una lectura del feed de detección. Sin timestamp se usa now.
type MeasurementInput struct {
	Timestamp     *time.Time `json:"timestamp"`
	Source        string     `json:"source" validate:"required,max=64"`
	WithersHeight Metric     `json:"withers_height"`
	BodyWidth     Metric     `json:"body_width"`
	BodyLength    Metric     `json:"body_length"`
}

// Analyze: ok=false cuando el animal existe pero todavía no tiene mediciones.
func (s *Service) Analyze(ctx context.Context, animalID string) (Stats, bool, error) {
	rec, err := s.animals.GetByID(ctx, animalID)
	if err != nil {
		return Stats{}, false, err
	}
	ms, err := s.log.ListByAnimal(ctx, rec.ID)
	if err != nil {
		return Stats{}, false, err
	}
	stats, ok := Analyze(ms, birthOf(rec))
	return stats, ok, nil
}

// History devuelve el log del animal tal cual está guardado.
func (s *Service) History(ctx context.Context, animalID string) ([]Measurement, error) {
	rec, err := s.animals.GetByID(ctx, animalID)
	if err != nil {
		return nil, err
	}
	return s.log.ListByAnimal(ctx, rec.ID)
}

// Record agrega una medición al log del animal.
func (s *Service) Record(ctx context.Context, animalID string, in MeasurementInput) (m Measurement, err error) {
	defer func() { metrics.Operation(module, "record", err) }()

	rec, err := s.animals.GetByID(ctx, animalID)
	if err != nil {
		return Measurement{}, err
	}

	now := s.now()
	in.Source = strings.TrimSpace(in.Source)
	in.WithersHeight = trimUnit(in.WithersHeight)
	in.BodyWidth = trimUnit(in.BodyWidth)
	in.BodyLength = trimUnit(in.BodyLength)

	var errs validation.Errors
	errs.Struct("", in)
	ts := now
	if in.Timestamp != nil {
		ts = in.Timestamp.UTC()
		if ts.After(now) {
			errs.AddErr("timestamp", ErrFutureDate)
		}
	}
	if err := errs.Err(); err != nil {
		return Measurement{}, err
	}

	m = Measurement{
		AnimalID:      rec.ID,
		Timestamp:     ts,
		Source:        in.Source,
		WithersHeight: in.WithersHeight,
		BodyWidth:     in.BodyWidth,
		BodyLength:    in.BodyLength,
	}
	if err := s.log.Append(ctx, m); err != nil {
		return Measurement{}, err
	}

	s.logger.Debug("measurement recorded", map[string]any{"animal_id": rec.ID, "source": m.Source})
	return m, nil
}

func trimUnit(m Metric) Metric {
	m.Unit = strings.TrimSpace(m.Unit)
	return m
}
