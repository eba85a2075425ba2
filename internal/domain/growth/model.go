package growth

import "time"

// Metric es una medida con su unidad y la confianza del detector (0..1).
type Metric struct {
	Value      float64 `json:"value" validate:"gte=0"`
	Unit       string  `json:"unit" validate:"required"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// Measurement es una entrada del log morfológico de un animal (append-only).
type Measurement struct {
	AnimalID  string
	Timestamp time.Time
	Source    string

	WithersHeight Metric
	BodyWidth     Metric
	BodyLength    Metric
}

// Snapshot es una medición ubicada en la vida del animal.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	AgeDays   int       `json:"age_days"`
	Source    string    `json:"source"`

	WithersHeight Metric `json:"withers_height"`
	BodyWidth     Metric `json:"body_width"`
	BodyLength    Metric `json:"body_length"`

	// Media de las tres confianzas.
	Confidence float64 `json:"confidence"`
}

// Rates en unidades por día.
type Rates struct {
	WithersHeight float64 `json:"withers_height"`
	BodyWidth     float64 `json:"body_width"`
	BodyLength    float64 `json:"body_length"`
}

type Stats struct {
	First             Snapshot `json:"first_snapshot"`
	Latest            Snapshot `json:"latest_snapshot"`
	GrowthRates       Rates    `json:"growth_rates"`
	TotalMeasurements int      `json:"total_measurements"`
	SpanDays          int      `json:"measurement_span_days"`
}
