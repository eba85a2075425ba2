package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"livestock-registry/internal/domain/growth"
)

// MeasurementLog: seq conserva el orden de llegada; no hay UPDATE ni DELETE.
type MeasurementLog struct {
	db *sql.DB
}

func NewMeasurementLog(db *sql.DB) *MeasurementLog {
	return &MeasurementLog{db: db}
}

func (l *MeasurementLog) Append(ctx context.Context, m growth.Measurement) error {
	metrics := make([]string, 0, 3)
	for _, metric := range []growth.Metric{m.WithersHeight, m.BodyWidth, m.BodyLength} {
		b, err := json.Marshal(metric)
		if err != nil {
			return err
		}
		metrics = append(metrics, string(b))
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO measurements (
			animal_id, measured_at, source, withers_height, body_width, body_length
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		m.AnimalID,
		m.Timestamp,
		m.Source,
		metrics[0],
		metrics[1],
		metrics[2],
	)
	return err
}

func (l *MeasurementLog) ListByAnimal(ctx context.Context, animalID string) ([]growth.Measurement, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT animal_id, measured_at, source, withers_height, body_width, body_length
		FROM measurements
		WHERE animal_id = $1
		ORDER BY seq ASC
	`, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]growth.Measurement, 0)
	for rows.Next() {
		var (
			m                      growth.Measurement
			withers, width, length []byte
		)
		if err := rows.Scan(&m.AnimalID, &m.Timestamp, &m.Source, &withers, &width, &length); err != nil {
			return nil, err
		}
		for _, pair := range []struct {
			raw []byte
			dst *growth.Metric
		}{
			{withers, &m.WithersHeight},
			{width, &m.BodyWidth},
			{length, &m.BodyLength},
		} {
			if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
				return nil, fmt.Errorf("decode metric: %w", err)
			}
		}
		out = append(out, m)
	}

	return out, rows.Err()
}
