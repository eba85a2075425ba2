package growth

import (
	"iter"
	"math"
	"slices"
	"time"
)

// Timeline ordena una copia por timestamp (estable: los empates conservan el
// orden de llegada) y la expone como secuencia. Se puede recorrer varias veces.
func Timeline(ms []Measurement) iter.Seq[Measurement] {
	sorted := slices.Clone(ms)
	slices.SortStableFunc(sorted, func(a, b Measurement) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return slices.Values(sorted)
}

// AgeDays: días completos entre el nacimiento y t (floor).
func AgeDays(birth, t time.Time) int {
	return int(math.Floor(t.Sub(birth).Hours() / 24))
}

// Analyze deriva las estadísticas de crecimiento. ok=false si no hay mediciones.
func Analyze(ms []Measurement, birth time.Time) (Stats, bool) {
	var (
		stats Stats
		seen  bool
	)
	for m := range Timeline(ms) {
		snap := snapshot(m, birth)
		if !seen {
			stats.First = snap
			seen = true
		}
		stats.Latest = snap
		stats.TotalMeasurements++
	}
	if !seen {
		return Stats{}, false
	}

	stats.SpanDays = stats.Latest.AgeDays - stats.First.AgeDays
	if stats.SpanDays > 0 {
		span := float64(stats.SpanDays)
		stats.GrowthRates = Rates{
			WithersHeight: (stats.Latest.WithersHeight.Value - stats.First.WithersHeight.Value) / span,
			BodyWidth:     (stats.Latest.BodyWidth.Value - stats.First.BodyWidth.Value) / span,
			BodyLength:    (stats.Latest.BodyLength.Value - stats.First.BodyLength.Value) / span,
		}
	}
	return stats, true
}

func snapshot(m Measurement, birth time.Time) Snapshot {
	return Snapshot{
		Timestamp:     m.Timestamp,
		AgeDays:       AgeDays(birth, m.Timestamp),
		Source:        m.Source,
		WithersHeight: m.WithersHeight,
		BodyWidth:     m.BodyWidth,
		BodyLength:    m.BodyLength,
		Confidence:    (m.WithersHeight.Confidence + m.BodyWidth.Confidence + m.BodyLength.Confidence) / 3,
	}
}
