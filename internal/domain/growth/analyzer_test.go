package growth

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var birth = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(days int) time.Time { return birth.AddDate(0, 0, days) }

func measurement(days int, withers float64, source string) Measurement {
	return Measurement{
		AnimalID:      "a-1",
		Timestamp:     at(days),
		Source:        source,
		WithersHeight: Metric{Value: withers, Unit: "cm", Confidence: 0.9},
		BodyWidth:     Metric{Value: 40, Unit: "cm", Confidence: 0.6},
		BodyLength:    Metric{Value: 100 + float64(days), Unit: "cm", Confidence: 0.3},
	}
}

func TestAnalyze_GrowthRate(t *testing.T) {
	// llegan desordenadas a propósito
	ms := []Measurement{
		measurement(60, 92, "cam"),
		measurement(0, 80, "cam"),
		measurement(30, 85, "cam"),
	}

	stats, ok := Analyze(ms, birth)
	require.True(t, ok)

	assert.Equal(t, 3, stats.TotalMeasurements)
	assert.Equal(t, 60, stats.SpanDays)
	assert.Equal(t, 0, stats.First.AgeDays)
	assert.Equal(t, 60, stats.Latest.AgeDays)
	assert.InDelta(t, 0.2, stats.GrowthRates.WithersHeight, 1e-9)
	assert.InDelta(t, 0.0, stats.GrowthRates.BodyWidth, 1e-9)
	assert.InDelta(t, 1.0, stats.GrowthRates.BodyLength, 1e-9)
	assert.InDelta(t, 0.6, stats.First.Confidence, 1e-9)

	// el input no se reordena
	assert.Equal(t, at(60), ms[0].Timestamp)
}

func TestAnalyze_SingleMeasurement(t *testing.T) {
	stats, ok := Analyze([]Measurement{measurement(10, 80, "cam")}, birth)
	require.True(t, ok)

	assert.Equal(t, 0, stats.SpanDays)
	assert.Equal(t, Rates{}, stats.GrowthRates)
	assert.Equal(t, stats.First, stats.Latest)
	assert.Equal(t, 1, stats.TotalMeasurements)
}

func TestAnalyze_Empty(t *testing.T) {
	_, ok := Analyze(nil, birth)
	assert.False(t, ok)
}

func TestAnalyze_SameDaySpanIsZero(t *testing.T) {
	a := measurement(5, 80, "cam")
	b := measurement(5, 90, "cam")
	b.Timestamp = b.Timestamp.Add(6 * time.Hour)

	stats, ok := Analyze([]Measurement{a, b}, birth)
	require.True(t, ok)
	assert.Equal(t, 0, stats.SpanDays)
	assert.Equal(t, 0.0, stats.GrowthRates.WithersHeight)
}

func TestTimeline_StableAndRestartable(t *testing.T) {
	ms := []Measurement{
		measurement(30, 1, "b"),
		measurement(0, 1, "first-tie"),
		measurement(0, 1, "second-tie"),
	}

	seq := Timeline(ms)

	var sources []string
	for m := range seq {
		sources = append(sources, m.Source)
	}
	assert.Equal(t, []string{"first-tie", "second-tie", "b"}, sources)

	// segunda pasada sobre la misma secuencia
	assert.Len(t, slices.Collect(seq), 3)
}

func TestAgeDays_Floors(t *testing.T) {
	assert.Equal(t, 0, AgeDays(birth, birth.Add(23*time.Hour)))
	assert.Equal(t, 1, AgeDays(birth, birth.Add(25*time.Hour)))
	assert.Equal(t, -1, AgeDays(birth, birth.Add(-time.Hour)))
}
