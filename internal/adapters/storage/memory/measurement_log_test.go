package memory

import (
	"context"
	"testing"
	"time"

	"livestock-registry/internal/domain/growth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasurementLog_AppendAndList(t *testing.T) {
	log := NewMeasurementLog()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, log.Append(ctx, growth.Measurement{AnimalID: "a", Timestamp: now, Source: "second"}))
	require.NoError(t, log.Append(ctx, growth.Measurement{AnimalID: "a", Timestamp: now.Add(-time.Hour), Source: "first"}))
	require.Error(t, log.Append(ctx, growth.Measurement{}))

	ms, err := log.ListByAnimal(ctx, "a")
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "second", ms[0].Source, "orden de llegada")

	ms[0].Source = "mutated"
	again, _ := log.ListByAnimal(ctx, "a")
	assert.Equal(t, "second", again[0].Source)

	empty, err := log.ListByAnimal(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
