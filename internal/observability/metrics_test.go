package observability

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, name string) float64 {
	t.Helper()

	metric := &dto.Metric{}
	switch name {
	case "session":
		require.NoError(t, sessionWriteGauge.Write(metric))
	case "exercise":
		require.NoError(t, exerciseWriteGauge.Write(metric))
	}
	return metric.GetGauge().GetValue()
}

func counterValue(t *testing.T, entity, op string) float64 {
	t.Helper()

	metric := &dto.Metric{}
	counter, err := storeOpsCounter.GetMetricWithLabelValues(entity, op)
	require.NoError(t, err)
	require.NoError(t, counter.Write(metric))
	return metric.GetCounter().GetValue()
}

func TestRecordSessionWriteAdvancesWatermark(t *testing.T) {
	before := counterValue(t, "session", "create")
	ts := time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)

	RecordSessionWrite("create", ts)

	require.Equal(t, before+1, counterValue(t, "session", "create"))
	require.Equal(t, float64(ts.Unix()), gaugeValue(t, "session"))
}

func TestRecordExerciseWriteIgnoresZeroTimestamp(t *testing.T) {
	ts := time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
	RecordExerciseWrite("create", ts)
	require.Equal(t, float64(ts.Unix()), gaugeValue(t, "exercise"))

	before := counterValue(t, "exercise", "delete")
	RecordExerciseWrite("delete", time.Time{})

	require.Equal(t, before+1, counterValue(t, "exercise", "delete"), "zero timestamp still counts the operation")
	require.Equal(t, float64(ts.Unix()), gaugeValue(t, "exercise"), "zero timestamp leaves the watermark alone")
}
