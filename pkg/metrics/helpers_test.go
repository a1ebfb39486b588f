package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCounter(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := NewCounter(registry, "test_total", "Test counter")

	counter.Inc()
	counter.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(counter))
}

func TestNewCounterVec(t *testing.T) {
	registry := prometheus.NewRegistry()
	vec := NewCounterVec(registry, "test_by_status_total", "Test counter vec", []string{"status"})

	vec.WithLabelValues("success").Inc()
	vec.WithLabelValues("success").Inc()
	vec.WithLabelValues("failure").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(vec.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(vec.WithLabelValues("failure")))
}

func TestNewGauge(t *testing.T) {
	registry := prometheus.NewRegistry()
	gauge := NewGauge(registry, "test_gauge", "Test gauge")

	gauge.Set(42)
	assert.Equal(t, 42.0, testutil.ToFloat64(gauge))

	gauge.Dec()
	assert.Equal(t, 41.0, testutil.ToFloat64(gauge))
}

func TestNewHistogramWithBuckets(t *testing.T) {
	registry := prometheus.NewRegistry()
	histogram := NewHistogramWithBuckets(registry, "test_duration_seconds", "Test histogram", DurationBuckets())

	histogram.Observe(0.02)
	histogram.Observe(0.3)

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "test_duration_seconds", families[0].GetName())
	assert.Equal(t, uint64(2), families[0].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestDurationBuckets(t *testing.T) {
	buckets := DurationBuckets()

	require.NotEmpty(t, buckets)
	for i := 1; i < len(buckets); i++ {
		assert.Greater(t, buckets[i], buckets[i-1], "buckets must be strictly increasing")
	}
	assert.Equal(t, 0.01, buckets[0])
	assert.Equal(t, 10.0, buckets[len(buckets)-1])
}

func TestRegistryIsolation(t *testing.T) {
	// Two registries must not share metric state.
	registry1 := prometheus.NewRegistry()
	registry2 := prometheus.NewRegistry()

	counter1 := NewCounter(registry1, "shared_name_total", "Counter in registry 1")
	counter2 := NewCounter(registry2, "shared_name_total", "Counter in registry 2")

	counter1.Add(10)
	counter2.Add(3)

	assert.Equal(t, 10.0, testutil.ToFloat64(counter1))
	assert.Equal(t, 3.0, testutil.ToFloat64(counter2))
}
