package resilience_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomy/roomy/internal/provider/resilience"
)

func newRegisteredClient(registry *resilience.Registry, name string) *resilience.Client {
	cfg := resilience.DefaultClientConfig(name)
	cfg.Registry = registry
	return resilience.NewClient(cfg)
}

func TestRegistry_ClientRegistersItself(t *testing.T) {
	registry := resilience.NewRegistry()
	client := newRegisteredClient(registry, "mapbox-directions")

	health, ok := registry.Health("mapbox-directions")
	require.True(t, ok)
	assert.Equal(t, "mapbox-directions", health.Name)
	assert.Equal(t, gobreaker.StateClosed, health.CircuitState)
	assert.True(t, health.IsHealthy())
	assert.Nil(t, health.LastSuccessAt)
	assert.Nil(t, health.LastFailureAt)
	assert.Equal(t, "mapbox-directions", client.Name())
}

func TestRegistry_RecordSuccessAndFailure(t *testing.T) {
	registry := resilience.NewRegistry()
	_ = newRegisteredClient(registry, "ors-geocoding")

	registry.RecordSuccess("ors-geocoding")
	registry.RecordFailure("ors-geocoding", assert.AnError)

	health, ok := registry.Health("ors-geocoding")
	require.True(t, ok)
	require.NotNil(t, health.LastSuccessAt)
	require.NotNil(t, health.LastFailureAt)
	assert.WithinDuration(t, time.Now(), *health.LastFailureAt, time.Second)
	assert.Equal(t, assert.AnError.Error(), health.LastError)
}

func TestRegistry_UnknownProvider(t *testing.T) {
	registry := resilience.NewRegistry()

	assert.NotPanics(t, func() {
		registry.RecordSuccess("nonexistent")
		registry.RecordFailure("nonexistent", assert.AnError)
	})

	_, ok := registry.Health("nonexistent")
	assert.False(t, ok)
	assert.Empty(t, registry.Snapshot())
}

func TestRegistry_SnapshotSortedByName(t *testing.T) {
	registry := resilience.NewRegistry()
	for _, name := range []string{"ors-directions", "mapbox-geocoding", "mapbox-directions"} {
		_ = newRegisteredClient(registry, name)
	}

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "mapbox-directions", snapshot[0].Name)
	assert.Equal(t, "mapbox-geocoding", snapshot[1].Name)
	assert.Equal(t, "ors-directions", snapshot[2].Name)
}

func TestRegistry_SnapshotShowsOpenCircuit(t *testing.T) {
	registry := resilience.NewRegistry()
	cbConfig := resilience.CircuitBreakerConfig{
		Name:        "mapbox-geocoding",
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 1 },
	}
	client := resilience.NewClient(resilience.ClientConfig{
		Name:           "mapbox-geocoding",
		CircuitBreaker: &cbConfig,
		Registry:       registry,
	})

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://127.0.0.1:1", http.NoBody)
	require.NoError(t, err)
	resp, _ := client.Do(req)
	if resp != nil {
		resp.Body.Close()
	}

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 1)
	assert.True(t, snapshot[0].IsUnhealthy())
	assert.NotEmpty(t, snapshot[0].LastError)
}

func TestProviderHealth_States(t *testing.T) {
	tests := []struct {
		state      gobreaker.State
		isHealthy  bool
		isDegraded bool
		isUnhealth bool
	}{
		{gobreaker.StateClosed, true, false, false},
		{gobreaker.StateHalfOpen, false, true, false},
		{gobreaker.StateOpen, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			h := resilience.ProviderHealth{CircuitState: tt.state}
			assert.Equal(t, tt.isHealthy, h.IsHealthy())
			assert.Equal(t, tt.isDegraded, h.IsDegraded())
			assert.Equal(t, tt.isUnhealth, h.IsUnhealthy())
		})
	}
}
