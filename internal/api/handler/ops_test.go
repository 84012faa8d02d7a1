package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomy/roomy/internal/api/models"
	"github.com/roomy/roomy/internal/provider/resilience"
)

func TestOpsHandler_SystemStatus(t *testing.T) {
	providers := resilience.NewRegistry()
	providers.Register("ors-directions", resilience.NewClient(resilience.DefaultClientConfig("ors-directions")))
	providers.Register("mapbox-geocoding", resilience.NewClient(resilience.DefaultClientConfig("mapbox-geocoding")))
	providers.RecordFailure("ors-directions", errors.New("upstream 503"))

	tests := []struct {
		name       string
		checkErr   error
		wantStatus models.HealthStatus
	}{
		{name: "healthy", wantStatus: models.HealthStatusOK},
		{name: "database down", checkErr: errors.New("dial tcp: refused"), wantStatus: models.HealthStatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOpsHandler(OpsConfig{
				Version:   "1.2.3",
				Providers: providers,
				Checks: []ReadinessCheck{
					{Name: "database", Check: func(context.Context) error { return tt.checkErr }},
				},
			})

			w := httptest.NewRecorder()
			h.SystemStatus(w, httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody))
			require.Equal(t, http.StatusOK, w.Code)

			var status models.SystemStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.wantStatus, status.Status)

			require.Len(t, status.Providers, 2)
			assert.Equal(t, "mapbox-geocoding", status.Providers[0].Provider)
			assert.Equal(t, "ors-directions", status.Providers[1].Provider)
			require.NotNil(t, status.Providers[1].Message)
			assert.Equal(t, "upstream 503", *status.Providers[1].Message)
			assert.NotNil(t, status.Providers[1].LastFailureAt)
		})
	}
}

func TestOpsHandler_ReadinessCheckTimesOut(t *testing.T) {
	h := NewOpsHandler(OpsConfig{
		Checks: []ReadinessCheck{{
			Name: "database",
			Check: func(ctx context.Context) error {
				deadline, ok := ctx.Deadline()
				if !ok || time.Until(deadline) > readinessTimeout {
					return errors.New("no deadline")
				}
				return nil
			},
		}},
	})

	w := httptest.NewRecorder()
	h.ReadinessCheck(w, httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOpsHandler_SystemStatusWithoutProviders(t *testing.T) {
	h := NewOpsHandler(OpsConfig{})

	w := httptest.NewRecorder()
	h.SystemStatus(w, httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody))

	assert.JSONEq(t, `[]`, string(mustField(t, w.Body.Bytes(), "providers")))
}

func mustField(t *testing.T, body []byte, field string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	raw, ok := m[field]
	require.True(t, ok, "missing field %q", field)
	return raw
}
