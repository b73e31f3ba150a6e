package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp 10.0.0.5:5432: connection refused") }

	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no checks",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "all healthy",
			checks:     map[string]HealthCheck{"postgres": ok, "redis": ok},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok","checks":{"postgres":"ok","redis":"ok"}}`,
		},
		{
			name:       "database down",
			checks:     map[string]HealthCheck{"postgres": down, "redis": ok},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"degraded","checks":{"postgres":"unavailable","redis":"ok"}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandler(tc.checks, testLogger())
			rec := httptest.NewRecorder()

			h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "10.0.0.5")
		})
	}
}
