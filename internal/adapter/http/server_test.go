package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/openfield-comfort/internal/adapter/http"
	"github.com/couchcryptid/openfield-comfort/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type comfortProbe struct {
	err error
}

func (c comfortProbe) CheckReadiness(_ context.Context) error { return c.err }

type fixedProgress domain.BatchProgress

func (p fixedProgress) Progress() domain.BatchProgress { return domain.BatchProgress(p) }

var started = fixedProgress{
	RunID:     "3f1c2a9e-run",
	Completed: 3,
	Total:     16,
	StartedAt: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
}

func get(t *testing.T, srv http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestProbes(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		comfortErr error
		wantCode   int
		wantBody   map[string]string
	}{
		{
			name:     "liveness",
			path:     "/healthz",
			wantCode: http.StatusOK,
			wantBody: map[string]string{"status": "healthy"},
		},
		{
			name:     "comfort service reachable",
			path:     "/readyz",
			wantCode: http.StatusOK,
			wantBody: map[string]string{"status": "ready"},
		},
		{
			name:       "comfort service down",
			path:       "/readyz",
			comfortErr: errors.New("comfort API error: status 503"),
			wantCode:   http.StatusServiceUnavailable,
			wantBody:   map[string]string{"status": "not ready", "error": "comfort API error: status 503"},
		},
		{
			name:       "liveness ignores comfort service",
			path:       "/healthz",
			comfortErr: errors.New("connection refused"),
			wantCode:   http.StatusOK,
			wantBody:   map[string]string{"status": "healthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httpadapter.NewServer(":0", comfortProbe{err: tt.comfortErr}, started, slog.Default())

			rec := get(t, srv, tt.path)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			for k, v := range tt.wantBody {
				assert.Equal(t, v, body[k], k)
			}
		})
	}
}

type countingProbe struct {
	err   error
	calls int
}

func (c *countingProbe) CheckReadiness(_ context.Context) error {
	c.calls++
	return c.err
}

func TestReadyz_ComfortServiceAndFirstScenario(t *testing.T) {
	tests := []struct {
		name        string
		comfortErr  error
		scenarioErr error
		wantCode    int
		wantError   string
		wantBatch   int
	}{
		{name: "both ready", wantCode: http.StatusOK, wantBatch: 1},
		{
			name:        "no scenario computed yet",
			scenarioErr: errors.New("no scenario has been computed yet"),
			wantCode:    http.StatusServiceUnavailable,
			wantError:   "no scenario has been computed yet",
			wantBatch:   1,
		},
		{
			name:       "comfort service down",
			comfortErr: errors.New("comfort API error: status 503"),
			wantCode:   http.StatusServiceUnavailable,
			wantError:  "comfort API error: status 503",
			wantBatch:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := &countingProbe{err: tt.scenarioErr}
			ready := httpadapter.AllReady(comfortProbe{err: tt.comfortErr}, batch)
			srv := httpadapter.NewServer(":0", ready, started, slog.Default())

			rec := get(t, srv, "/readyz")

			assert.Equal(t, tt.wantCode, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body["error"])
			assert.Equal(t, tt.wantBatch, batch.calls)
		})
	}
}

func TestBatchProgress(t *testing.T) {
	srv := httpadapter.NewServer(":0", comfortProbe{}, started, slog.Default())

	rec := get(t, srv, "/v1/batch")

	require.Equal(t, http.StatusOK, rec.Code)
	var body domain.BatchProgress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, started.RunID, body.RunID)
	assert.Equal(t, 3, body.Completed)
	assert.Equal(t, 16, body.Total)
	assert.True(t, started.StartedAt.Equal(body.StartedAt))
	assert.False(t, body.Done)
}

func TestBatchProgress_NotStarted(t *testing.T) {
	srv := httpadapter.NewServer(":0", comfortProbe{}, fixedProgress{}, slog.Default())

	rec := get(t, srv, "/v1/batch")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no batch started")
}

func TestBatchProgress_RejectsPost(t *testing.T) {
	srv := httpadapter.NewServer(":0", comfortProbe{}, started, slog.Default())
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/batch", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := httpadapter.NewServer(":0", comfortProbe{}, started, slog.Default())

	rec := get(t, srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
