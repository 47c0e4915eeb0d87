package http

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

	"github.com/levelup-fitness/levelup-core/internal/application/query"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

type stubReader struct {
	lastStats query.StatsQuery
	err       error
}

func (r *stubReader) Dashboard(context.Context) (*query.DashboardResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &query.DashboardResult{Username: "Rookie", DayKey: "2024-03-01", SessionsPerDay: 10}, nil
}

func (r *stubReader) Stats(_ context.Context, q query.StatsQuery) (*query.StatsResult, error) {
	r.lastStats = q
	return &query.StatsResult{TotalSessions: 3}, r.err
}

func newTestServer(deps Dependencies) http.Handler {
	deps.Logger = logger.Discard()
	return NewServer(DefaultConfig(), deps).Handler()
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestLiveness(t *testing.T) {
	rec := do(t, newTestServer(Dependencies{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}

func TestReadiness(t *testing.T) {
	hc := NewHealthChecker("test")
	hc.AddCheck("storage", func(context.Context) error { return nil })
	h := newTestServer(Dependencies{Health: hc})

	rec := do(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	hc.AddCheck("redis", func(context.Context) error { return errors.New("connection refused") })
	rec = do(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Healthy)
	assert.Equal(t, "failing: redis", status.Message)
	assert.True(t, status.Checks["storage"].Healthy)
	assert.Equal(t, "connection refused", status.Checks["redis"].Message)
}

func TestHealthChecker_Timeout(t *testing.T) {
	hc := NewHealthChecker("test")
	hc.SetTimeout(10 * time.Millisecond)
	hc.AddCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	status := hc.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.Equal(t, context.DeadlineExceeded.Error(), status.Checks["slow"].Message)
}

func TestHealthChecker_NoChecks(t *testing.T) {
	status := NewHealthChecker("v1").Check(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, "v1", status.Version)
}

func TestViews(t *testing.T) {
	reader := &stubReader{}
	h := newTestServer(Dependencies{Reader: reader})

	rec := do(t, h, "/v1/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	var dash query.DashboardResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, "2024-03-01", dash.DayKey)

	rec = do(t, h, "/v1/stats?days=30")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, reader.lastStats.HistoryDays)

	rec = do(t, h, "/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, query.DefaultHistoryDays, reader.lastStats.HistoryDays)

	rec = do(t, h, "/v1/stats?days=week")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestViews_ReaderError(t *testing.T) {
	h := newTestServer(Dependencies{Reader: &stubReader{err: errors.New("disk gone")}})
	rec := do(t, h, "/v1/dashboard")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"dashboard unavailable"}`, rec.Body.String())
}

func TestRoutesDisabledWithoutDeps(t *testing.T) {
	h := newTestServer(Dependencies{})
	assert.Equal(t, http.StatusNotFound, do(t, h, "/metrics").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "/v1/dashboard").Code)
}

func TestRecovery(t *testing.T) {
	s := NewServer(DefaultConfig(), Dependencies{Logger: logger.Discard()})
	s.router.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	rec := do(t, s.Handler(), "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
