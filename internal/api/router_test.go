package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/mag7-collector/internal/api/handlers"
	"github.com/wonny/mag7-collector/internal/api/stream"
	"github.com/wonny/mag7-collector/internal/collector"
	"github.com/wonny/mag7-collector/internal/contracts"
	"github.com/wonny/mag7-collector/internal/scheduler"
	"github.com/wonny/mag7-collector/internal/tradingday"
	"github.com/wonny/mag7-collector/pkg/database"
	"github.com/wonny/mag7-collector/pkg/logger"
)

type fakeTrigger struct {
	resp     contracts.Response
	payloads []string
	started  chan struct{}
	release  chan struct{}
}

func (f *fakeTrigger) Handle(ctx context.Context, payload []byte) contracts.Response {
	f.payloads = append(f.payloads, string(payload))
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.resp
}

type fakeDB struct {
	err error
}

func (f fakeDB) HealthCheck(ctx context.Context) (*database.HealthStatus, error) {
	status := &database.HealthStatus{Healthy: f.err == nil, Timestamp: time.Now()}
	if f.err != nil {
		status.Error = f.err.Error()
	}
	return status, f.err
}

type fakeJobs struct{}

func (fakeJobs) Stats() map[string]scheduler.JobStats {
	return map[string]scheduler.JobStats{
		"market_data_collection": {JobName: "market_data_collection", Schedule: "0 0 6 * * TUE-SAT", TotalRuns: 1, SuccessCount: 1, SuccessRate: 1},
	}
}

func (fakeJobs) History(name string) (*scheduler.JobHistory, error) {
	if name != "market_data_collection" {
		return nil, errors.New("job not found: " + name)
	}
	return &scheduler.JobHistory{Results: []scheduler.JobResult{{JobName: name, Success: true}}}, nil
}

func newTestRouter(trigger handlers.Trigger, db handlers.DBChecker, withJobs bool) http.Handler {
	resolver := tradingday.NewResolver(time.UTC, func() time.Time {
		return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	})

	h := Handlers{
		Collect: handlers.NewCollectHandler(collector.NewRunGate(trigger), resolver, logger.Nop()),
		Health:  handlers.NewHealthHandler("mag7-collector", db),
	}
	if withJobs {
		h.Jobs = handlers.NewJobsHandler(fakeJobs{})
	}
	return NewRouter(h, logger.Nop())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_CollectSuccess(t *testing.T) {
	trigger := &fakeTrigger{resp: contracts.Response{
		StatusCode: http.StatusOK,
		Body:       contracts.SuccessBody{Message: "Data successfully collected", StorageKey: "raw/magnificent7/trading_date=2024-01-09/market_data.json"},
	}}
	router := newTestRouter(trigger, nil, false)

	req := httptest.NewRequest(http.MethodPost, "/api/collect", strings.NewReader(`{"trading_date":"2024-01-09"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, []string{`{"trading_date":"2024-01-09"}`}, trigger.payloads)

	body := decode(t, rec)
	assert.Equal(t, float64(200), body["statusCode"])
	inner := body["body"].(map[string]interface{})
	assert.Equal(t, "raw/magnificent7/trading_date=2024-01-09/market_data.json", inner["storage_key"])
}

func TestRouter_CollectFailureStatus(t *testing.T) {
	trigger := &fakeTrigger{resp: contracts.Response{
		StatusCode: http.StatusInternalServerError,
		Body:       contracts.ErrorBody{Error: "boom"},
	}}
	router := newTestRouter(trigger, nil, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/collect", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	inner := body["body"].(map[string]interface{})
	assert.Equal(t, "boom", inner["error"])
	assert.Nil(t, inner["trading_date"])
}

func TestRouter_CollectRejectsConcurrentRun(t *testing.T) {
	trigger := &fakeTrigger{
		resp:    contracts.Response{StatusCode: http.StatusOK},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	router := newTestRouter(trigger, nil, false)

	done := make(chan int)
	go func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/collect", nil))
		done <- rec.Code
	}()

	<-trigger.started

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/collect", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(trigger.release)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestRouter_CollectPayloadTooLarge(t *testing.T) {
	trigger := &fakeTrigger{resp: contracts.Response{StatusCode: http.StatusOK}}
	router := newTestRouter(trigger, nil, false)

	big := strings.Repeat("x", 64<<10+1)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/collect", strings.NewReader(big)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, trigger.payloads)
}

func TestRouter_CollectMethodNotAllowed(t *testing.T) {
	router := newTestRouter(&fakeTrigger{}, nil, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/collect", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_TradingDate(t *testing.T) {
	router := newTestRouter(&fakeTrigger{}, nil, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trading-date", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-09", decode(t, rec)["trading_date"])
}

func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name       string
		db         handlers.DBChecker
		wantCode   int
		wantStatus string
	}{
		{"without database", nil, http.StatusOK, "ok"},
		{"healthy database", fakeDB{}, http.StatusOK, "ok"},
		{"database down", fakeDB{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeTrigger{}, tt.db, false)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantStatus, body["status"])
			assert.Equal(t, "mag7-collector", body["service"])
		})
	}
}

func TestRouter_Jobs(t *testing.T) {
	router := newTestRouter(&fakeTrigger{}, nil, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "market_data_collection")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/market_data_collection/history", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Len(t, results, 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/unknown/history", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_JobsDisabled(t *testing.T) {
	router := newTestRouter(&fakeTrigger{}, nil, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec)["error"])
}

func TestRouter_RunStreamThroughMiddleware(t *testing.T) {
	hub := stream.NewHub(logger.Nop())
	defer hub.Close()

	trigger := &fakeTrigger{resp: contracts.Response{
		StatusCode: http.StatusOK,
		Body: contracts.SuccessBody{
			StorageKey: "raw/magnificent7/trading_date=2024-01-09/market_data.json",
			Summary:    contracts.Summary{TradingDate: "2024-01-09"},
		},
	}}
	resolver := tradingday.NewResolver(time.UTC, nil)

	router := NewRouter(Handlers{
		Collect: handlers.NewCollectHandler(stream.Notify(trigger, hub), resolver, logger.Nop()),
		Health:  handlers.NewHealthHandler("mag7-collector", nil),
		Stream:  hub,
	}, logger.Nop())

	srv := httptest.NewServer(router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/runs/stream", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	resp, err := http.Post(srv.URL+"/api/collect", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev stream.RunEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, stream.EventRunCompleted, ev.Type)
	assert.Equal(t, "raw/magnificent7/trading_date=2024-01-09/market_data.json", ev.StorageKey)
}
