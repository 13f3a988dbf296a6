package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/internal/testutil"
	"github.com/hupe1980/planmesh/metrics"
	"github.com/hupe1980/planmesh/orchestrator"
	"github.com/hupe1980/planmesh/router"
	"github.com/hupe1980/planmesh/state"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	agents  *testutil.MockAgents
	states  *state.InMemoryStore
	metrics *metrics.Collector
	server  *Server
}

func newFixture(optFns ...func(o *Options)) *fixture {
	f := &fixture{
		agents:  testutil.NewMockAgents(),
		states:  state.NewInMemoryStore(),
		metrics: metrics.New(),
	}
	now := func() time.Time { return time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC) }
	r := router.New(f.agents.Agents(), func(o *router.Options) { o.Now = now })
	orch := orchestrator.New(r)
	f.server = New(orch, f.states, append([]func(o *Options){func(o *Options) {
		o.MetricsHandler = f.metrics.Handler()
		o.Observer = f.metrics
	}}, optFns...)...)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	f := newFixture()
	rec := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestMessageAndSessionLifecycle(t *testing.T) {
	f := newFixture()
	f.agents.Meal.On("GenerateMealPlan", mock.Anything, "u1", 3, mock.Anything).
		Return(testutil.MealPlan("u1", 3, 2), nil)

	rec := f.do(t, http.MethodPost, "/v1/messages", `{"user_id":"u1","message":"Plan my meals for 3 days"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[orchestrator.Response](t, rec)
	assert.Equal(t, core.IntentMealPlanning, resp.Intent)
	require.NotEmpty(t, resp.SessionID)
	assert.False(t, resp.RequiresClarification)

	rec = f.do(t, http.MethodGet, "/v1/sessions/"+resp.SessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	sess := decodeBody[core.Session](t, rec)
	assert.Equal(t, "u1", sess.UserID)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, "Plan my meals for 3 days", sess.Messages[0].Content)

	rec = f.do(t, http.MethodGet, "/v1/users/u1/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]core.Session](t, rec), 1)

	rec = f.do(t, http.MethodDelete, "/v1/sessions/"+resp.SessionID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/sessions/"+resp.SessionID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	f.agents.AssertExpectations(t)
}

func TestMessage_Errors(t *testing.T) {
	f := newFixture()

	t.Run("invalid json", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/messages", `{"user_id":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/messages", `{"user_id":"u1","message":"hi","extra":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing user", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/messages", `{"message":"plan meals"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "user_id")
	})

	t.Run("unknown session", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/messages", `{"user_id":"u1","message":"plan meals","session_id":"nope"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("ambiguous", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/messages", `{"user_id":"u1","message":"hello there"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[orchestrator.Response](t, rec)
		assert.True(t, resp.RequiresClarification)
		assert.Equal(t, orchestrator.ClarificationText, resp.Response)
	})
}

func TestMessage_BodyLimit(t *testing.T) {
	f := newFixture(func(o *Options) { o.MaxBodyBytes = 16 })
	rec := f.do(t, http.MethodPost, "/v1/messages", `{"user_id":"u1","message":"plan my meals for the week"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskEndpoints(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPut, "/v1/tasks/t1", `{"user_id":"u1","agent_type":"meal","current_step":1,"total_steps":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decodeBody[core.TaskState](t, rec)
	assert.Equal(t, "t1", saved.TaskID)
	assert.False(t, saved.SavedAt.IsZero())

	rec = f.do(t, http.MethodGet, "/v1/users/u1/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decodeBody[[]core.IndexEntry](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, core.TaskPaused, entries[0].Status)

	rec = f.do(t, http.MethodPut, "/v1/tasks/t1/status", `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.TaskCompleted, decodeBody[core.TaskState](t, rec).Status)

	rec = f.do(t, http.MethodPut, "/v1/tasks/t1/status", `{"status":"sleeping"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/v1/tasks/missing/status", `{"status":"completed"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPut, "/v1/tasks/t2", `{"current_step":1,"total_steps":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/v1/tasks/t1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/tasks/t1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/users/u1/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture()
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", "").Code)
	require.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/nope", "").Code)

	rec := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `planmesh_http_requests_total{code="200",method="GET",route="GET /healthz"} 1`)
	assert.Contains(t, body, `route="unmatched"`)
}
