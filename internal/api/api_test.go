package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/rehabtracker/internal"
	"github.com/yourname/rehabtracker/internal/auth"
	"github.com/yourname/rehabtracker/internal/config"
	"github.com/yourname/rehabtracker/internal/storage"
)

const testPassword = "breathe-easy"

type testServer struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
	now    time.Time
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env:          "development",
		DBType:       "file",
		AuthPassword: testPassword,
		Timezone:     "UTC",
	}
	logger := internal.NewNopLogger()
	store, err := storage.NewFileStorage(filepath.Join(t.TempDir(), "daily_logs.json"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	s := &testServer{t: t, now: time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)}
	app := NewApp(cfg, logger, store, auth.NewSharedSecretProvider(cfg.AuthPassword, cfg.SessionSigningKey, logger),
		WithClock(func() time.Time { return s.now }))
	s.router = NewRouter(app)
	return s
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login() {
	w := s.do(http.MethodPost, "/auth", `{"password":"`+testPassword+`"}`)
	require.Equal(s.t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			s.cookie = c
		}
	}
	require.NotNil(s.t, s.cookie)
}

type envelope struct {
	Data  json.RawMessage    `json:"data"`
	Meta  map[string]any     `json:"meta"`
	Error *internal.AppError `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil && env.Data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestLogin(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/auth", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Invalid password"}`, w.Body.String())
	assert.Empty(t, w.Result().Cookies())

	w = s.do(http.MethodPost, "/auth", `{"password":"`+testPassword+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestLogoutClearsCookie(t *testing.T) {
	s := setupServer(t)
	s.login()

	w := s.do(http.MethodDelete, "/auth", "")
	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

// The app clock is far from the wall clock; sessions must follow it.
func TestSessionFollowsAppClock(t *testing.T) {
	s := setupServer(t)
	s.login()
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/logs", "").Code)

	s.now = s.now.AddDate(0, 0, 1)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/logs", "").Code)

	s.now = s.now.AddDate(0, 0, 366)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/logs", "").Code)
}

func TestLogsRequireSession(t *testing.T) {
	s := setupServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/logs"},
		{http.MethodPost, "/logs"},
		{http.MethodDelete, "/logs?date=2024-01-01"},
		{http.MethodPost, "/logs/quick-fill"},
		{http.MethodGet, "/dashboard"},
		{http.MethodGet, "/progress"},
		{http.MethodGet, "/exercises"},
	} {
		w := s.do(tc.method, tc.path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", "").Code)
}

func TestPostAndGetLogs(t *testing.T) {
	s := setupServer(t)
	s.login()

	w := s.do(http.MethodPost, "/logs", `{"date":"2024-01-08","resting_o2_sat":94,"exercises":{"bicep_curls":{"done":true}}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/logs", `{"date":"2024-01-08","rowing_duration":12}`)
	require.Equal(t, http.StatusOK, w.Code)

	var saved internal.DailyLog
	decode(t, w, &saved)
	assert.Equal(t, 94, *saved.RestingO2Sat)
	assert.Equal(t, 12, *saved.RowingDuration)
	assert.True(t, saved.Exercise(internal.BicepCurls).Done)

	w = s.do(http.MethodPost, "/logs", `{"date":"2024-01-09","notes":"short walk"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var logs []internal.DailyLog
	env := decode(t, s.do(http.MethodGet, "/logs", ""), &logs)
	require.Len(t, logs, 2)
	assert.Equal(t, "2024-01-09", logs[0].Date)
	assert.Equal(t, float64(2), env.Meta["count"])

	logs = nil
	decode(t, s.do(http.MethodGet, "/logs?startDate=2024-01-08&endDate=2024-01-08", ""), &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, "2024-01-08", logs[0].Date)
}

func TestPostLogValidation(t *testing.T) {
	s := setupServer(t)
	s.login()

	for _, body := range []string{
		`{"notes":"no date"}`,
		`{"date":"tomorrow"}`,
		`{"date":"2024-01-01","exercises":{"jumping_jacks":{"done":true}}}`,
		`{"date":"2024-01-01","resting_hr":"seventy"}`,
		`not json`,
	} {
		w := s.do(http.MethodPost, "/logs", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		env := decode(t, w, nil)
		require.NotNil(t, env.Error, body)
		assert.Equal(t, http.StatusBadRequest, env.Error.Code)
	}

	var logs []internal.DailyLog
	decode(t, s.do(http.MethodGet, "/logs", ""), &logs)
	assert.Empty(t, logs)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/logs?startDate=bad", "").Code)
}

func TestDeleteLog(t *testing.T) {
	s := setupServer(t)
	s.login()
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/logs", `{"date":"2024-01-08"}`).Code)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/logs", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/logs?date=someday", "").Code)

	var deleted struct {
		Date    string `json:"date"`
		Deleted bool   `json:"deleted"`
	}
	w := s.do(http.MethodDelete, "/logs?date=2024-01-08T20:15:00Z", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &deleted)
	assert.Equal(t, "2024-01-08", deleted.Date)
	assert.True(t, deleted.Deleted)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/logs?date=2024-01-08", "").Code)
}

type quickFillBody struct {
	Log        internal.DailyLog `json:"log"`
	Prefilled  bool              `json:"prefilled"`
	SourceDate string            `json:"source_date"`
}

func TestQuickFillWithoutHistory(t *testing.T) {
	s := setupServer(t)
	s.login()

	var res quickFillBody
	w := s.do(http.MethodPost, "/logs/quick-fill", `{"date":"2024-01-09"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decode(t, w, &res)
	require.NotNil(t, env.Error)
	assert.Equal(t, http.StatusNotFound, env.Error.Code)
	assert.Equal(t, "No previous workout to copy from", env.Error.Message)
	assert.False(t, res.Prefilled)
	assert.Empty(t, res.SourceDate)
	assert.Equal(t, "2024-01-09", res.Log.Date)
	assert.Nil(t, res.Log.RestingO2Sat)
	assert.False(t, res.Log.IsComplete())

	// Nothing was written.
	var logs []internal.DailyLog
	decode(t, s.do(http.MethodGet, "/logs", ""), &logs)
	assert.Empty(t, logs)
}

func TestQuickFill(t *testing.T) {
	s := setupServer(t)
	s.login()

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/logs", `{"date":"2024-01-08","resting_o2_sat":95,"resting_hr":68,"rowing_duration":10}`).Code)

	// Defaults to the app's current date, 2024-01-10.
	var res quickFillBody
	w := s.do(http.MethodPost, "/logs/quick-fill", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &res)
	assert.True(t, res.Prefilled)
	assert.Equal(t, "2024-01-08", res.SourceDate)
	assert.Equal(t, "2024-01-10", res.Log.Date)
	assert.Equal(t, 95, *res.Log.RestingO2Sat)
	assert.Nil(t, res.Log.RowingDuration)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/logs/quick-fill", `{"date":"soon"}`).Code)
}

func TestDashboardAndProgress(t *testing.T) {
	s := setupServer(t)
	s.login()
	complete := `{"resting_o2_sat":94,"rowing_duration":10,"exercises":{"seated_marching":{"done":true},"bicep_curls":{"done":true}}}`
	for _, d := range []string{"2024-01-08", "2024-01-09"} {
		body := `{"date":"` + d + `",` + complete[1:]
		require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/logs", body).Code)
	}

	var week struct {
		Today         string `json:"today"`
		TodayStatus   string `json:"today_status"`
		CompletedDays int    `json:"completed_days"`
		Streak        int    `json:"streak"`
		Days          []any  `json:"days"`
	}
	w := s.do(http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &week)
	assert.Equal(t, "2024-01-10", week.Today)
	assert.Equal(t, "none", week.TodayStatus)
	assert.Equal(t, 2, week.CompletedDays)
	assert.Equal(t, 2, week.Streak)
	assert.Len(t, week.Days, 7)

	var progress struct {
		Streak         int `json:"streak"`
		TotalCompleted int `json:"total_completed"`
		Calendar       struct {
			Month string `json:"month"`
		} `json:"calendar"`
		Trend []any `json:"trend"`
	}
	w = s.do(http.MethodGet, "/progress?month=2024-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &progress)
	assert.Equal(t, 2, progress.Streak)
	assert.Equal(t, 2, progress.TotalCompleted)
	assert.Equal(t, "2024-01", progress.Calendar.Month)
	assert.Len(t, progress.Trend, 2)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/progress?month=January", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/dashboard?today=x", "").Code)
}

func TestExercises(t *testing.T) {
	s := setupServer(t)
	s.login()

	var exercises []struct {
		ID string `json:"id"`
	}
	w := s.do(http.MethodGet, "/exercises", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &exercises)
	assert.NotEmpty(t, exercises)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, StatusFor(internal.ErrUnauthorized))
	assert.Equal(t, http.StatusBadRequest, StatusFor(internal.ErrValidation))
	assert.Equal(t, http.StatusNotFound, StatusFor(internal.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(assert.AnError))
}
