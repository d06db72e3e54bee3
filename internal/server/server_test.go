package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"habitd/internal/auth"
	"habitd/internal/models"
	"habitd/internal/progress"
	"habitd/internal/storage/sqlite"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T, staticDir string) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "server.db"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	authSvc := auth.NewService(store, auth.NewTokens("test-secret", time.Hour), logger, auth.WithBcryptCost(bcrypt.MinCost))
	return &testServer{t: t, handler: New(store, authSvc, logger, staticDir).Engine()}
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func (ts *testServer) register(name, email string) string {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": name, "email": email, "password": "secret1"})
	expectStatus(ts.t, rec, http.StatusCreated)
	return decode[auth.Session](ts.t, rec).Token
}


func TestHealth(t *testing.T) {
	ts := newTestServer(t, "")
	rec := ts.do(http.MethodGet, "/api/healthz", "", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t, "")

	token := ts.register("Ada", "ada@example.com")

	rec := ts.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ada", "email": "ada@example.com", "password": "secret1"})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@example.com", "password": "wrong!!"})
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = ts.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@example.com", "password": "secret1"})
	expectStatus(t, rec, http.StatusOK)
	session := decode[auth.Session](t, rec)
	if session.Token == "" || session.User.Name != "Ada" {
		t.Fatalf("unexpected session: %#v", session)
	}
	if strings.Contains(rec.Body.String(), "passwordHash") || strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}

	rec = ts.do(http.MethodGet, "/api/auth/me", token, nil)
	expectStatus(t, rec, http.StatusOK)
	if me := decode[models.User](t, rec); me.Email != "ada@example.com" {
		t.Fatalf("unexpected me: %#v", me)
	}
}

func TestRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, "")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/habits"},
		{http.MethodPost, "/api/habits"},
		{http.MethodPut, "/api/habits/x/toggle"},
		{http.MethodDelete, "/api/habits/x"},
		{http.MethodGet, "/api/tasks/week/2024-03-10"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodPut, "/api/tasks/x"},
		{http.MethodDelete, "/api/tasks/x"},
		{http.MethodGet, "/api/progress/week/2024-03-10"},
		{http.MethodGet, "/api/auth/me"},
	} {
		rec := ts.do(tc.method, tc.path, "", nil)
		expectStatus(t, rec, http.StatusUnauthorized)
		rec = ts.do(tc.method, tc.path, "garbage", nil)
		expectStatus(t, rec, http.StatusUnauthorized)
	}
}

func TestHabitEndpoints(t *testing.T) {
	ts := newTestServer(t, "")
	token := ts.register("Ada", "ada@example.com")

	rec := ts.do(http.MethodPost, "/api/habits", token, gin.H{"name": "  "})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(http.MethodPost, "/api/habits", token, gin.H{"name": "Read", "targetDays": []string{"Mon", "Wed", "Fri"}})
	expectStatus(t, rec, http.StatusCreated)
	habit := decode[models.Habit](t, rec)
	if habit.ID == "" || len(habit.TargetDays) != 3 {
		t.Fatalf("unexpected habit: %#v", habit)
	}

	rec = ts.do(http.MethodPost, "/api/habits", token, gin.H{"name": "Run"})
	expectStatus(t, rec, http.StatusCreated)
	if run := decode[models.Habit](t, rec); len(run.TargetDays) != 7 {
		t.Fatalf("expected default target days, got %v", run.TargetDays)
	}

	rec = ts.do(http.MethodGet, "/api/habits", token, nil)
	expectStatus(t, rec, http.StatusOK)
	list := decode[[]models.Habit](t, rec)
	if len(list) != 2 || list[0].Name != "Run" {
		t.Fatalf("expected newest first, got %#v", list)
	}

	togglePath := "/api/habits/" + habit.ID + "/toggle"
	rec = ts.do(http.MethodPut, togglePath, token, gin.H{"date": "2024-03-11T08:00:00Z"})
	expectStatus(t, rec, http.StatusOK)
	if toggled := decode[models.Habit](t, rec); len(toggled.CompletedDates) != 1 {
		t.Fatalf("expected one completion, got %v", toggled.CompletedDates)
	}

	rec = ts.do(http.MethodGet, "/api/progress/week/2024-03-13", token, nil)
	expectStatus(t, rec, http.StatusOK)
	summary := decode[progress.WeekSummary](t, rec)
	for _, h := range summary.Habits {
		if h.ID == habit.ID && h.Progress != 14 {
			t.Fatalf("expected 14%% weekly progress, got %d", h.Progress)
		}
	}

	rec = ts.do(http.MethodPut, togglePath, token, gin.H{"date": "2024-03-11T21:00:00Z"})
	expectStatus(t, rec, http.StatusOK)
	if toggled := decode[models.Habit](t, rec); len(toggled.CompletedDates) != 0 {
		t.Fatalf("expected toggle to undo, got %v", toggled.CompletedDates)
	}

	rec = ts.do(http.MethodPut, togglePath, token, gin.H{})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(http.MethodDelete, "/api/habits/"+habit.ID, token, nil)
	expectStatus(t, rec, http.StatusOK)
	if msg := decode[gin.H](t, rec); msg["message"] != "Habit deleted" {
		t.Fatalf("unexpected delete body: %v", msg)
	}

	rec = ts.do(http.MethodDelete, "/api/habits/"+habit.ID, token, nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestTaskEndpoints(t *testing.T) {
	ts := newTestServer(t, "")
	token := ts.register("Ada", "ada@example.com")

	rec := ts.do(http.MethodPost, "/api/tasks", token, gin.H{"taskName": "No date"})
	expectStatus(t, rec, http.StatusBadRequest)

	var created []models.Task
	for _, date := range []string{"2024-03-16", "2024-03-14", "2024-03-17", "2024-03-09"} {
		rec = ts.do(http.MethodPost, "/api/tasks", token, gin.H{"date": date, "taskName": "Task " + date})
		expectStatus(t, rec, http.StatusCreated)
		created = append(created, decode[models.Task](t, rec))
	}
	if created[1].DayOfWeek != "Thursday" || created[1].Category != "general" || created[1].Completed {
		t.Fatalf("unexpected task: %#v", created[1])
	}

	rec = ts.do(http.MethodGet, "/api/tasks/week/2024-03-10", token, nil)
	expectStatus(t, rec, http.StatusOK)
	week := decode[[]models.Task](t, rec)
	if len(week) != 2 || models.DayKey(week[0].Date) != "2024-03-14" || models.DayKey(week[1].Date) != "2024-03-16" {
		t.Fatalf("unexpected week: %#v", week)
	}

	rec = ts.do(http.MethodGet, "/api/tasks/week/not-a-date", token, nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(http.MethodPut, "/api/tasks/"+created[1].ID, token, gin.H{})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(http.MethodPut, "/api/tasks/"+created[1].ID, token, gin.H{"completed": true})
	expectStatus(t, rec, http.StatusOK)
	if updated := decode[models.Task](t, rec); !updated.Completed || updated.TaskName != created[1].TaskName {
		t.Fatalf("unexpected update: %#v", updated)
	}

	rec = ts.do(http.MethodDelete, "/api/tasks/"+created[0].ID, token, nil)
	expectStatus(t, rec, http.StatusOK)
	if msg := decode[gin.H](t, rec); msg["message"] != "Task deleted" {
		t.Fatalf("unexpected delete body: %v", msg)
	}
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	ts := newTestServer(t, "")
	owner := ts.register("Owner", "owner@example.com")
	intruder := ts.register("Intruder", "intruder@example.com")

	rec := ts.do(http.MethodPost, "/api/habits", owner, gin.H{"name": "Read"})
	expectStatus(t, rec, http.StatusCreated)
	habit := decode[models.Habit](t, rec)

	rec = ts.do(http.MethodPost, "/api/tasks", owner, gin.H{"date": "2024-03-14", "taskName": "Private"})
	expectStatus(t, rec, http.StatusCreated)
	task := decode[models.Task](t, rec)

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodPut, "/api/habits/" + habit.ID + "/toggle", gin.H{"date": "2024-03-14"}},
		{http.MethodDelete, "/api/habits/" + habit.ID, nil},
		{http.MethodPut, "/api/tasks/" + task.ID, gin.H{"completed": true}},
		{http.MethodDelete, "/api/tasks/" + task.ID, nil},
	} {
		rec := ts.do(tc.method, tc.path, intruder, tc.body)
		expectStatus(t, rec, http.StatusNotFound)
	}

	rec = ts.do(http.MethodGet, "/api/habits", intruder, nil)
	expectStatus(t, rec, http.StatusOK)
	if list := decode[[]models.Habit](t, rec); len(list) != 0 {
		t.Fatalf("intruder sees habits: %#v", list)
	}
	rec = ts.do(http.MethodGet, "/api/tasks/week/2024-03-10", intruder, nil)
	expectStatus(t, rec, http.StatusOK)
	if list := decode[[]models.Task](t, rec); len(list) != 0 {
		t.Fatalf("intruder sees tasks: %#v", list)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, "")
	ts.do(http.MethodGet, "/api/healthz", "", nil)
	ts.do(http.MethodGet, "/api/habits", "", nil)

	rec := ts.do(http.MethodGet, "/metrics", "", nil)
	expectStatus(t, rec, http.StatusOK)
	body := rec.Body.String()
	if !strings.Contains(body, `habitd_http_requests_total{method="GET",route="/api/habits",status="401"} 1`) {
		t.Fatalf("missing request counter in:\n%s", body)
	}
	if !strings.Contains(body, "habitd_http_request_duration_seconds") {
		t.Fatalf("missing duration histogram in:\n%s", body)
	}
}

func TestUnknownAPIPathReturnsJSON404(t *testing.T) {
	ts := newTestServer(t, "")
	rec := ts.do(http.MethodGet, "/api/nope", "", nil)
	expectStatus(t, rec, http.StatusNotFound)
	if msg := decode[gin.H](t, rec); msg["message"] != "endpoint not found" {
		t.Fatalf("unexpected body: %v", msg)
	}
}

func TestStaticDashboardFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>dashboard</html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	ts := newTestServer(t, dir)

	for _, path := range []string{"/", "/week/2024-03-10"} {
		rec := ts.do(http.MethodGet, path, "", nil)
		expectStatus(t, rec, http.StatusOK)
		if !strings.Contains(rec.Body.String(), "dashboard") {
			t.Fatalf("%s: expected index.html, got %q", path, rec.Body.String())
		}
	}

	rec := ts.do(http.MethodGet, "/api/missing", "", nil)
	expectStatus(t, rec, http.StatusNotFound)
}
