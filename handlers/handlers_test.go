package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolveAPI/internal/lock"
	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/store/sqlite"
	modelCompletion "resolveAPI/internal/types/completion"
	"resolveAPI/internal/types/goal"
	"resolveAPI/internal/types/habit"
	"resolveAPI/internal/types/routine"
	"resolveAPI/middleware"
	"resolveAPI/services"
)

const testUserHeader = "X-Test-User"

type testServer struct {
	router   *mux.Router
	store    *sqlite.Store
	profiles *services.ProfileService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := logger.Nop()
	clock := services.FixedClock(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), time.UTC)
	goals := services.NewGoalService(st, clock, log)
	habits := services.NewHabitService(st, goals, clock, log)
	streaks := services.NewStreakService(st, clock, log)
	notifications := services.NewNotificationService(st, nil, log)
	completions := services.NewCompletionService(st, lock.NewMemory(), goals, streaks, notifications, clock, log)
	routines := services.NewRoutineService(st, clock, log)
	profiles := services.NewProfileService(st, log)

	profileHandler := NewProfileHandler(profiles, log)
	goalHandler := NewGoalHandler(goals, log)
	habitHandler := NewHabitHandler(habits, streaks, clock, log)
	completionHandler := NewCompletionHandler(completions, log)
	routineHandler := NewRoutineHandler(routines, log)
	notificationHandler := NewNotificationHandler(notifications, log)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	// stands in for AuthMiddleware
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := r.Header.Get(testUserHeader); id != "" {
				r = r.WithContext(middleware.WithUserID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	})

	api.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	api.HandleFunc("/profile", profileHandler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/goals", goalHandler.ListGoals).Methods("GET")
	api.HandleFunc("/goals", goalHandler.CreateGoal).Methods("POST")
	api.HandleFunc("/goals/{id}", goalHandler.GetGoal).Methods("GET")
	api.HandleFunc("/goals/{id}", goalHandler.UpdateGoal).Methods("PUT")
	api.HandleFunc("/goals/{id}/recompute", goalHandler.RecomputeProgress).Methods("POST")
	api.HandleFunc("/habits", habitHandler.ListHabits).Methods("GET")
	api.HandleFunc("/habits", habitHandler.CreateHabit).Methods("POST")
	api.HandleFunc("/habits/{id}", habitHandler.GetHabit).Methods("GET")
	api.HandleFunc("/habits/{id}", habitHandler.UpdateHabit).Methods("PUT")
	api.HandleFunc("/habits/{id}/toggle", completionHandler.Toggle).Methods("POST")
	api.HandleFunc("/habits/{id}/track", completionHandler.Track).Methods("POST")
	api.HandleFunc("/habits/{id}/completions/{date}", completionHandler.SetValue).Methods("PUT")
	api.HandleFunc("/habits/{id}/completions/{date}", completionHandler.Remove).Methods("DELETE")
	api.HandleFunc("/habits/{id}/calendar", habitHandler.GetCalendar).Methods("GET")
	api.HandleFunc("/habits/{id}/streak", habitHandler.GetStreak).Methods("GET")
	api.HandleFunc("/habits/{id}/stats", habitHandler.GetStats).Methods("GET")
	api.HandleFunc("/streaks", habitHandler.GetAllStreaks).Methods("GET")
	api.HandleFunc("/today", routineHandler.GetToday).Methods("GET")
	api.HandleFunc("/routine", routineHandler.GetWeek).Methods("GET")
	api.HandleFunc("/notifications/devices", notificationHandler.RegisterDevice).Methods("POST")

	return &testServer{router: r, store: st, profiles: profiles}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(testUserHeader, userID)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func (s *testServer) createHabit(t *testing.T, userID string, body map[string]any) habit.Habit {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/v1/habits", userID, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[habit.Habit](t, rr)
}

func TestUnauthenticated(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/api/v1/habits", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGoalLifecycle(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/api/v1/goals", "alice", map[string]any{"name": "Read 12 books", "goal_value": 12, "deadline": "2024-12-31"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	g := decode[goal.Goal](t, rr)

	rr = s.do(t, http.MethodPost, "/api/v1/goals", "alice", map[string]any{"name": "x", "deadline": "31/12/2024"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_request", decode[errorResponse](t, rr).Code)

	h := s.createHabit(t, "alice", map[string]any{"name": "Read", "goal_id": g.ID, "target_value": 1})
	rr = s.do(t, http.MethodPut, "/api/v1/habits/"+h.ID+"/completions/2024-03-10", "alice", map[string]any{"value": 3})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/api/v1/goals/"+g.ID, "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[goal.Goal](t, rr)
	assert.Equal(t, 25, got.Progress)
	assert.Equal(t, 3.0, got.CurrentValue)
	assert.Len(t, got.Habits, 1)

	rr = s.do(t, http.MethodGet, "/api/v1/goals/"+g.ID, "mallory", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "forbidden", decode[errorResponse](t, rr).Code)

	rr = s.do(t, http.MethodPut, "/api/v1/goals/"+g.ID, "alice", map[string]any{"progress": 250})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 100, decode[goal.Goal](t, rr).Progress)

	rr = s.do(t, http.MethodPost, "/api/v1/goals/"+g.ID+"/recompute", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 25, decode[goal.ProgressResponse](t, rr).Progress)

	rr = s.do(t, http.MethodGet, "/api/v1/goals?filter=inProgress&limit=5", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]goal.Goal](t, rr), 1)

	rr = s.do(t, http.MethodGet, "/api/v1/goals?filter=someday", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestToggleEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.createHabit(t, "alice", map[string]any{"name": "Walk"})

	// no body toggles today
	rr := s.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/toggle", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[modelCompletion.ToggleResult](t, rr)
	assert.True(t, res.Completed)
	assert.Equal(t, "2024-03-15", res.Date)
	assert.Equal(t, 1, res.CurrentStreak)

	rr = s.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/toggle", "alice", map[string]any{"date": "2024-03-15"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[modelCompletion.ToggleResult](t, rr).Completed)

	rr = s.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/toggle", "alice", map[string]any{"date": "March 3rd"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/toggle", "mallory", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/habits/nope/toggle", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decode[errorResponse](t, rr).Code)
}

func TestTrackAndRemoveEndpoints(t *testing.T) {
	s := newTestServer(t)
	h := s.createHabit(t, "alice", map[string]any{"name": "Water", "target_value": 8})

	rr := s.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/track", "alice", map[string]any{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/track", "alice", map[string]any{"amount": 5})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = s.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/track", "alice", map[string]any{"amount": 5})
	require.Equal(t, http.StatusOK, rr.Code)
	res := decode[modelCompletion.ToggleResult](t, rr)
	assert.Equal(t, 8.0, res.Value)
	assert.True(t, res.Completed)

	rr = s.do(t, http.MethodDelete, "/api/v1/habits/"+h.ID+"/completions/2024-03-15", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0.0, decode[modelCompletion.ToggleResult](t, rr).Value)
}

func TestHabitViews(t *testing.T) {
	s := newTestServer(t)
	h := s.createHabit(t, "alice", map[string]any{"name": "Gym", "frequency": "weekly", "days": []int{0, 4}})
	assert.Equal(t, []int{0, 4}, h.Schedule.Days)

	s.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/toggle", "alice", nil)

	rr := s.do(t, http.MethodGet, "/api/v1/habits/"+h.ID+"/calendar?year=2024&month=3", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var cal struct {
		Days []struct {
			Completed bool `json:"completed"`
			Due       bool `json:"due"`
			IsToday   bool `json:"is_today"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cal))
	require.Len(t, cal.Days, 31)
	assert.True(t, cal.Days[14].Completed)
	assert.True(t, cal.Days[14].IsToday)
	assert.True(t, cal.Days[10].Due)

	rr = s.do(t, http.MethodGet, "/api/v1/habits/"+h.ID+"/calendar?month=abc", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/v1/habits/"+h.ID+"/streak", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/v1/habits/"+h.ID+"/stats", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"today_status":true`)

	rr = s.do(t, http.MethodGet, "/api/v1/streaks", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"current_streak":1`)

	rr = s.do(t, http.MethodGet, "/api/v1/today", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	today := decode[routine.Today](t, rr)
	assert.Equal(t, 1, today.DueCount)
	assert.Equal(t, 1, today.CompletedCount)

	rr = s.do(t, http.MethodGet, "/api/v1/routine?week_offset=-2", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "2024-02-26", decode[routine.Week](t, rr).StartDate)

	rr = s.do(t, http.MethodGet, "/api/v1/routine?week_offset=soon", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPut, "/api/v1/habits/"+h.ID, "alice", map[string]any{"name": "Gym day"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Gym day", decode[habit.Habit](t, rr).Name)

	rr = s.do(t, http.MethodGet, "/api/v1/habits", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]habit.Habit](t, rr), 1)
}

func TestProfileEndpoints(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/api/v1/profile", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodPut, "/api/v1/profile", "alice", map[string]any{"name": "Alice"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Alice"`)

	rr = s.do(t, http.MethodPut, "/api/v1/profile", "alice", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterDeviceEndpoint(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/api/v1/notifications/devices", "alice", map[string]any{"token": "fcm-1", "platform": "android"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodPost, "/api/v1/notifications/devices", "alice", map[string]any{"token": "fcm-2", "platform": "symbian"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
