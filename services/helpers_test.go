package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"resolveAPI/internal/lock"
	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/schedule"
	"resolveAPI/internal/store"
	"resolveAPI/internal/store/sqlite"
	modelCompletion "resolveAPI/internal/types/completion"
	"resolveAPI/internal/types/goal"
	"resolveAPI/internal/types/habit"
	"resolveAPI/internal/types/notification"
)

const (
	testUser  = "user_alice"
	otherUser = "user_bob"
)

// testToday is Friday 2024-03-15.
var testToday = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*notification.Notification
}

func (r *recordingNotifier) Enqueue(n *notification.Notification) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return true
}

func (r *recordingNotifier) all() []*notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*notification.Notification(nil), r.sent...)
}

// brokenProgressStore fails every goal progress write.
type brokenProgressStore struct {
	store.Store
}

func (brokenProgressStore) UpdateGoalProgress(context.Context, string, int, float64) error {
	return errors.New("connection reset by peer")
}

type testEnv struct {
	store       store.Store
	clock       Clock
	locker      *lock.Memory
	notifier    *recordingNotifier
	goals       *GoalService
	habits      *HabitService
	streaks     *StreakService
	completions *CompletionService
	routine     *RoutineService
	profiles    *ProfileService
}

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, openTestStore(t))
}

func newTestEnvWithStore(t *testing.T, st store.Store) *testEnv {
	t.Helper()
	log := logger.Nop()
	clock := FixedClock(testToday, time.UTC)
	env := &testEnv{
		store:    st,
		clock:    clock,
		locker:   lock.NewMemory(),
		notifier: &recordingNotifier{},
	}
	env.goals = NewGoalService(st, clock, log)
	env.habits = NewHabitService(st, env.goals, clock, log)
	env.streaks = NewStreakService(st, clock, log)
	env.completions = NewCompletionService(st, env.locker, env.goals, env.streaks, env.notifier, clock, log)
	env.routine = NewRoutineService(st, clock, log)
	env.profiles = NewProfileService(st, log)
	return env
}

func (e *testEnv) createGoal(t *testing.T, userID, name string, value float64) *goal.Goal {
	t.Helper()
	g, err := e.goals.CreateGoal(context.Background(), userID, &goal.CreateGoalRequest{Name: name, GoalValue: value})
	require.NoError(t, err)
	return g
}

func (e *testEnv) createHabit(t *testing.T, userID, name string, goalID *string, sched schedule.Schedule, target float64) *habit.Habit {
	t.Helper()
	h, err := e.habits.CreateHabit(context.Background(), userID, &habit.CreateHabitRequest{
		Name:        name,
		GoalID:      goalID,
		Schedule:    &sched,
		TargetValue: target,
	})
	require.NoError(t, err)
	return h
}

// seedDays writes completions directly, bypassing the service.
func (e *testEnv) seedDays(t *testing.T, habitID string, value float64, dates ...string) {
	t.Helper()
	for _, d := range dates {
		require.NoError(t, e.store.UpsertCompletion(context.Background(), modelCompletion.HabitCompletion{
			HabitID: habitID, Date: d, Value: value,
		}))
	}
}

func (e *testEnv) completionRows(t *testing.T, habitID string) []modelCompletion.HabitCompletion {
	t.Helper()
	rows, err := e.store.ListCompletions(context.Background(), []string{habitID}, "", "")
	require.NoError(t, err)
	return rows
}
