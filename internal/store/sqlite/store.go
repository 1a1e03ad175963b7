package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"resolveAPI/internal/schedule"
	"resolveAPI/internal/store"
	modelCompletion "resolveAPI/internal/types/completion"
	"resolveAPI/internal/types/goal"
	"resolveAPI/internal/types/habit"
	"resolveAPI/internal/types/notification"
	"resolveAPI/internal/types/profile"
)

//go:embed schema.sql
var schema string

// Store keeps everything in a single SQLite file (or in memory for ":memory:").
// Timestamps are stored as RFC3339 text.
type Store struct {
	path string
	db   *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	s := &Store{path: path, db: db}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// timeLayout is fixed-width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(field, v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return t, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// Profiles

func (s *Store) GetProfile(ctx context.Context, id string) (*profile.Profile, error) {
	var p profile.Profile
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, points, created_at, updated_at
		FROM profiles WHERE id = ?`, id).
		Scan(&p.ID, &p.Email, &p.Name, &p.Points, &createdAt, &updatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if p.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p *profile.Profile) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, name, points, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			updated_at = excluded.updated_at`,
		p.ID, p.Email, p.Name, p.Points, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (s *Store) UpdateProfileName(ctx context.Context, id, name string) (*profile.Profile, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE profiles SET name = ?, updated_at = ? WHERE id = ?`,
		name, formatTime(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetProfile(ctx, id)
}

// Goals

const goalColumns = `id, user_id, name, description, category, icon, deadline,
	goal_value, goal_unit, progress, current_value, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*goal.Goal, error) {
	var g goal.Goal
	var deadline sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.Category, &g.Icon, &deadline,
		&g.GoalValue, &g.GoalUnit, &g.Progress, &g.CurrentValue, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	g.Deadline = stringPtr(deadline)
	if g.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) ListGoals(ctx context.Context, userID string) ([]*goal.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]*goal.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Store) GetGoal(ctx context.Context, id string) (*goal.Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

func (s *Store) CreateGoal(ctx context.Context, g *goal.Goal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.Description, g.Category, g.Icon, nullString(g.Deadline),
		g.GoalValue, g.GoalUnit, g.Progress, g.CurrentValue, formatTime(g.CreatedAt), formatTime(g.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

func (s *Store) UpdateGoal(ctx context.Context, g *goal.Goal) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE goals SET name = ?, description = ?, category = ?, icon = ?, deadline = ?,
			goal_value = ?, goal_unit = ?, progress = ?, current_value = ?, updated_at = ?
		WHERE id = ?`,
		g.Name, g.Description, g.Category, g.Icon, nullString(g.Deadline),
		g.GoalValue, g.GoalUnit, g.Progress, g.CurrentValue, formatTime(g.UpdatedAt), g.ID)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateGoalProgress(ctx context.Context, goalID string, progress int, currentValue float64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE goals SET progress = ?, current_value = ?, updated_at = ? WHERE id = ?`,
		progress, currentValue, formatTime(time.Now()), goalID)
	if err != nil {
		return fmt.Errorf("failed to update goal progress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Habits

const habitSelect = `
	SELECT h.id, h.user_id, h.goal_id, h.name, h.description, h.schedule, h.target_value,
		h.created_at, h.updated_at, g.name, g.icon
	FROM habits h
	LEFT JOIN goals g ON g.id = h.goal_id`

func scanHabit(row rowScanner) (*habit.Habit, error) {
	var h habit.Habit
	var goalID, description, goalName, goalIcon sql.NullString
	var scheduleJSON, createdAt, updatedAt string
	err := row.Scan(&h.ID, &h.UserID, &goalID, &h.Name, &description, &scheduleJSON, &h.TargetValue,
		&createdAt, &updatedAt, &goalName, &goalIcon)
	if err != nil {
		return nil, err
	}
	h.GoalID = stringPtr(goalID)
	h.Description = stringPtr(description)
	if goalName.Valid {
		h.Goal = &habit.GoalSummary{Name: goalName.String, Icon: goalIcon.String}
	}
	if err := json.Unmarshal([]byte(scheduleJSON), &h.Schedule); err != nil {
		// Unreadable schedules degrade to "never due".
		h.Schedule = schedule.Schedule{}
	}
	if h.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if h.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *Store) queryHabits(ctx context.Context, query string, args ...any) ([]*habit.Habit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	habits := make([]*habit.Habit, 0)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) ListHabits(ctx context.Context, userID string) ([]*habit.Habit, error) {
	return s.queryHabits(ctx, habitSelect+` WHERE h.user_id = ? ORDER BY h.created_at`, userID)
}

func (s *Store) ListHabitsByGoal(ctx context.Context, goalID string) ([]*habit.Habit, error) {
	return s.queryHabits(ctx, habitSelect+` WHERE h.goal_id = ? ORDER BY h.created_at`, goalID)
}

func (s *Store) GetHabit(ctx context.Context, id string) (*habit.Habit, error) {
	h, err := scanHabit(s.db.QueryRowContext(ctx, habitSelect+` WHERE h.id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return h, nil
}

func (s *Store) CreateHabit(ctx context.Context, h *habit.Habit) error {
	sched, err := json.Marshal(h.Schedule)
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO habits (id, user_id, goal_id, name, description, schedule, target_value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.UserID, nullString(h.GoalID), h.Name, nullString(h.Description), string(sched),
		h.TargetValue, formatTime(h.CreatedAt), formatTime(h.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}
	return nil
}

func (s *Store) UpdateHabit(ctx context.Context, h *habit.Habit) error {
	sched, err := json.Marshal(h.Schedule)
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE habits SET goal_id = ?, name = ?, description = ?, schedule = ?, target_value = ?, updated_at = ?
		WHERE id = ?`,
		nullString(h.GoalID), h.Name, nullString(h.Description), string(sched), h.TargetValue,
		formatTime(h.UpdatedAt), h.ID)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Completions

func (s *Store) ListCompletions(ctx context.Context, habitIDs []string, from, to string) ([]modelCompletion.HabitCompletion, error) {
	out := make([]modelCompletion.HabitCompletion, 0)
	if len(habitIDs) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(habitIDs)+2)
	for _, id := range habitIDs {
		args = append(args, id)
	}
	query := `SELECT habit_id, date, value, created_at FROM habit_completions
		WHERE habit_id IN (?` + strings.Repeat(", ?", len(habitIDs)-1) + `)`
	if from != "" {
		query += ` AND date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND date <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY habit_id, date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c modelCompletion.HabitCompletion
		var createdAt string
		if err := rows.Scan(&c.HabitID, &c.Date, &c.Value, &createdAt); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCompletion(ctx context.Context, habitID, date string) (*modelCompletion.HabitCompletion, error) {
	var c modelCompletion.HabitCompletion
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT habit_id, date, value, created_at FROM habit_completions
		WHERE habit_id = ? AND date = ?`, habitID, date).
		Scan(&c.HabitID, &c.Date, &c.Value, &createdAt)
	if err != nil {
		return nil, notFound(err)
	}
	if c.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertCompletion writes the row for (habit, date). A non-positive value
// removes it instead.
func (s *Store) UpsertCompletion(ctx context.Context, c modelCompletion.HabitCompletion) error {
	if c.Value <= 0 {
		_, err := s.DeleteCompletion(ctx, c.HabitID, c.Date)
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habit_completions (habit_id, date, value, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (habit_id, date) DO UPDATE SET value = excluded.value`,
		c.HabitID, c.Date, c.Value, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert completion: %w", err)
	}
	return nil
}

func (s *Store) DeleteCompletion(ctx context.Context, habitID, date string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM habit_completions WHERE habit_id = ? AND date = ?`, habitID, date)
	if err != nil {
		return false, fmt.Errorf("failed to delete completion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Device tokens

func (s *Store) RegisterDevice(ctx context.Context, d notification.DeviceToken) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO device_tokens (token, user_id, platform, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (token) DO UPDATE SET user_id = excluded.user_id, platform = excluded.platform`,
		d.Token, d.UserID, d.Platform, formatTime(d.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *Store) ListDeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, user_id, platform, created_at FROM device_tokens
		WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	tokens := make([]notification.DeviceToken, 0)
	for rows.Next() {
		var d notification.DeviceToken
		var createdAt string
		if err := rows.Scan(&d.Token, &d.UserID, &d.Platform, &createdAt); err != nil {
			return nil, err
		}
		if d.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, d)
	}
	return tokens, rows.Err()
}

func (s *Store) DeleteDeviceToken(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM device_tokens WHERE token = ?`, token); err != nil {
		return fmt.Errorf("failed to delete device token: %w", err)
	}
	return nil
}
