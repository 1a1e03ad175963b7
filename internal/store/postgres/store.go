package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resolveAPI/internal/store"
	modelCompletion "resolveAPI/internal/types/completion"
	"resolveAPI/internal/types/goal"
	"resolveAPI/internal/types/habit"
	"resolveAPI/internal/types/notification"
	"resolveAPI/internal/types/profile"
	"resolveAPI/utils"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New connects a pool to databaseURL and pings it.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{db: pool}, nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func toDate(s string) (time.Time, error) {
	return utils.ParseDate(s)
}

func toNullDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	d, err := utils.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Profiles

func (s *Store) GetProfile(ctx context.Context, id string) (*profile.Profile, error) {
	var p profile.Profile
	err := s.db.QueryRow(ctx, `
		SELECT id, email, name, points, created_at, updated_at
		FROM profiles WHERE id = $1`, id).
		Scan(&p.ID, &p.Email, &p.Name, &p.Points, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p *profile.Profile) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO profiles (id, email, name, points)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			updated_at = NOW()
		RETURNING points, created_at, updated_at`,
		p.ID, p.Email, p.Name, p.Points).Scan(&p.Points, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (s *Store) UpdateProfileName(ctx context.Context, id, name string) (*profile.Profile, error) {
	var p profile.Profile
	err := s.db.QueryRow(ctx, `
		UPDATE profiles SET name = $2, updated_at = NOW() WHERE id = $1
		RETURNING id, email, name, points, created_at, updated_at`, id, name).
		Scan(&p.ID, &p.Email, &p.Name, &p.Points, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Goals

const goalSelect = `
	SELECT id, user_id, name, description, category, icon, to_char(deadline, 'YYYY-MM-DD'),
		goal_value, goal_unit, progress, current_value, created_at, updated_at
	FROM goals`

func scanGoal(row pgx.Row) (*goal.Goal, error) {
	var g goal.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.Category, &g.Icon, &g.Deadline,
		&g.GoalValue, &g.GoalUnit, &g.Progress, &g.CurrentValue, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) ListGoals(ctx context.Context, userID string) ([]*goal.Goal, error) {
	rows, err := s.db.Query(ctx, goalSelect+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
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
	g, err := scanGoal(s.db.QueryRow(ctx, goalSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

func (s *Store) CreateGoal(ctx context.Context, g *goal.Goal) error {
	deadline, err := toNullDate(g.Deadline)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO goals (id, user_id, name, description, category, icon, deadline,
			goal_value, goal_unit, progress, current_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		g.ID, g.UserID, g.Name, g.Description, g.Category, g.Icon, deadline,
		g.GoalValue, g.GoalUnit, g.Progress, g.CurrentValue, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

func (s *Store) UpdateGoal(ctx context.Context, g *goal.Goal) error {
	deadline, err := toNullDate(g.Deadline)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE goals SET name = $2, description = $3, category = $4, icon = $5, deadline = $6,
			goal_value = $7, goal_unit = $8, progress = $9, current_value = $10, updated_at = $11
		WHERE id = $1`,
		g.ID, g.Name, g.Description, g.Category, g.Icon, deadline,
		g.GoalValue, g.GoalUnit, g.Progress, g.CurrentValue, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateGoalProgress(ctx context.Context, goalID string, progress int, currentValue float64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE goals SET progress = $2, current_value = $3, updated_at = NOW() WHERE id = $1`,
		goalID, progress, currentValue)
	if err != nil {
		return fmt.Errorf("failed to update goal progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
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

func scanHabit(row pgx.Row) (*habit.Habit, error) {
	var h habit.Habit
	var goalName, goalIcon *string
	err := row.Scan(&h.ID, &h.UserID, &h.GoalID, &h.Name, &h.Description, &h.Schedule, &h.TargetValue,
		&h.CreatedAt, &h.UpdatedAt, &goalName, &goalIcon)
	if err != nil {
		return nil, err
	}
	if goalName != nil {
		h.Goal = &habit.GoalSummary{Name: *goalName}
		if goalIcon != nil {
			h.Goal.Icon = *goalIcon
		}
	}
	return &h, nil
}

func (s *Store) queryHabits(ctx context.Context, query string, args ...any) ([]*habit.Habit, error) {
	rows, err := s.db.Query(ctx, query, args...)
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
	return s.queryHabits(ctx, habitSelect+` WHERE h.user_id = $1 ORDER BY h.created_at`, userID)
}

func (s *Store) ListHabitsByGoal(ctx context.Context, goalID string) ([]*habit.Habit, error) {
	return s.queryHabits(ctx, habitSelect+` WHERE h.goal_id = $1 ORDER BY h.created_at`, goalID)
}

func (s *Store) GetHabit(ctx context.Context, id string) (*habit.Habit, error) {
	h, err := scanHabit(s.db.QueryRow(ctx, habitSelect+` WHERE h.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return h, nil
}

func (s *Store) CreateHabit(ctx context.Context, h *habit.Habit) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO habits (id, user_id, goal_id, name, description, schedule, target_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		h.ID, h.UserID, h.GoalID, h.Name, h.Description, h.Schedule, h.TargetValue, h.CreatedAt, h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}
	return nil
}

func (s *Store) UpdateHabit(ctx context.Context, h *habit.Habit) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE habits SET goal_id = $2, name = $3, description = $4, schedule = $5,
			target_value = $6, updated_at = $7
		WHERE id = $1`,
		h.ID, h.GoalID, h.Name, h.Description, h.Schedule, h.TargetValue, h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
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

	var fromDate, untilDate *time.Time
	if from != "" {
		d, err := utils.ParseDate(from)
		if err != nil {
			return nil, err
		}
		fromDate = &d
	}
	if to != "" {
		d, err := utils.ParseDate(to)
		if err != nil {
			return nil, err
		}
		untilDate = &d
	}

	rows, err := s.db.Query(ctx, `
		SELECT habit_id, to_char(date, 'YYYY-MM-DD'), value, created_at
		FROM habit_completions
		WHERE habit_id = ANY($1)
		  AND ($2::date IS NULL OR date >= $2)
		  AND ($3::date IS NULL OR date <= $3)
		ORDER BY habit_id, date`, habitIDs, fromDate, untilDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c modelCompletion.HabitCompletion
		if err := rows.Scan(&c.HabitID, &c.Date, &c.Value, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCompletion(ctx context.Context, habitID, date string) (*modelCompletion.HabitCompletion, error) {
	day, err := toDate(date)
	if err != nil {
		return nil, err
	}
	var c modelCompletion.HabitCompletion
	err = s.db.QueryRow(ctx, `
		SELECT habit_id, to_char(date, 'YYYY-MM-DD'), value, created_at
		FROM habit_completions WHERE habit_id = $1 AND date = $2`, habitID, day).
		Scan(&c.HabitID, &c.Date, &c.Value, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err)
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
	day, err := toDate(c.Date)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO habit_completions (habit_id, date, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (habit_id, date) DO UPDATE SET value = EXCLUDED.value`,
		c.HabitID, day, c.Value)
	if err != nil {
		return fmt.Errorf("failed to upsert completion: %w", err)
	}
	return nil
}

func (s *Store) DeleteCompletion(ctx context.Context, habitID, date string) (bool, error) {
	day, err := toDate(date)
	if err != nil {
		return false, err
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM habit_completions WHERE habit_id = $1 AND date = $2`, habitID, day)
	if err != nil {
		return false, fmt.Errorf("failed to delete completion: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Device tokens

func (s *Store) RegisterDevice(ctx context.Context, d notification.DeviceToken) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO device_tokens (token, user_id, platform)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform`,
		d.Token, d.UserID, d.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *Store) ListDeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
		SELECT token, user_id, platform, created_at FROM device_tokens
		WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	tokens := make([]notification.DeviceToken, 0)
	for rows.Next() {
		var d notification.DeviceToken
		if err := rows.Scan(&d.Token, &d.UserID, &d.Platform, &d.CreatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, d)
	}
	return tokens, rows.Err()
}

func (s *Store) DeleteDeviceToken(ctx context.Context, token string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM device_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete device token: %w", err)
	}
	return nil
}
