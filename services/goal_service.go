package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"resolveAPI/internal/apierr"
	"resolveAPI/internal/completion"
	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/progress"
	"resolveAPI/internal/store"
	"resolveAPI/internal/types/goal"
	"resolveAPI/internal/types/habit"
	"resolveAPI/utils"
)

type GoalService struct {
	store store.Store
	clock Clock
	log   *logger.Logger
}

func NewGoalService(st store.Store, clock Clock, log *logger.Logger) *GoalService {
	return &GoalService{store: st, clock: clock, log: log.With("service", "GoalService")}
}

// ListGoals filters on the stored progress value. limit <= 0 means no limit.
func (s *GoalService) ListGoals(ctx context.Context, userID string, filter goal.Filter, limit int) ([]*goal.Goal, error) {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*goal.Goal, 0, len(goals))
	for _, g := range goals {
		if !filter.Matches(g.Progress) {
			continue
		}
		out = append(out, g)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *GoalService) CreateGoal(ctx context.Context, userID string, req *goal.CreateGoalRequest) (*goal.Goal, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apierr.BadRequest(fmt.Errorf("name is required"))
	}
	if err := validateDeadline(req.Deadline); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	g := &goal.Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        name,
		Description: req.Description,
		Category:    req.Category,
		Icon:        req.Icon,
		Deadline:    req.Deadline,
		GoalValue:   req.GoalValue,
		GoalUnit:    req.GoalUnit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return nil, err
	}
	g.Habits = make([]habit.Habit, 0)
	return g, nil
}

// GetGoal returns the goal with its habits. Progress is recomputed and
// written back on every view; if that fails the stored value is served.
func (s *GoalService) GetGoal(ctx context.Context, userID, goalID string) (*goal.Goal, error) {
	g, err := loadOwnedGoal(ctx, s.store, userID, goalID)
	if err != nil {
		return nil, err
	}

	res, habits, err := s.recompute(ctx, g)
	if err != nil {
		s.log.Warn("goal progress recompute on view failed", "goal_id", goalID, "error", err)
		habits, err = s.store.ListHabitsByGoal(ctx, goalID)
		if err != nil {
			return nil, err
		}
	} else {
		g.Progress = res.Progress
		g.CurrentValue = res.CurrentValue
	}

	if err := attachDayValues(ctx, s.store, habits, s.clock.TodayString()); err != nil {
		return nil, err
	}
	g.Habits = make([]habit.Habit, 0, len(habits))
	for _, h := range habits {
		g.Habits = append(g.Habits, *h)
	}
	return g, nil
}

// UpdateGoal applies the edit form. An explicit progress is clamped to
// [0, 100] and rescaled onto the goal value.
func (s *GoalService) UpdateGoal(ctx context.Context, userID, goalID string, req *goal.UpdateGoalRequest) (*goal.Goal, error) {
	g, err := loadOwnedGoal(ctx, s.store, userID, goalID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apierr.BadRequest(fmt.Errorf("name must not be empty"))
		}
		g.Name = name
	}
	if req.Description != nil {
		g.Description = *req.Description
	}
	if req.Category != nil {
		g.Category = *req.Category
	}
	if req.Icon != nil {
		g.Icon = *req.Icon
	}
	if req.Deadline != nil {
		if err := validateDeadline(req.Deadline); err != nil {
			return nil, err
		}
		g.Deadline = req.Deadline
	}
	if req.GoalUnit != nil {
		g.GoalUnit = *req.GoalUnit
	}
	valueChanged := false
	if req.GoalValue != nil && *req.GoalValue != g.GoalValue {
		if *req.GoalValue < 0 {
			return nil, apierr.BadRequest(fmt.Errorf("goal_value must not be negative"))
		}
		g.GoalValue = *req.GoalValue
		valueChanged = true
	}
	if req.Progress != nil {
		g.Progress = progress.Clamp(*req.Progress)
		g.CurrentValue = 0
		if g.IsNumeric() {
			g.CurrentValue = float64(g.Progress) / 100 * g.GoalValue
		}
	}
	g.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return nil, err
	}

	if valueChanged && req.Progress == nil {
		if res, _, err := s.recompute(ctx, g); err != nil {
			s.log.Warn("goal progress recompute after edit failed", "goal_id", goalID, "error", err)
		} else {
			g.Progress = res.Progress
			g.CurrentValue = res.CurrentValue
		}
	}
	return g, nil
}

// Recompute is the explicit, user-facing recompute.
func (s *GoalService) Recompute(ctx context.Context, userID, goalID string) (*goal.ProgressResponse, error) {
	g, err := loadOwnedGoal(ctx, s.store, userID, goalID)
	if err != nil {
		return nil, err
	}
	res, _, err := s.recompute(ctx, g)
	if err != nil {
		return nil, err
	}
	return &goal.ProgressResponse{
		GoalID:       g.ID,
		Progress:     res.Progress,
		CurrentValue: res.CurrentValue,
		TotalValue:   res.TotalValue,
		Numeric:      res.Numeric,
	}, nil
}

// RecomputeProgress recomputes and stores a goal's progress without an
// ownership check. Callers must have authorized access already.
func (s *GoalService) RecomputeProgress(ctx context.Context, goalID string) (progress.Result, error) {
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return progress.Result{}, fmt.Errorf("failed to load goal %s: %w", goalID, err)
	}
	res, _, err := s.recompute(ctx, g)
	return res, err
}

// RecomputeAll refreshes every goal of a user, a few at a time.
func (s *GoalService) RecomputeAll(ctx context.Context, userID string) (map[string]progress.Result, error) {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	results := make(map[string]progress.Result, len(goals))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, gl := range goals {
		g.Go(func() error {
			res, _, err := s.recompute(gctx, gl)
			if err != nil {
				return fmt.Errorf("goal %s: %w", gl.ID, err)
			}
			mu.Lock()
			results[gl.ID] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *GoalService) recompute(ctx context.Context, g *goal.Goal) (progress.Result, []*habit.Habit, error) {
	habits, err := s.store.ListHabitsByGoal(ctx, g.ID)
	if err != nil {
		return progress.Result{}, nil, err
	}
	ids := habitIDs(habits)
	rows, err := s.store.ListCompletions(ctx, ids, "", "")
	if err != nil {
		return progress.Result{}, nil, err
	}

	res := progress.Aggregate(g.GoalValue, ids, completion.BuildIndex(rows))
	if err := s.store.UpdateGoalProgress(ctx, g.ID, res.Progress, res.CurrentValue); err != nil {
		return progress.Result{}, nil, err
	}
	return res, habits, nil
}

func validateDeadline(deadline *string) error {
	if deadline == nil {
		return nil
	}
	if _, err := utils.ParseDate(*deadline); err != nil {
		return apierr.BadRequest(err)
	}
	return nil
}
