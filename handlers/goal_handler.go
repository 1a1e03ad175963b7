package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/types/goal"
	"resolveAPI/services"
)

type GoalHandler struct {
	goalService *services.GoalService
	log         *logger.Logger
}

func NewGoalHandler(goalService *services.GoalService, log *logger.Logger) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
		log:         log.With("handler", "GoalHandler"),
	}
}

// GET /api/v1/goals?filter=inProgress&limit=3
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	filter := goal.Filter(r.URL.Query().Get("filter"))
	switch filter {
	case "", goal.FilterAll, goal.FilterNotStarted, goal.FilterInProgress, goal.FilterCompleted:
	default:
		respondWithError(w, http.StatusBadRequest, "filter must be one of all, notStarted, inProgress, completed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	goals, err := h.goalService.ListGoals(ctx, userID, filter, limit)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, goals)
}

// POST /api/v1/goals
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req goal.CreateGoalRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	g, err := h.goalService.CreateGoal(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, g)
}

// GET /api/v1/goals/{id}
func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	g, err := h.goalService.GetGoal(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, g)
}

// PUT /api/v1/goals/{id}
func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req goal.UpdateGoalRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	g, err := h.goalService.UpdateGoal(ctx, userID, mux.Vars(r)["id"], &req)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, g)
}

// POST /api/v1/goals/{id}/recompute
func (h *GoalHandler) RecomputeProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	res, err := h.goalService.Recompute(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}
