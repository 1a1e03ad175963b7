package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/types/habit"
	"resolveAPI/services"
)

type HabitHandler struct {
	habitService  *services.HabitService
	streakService *services.StreakService
	clock         services.Clock
	log           *logger.Logger
}

func NewHabitHandler(habitService *services.HabitService, streakService *services.StreakService, clock services.Clock, log *logger.Logger) *HabitHandler {
	return &HabitHandler{
		habitService:  habitService,
		streakService: streakService,
		clock:         clock,
		log:           log.With("handler", "HabitHandler"),
	}
}

// GET /api/v1/habits
func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	habits, err := h.habitService.ListHabits(ctx, userID)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, habits)
}

// POST /api/v1/habits
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req habit.CreateHabitRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	created, err := h.habitService.CreateHabit(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// GET /api/v1/habits/{id}
func (h *HabitHandler) GetHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	found, err := h.habitService.GetHabit(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, found)
}

// PUT /api/v1/habits/{id}
func (h *HabitHandler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req habit.UpdateHabitRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	updated, err := h.habitService.UpdateHabit(ctx, userID, mux.Vars(r)["id"], &req)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// GET /api/v1/habits/{id}/calendar?year=2024&month=3
// Missing year or month default to the current month.
func (h *HabitHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	today := h.clock.Today()
	year, month := today.Year(), int(today.Month())

	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = y
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = m
	}

	calendar, err := h.habitService.GetCalendar(ctx, userID, mux.Vars(r)["id"], year, month)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, calendar)
}

// GET /api/v1/habits/{id}/streak
func (h *HabitHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	streak, err := h.streakService.GetHabitStreak(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, streak)
}

// GET /api/v1/streaks
func (h *HabitHandler) GetAllStreaks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	streaks, err := h.streakService.GetAllStreaks(ctx, userID)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, streaks)
}

// GET /api/v1/habits/{id}/stats
func (h *HabitHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	stats, err := h.streakService.GetHabitStats(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
