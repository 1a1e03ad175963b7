package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"resolveAPI/internal/pkg/logger"
	"resolveAPI/services"
)

type RoutineHandler struct {
	routineService *services.RoutineService
	log            *logger.Logger
}

func NewRoutineHandler(routineService *services.RoutineService, log *logger.Logger) *RoutineHandler {
	return &RoutineHandler{
		routineService: routineService,
		log:            log.With("handler", "RoutineHandler"),
	}
}

// GET /api/v1/today
func (h *RoutineHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	today, err := h.routineService.Today(ctx, userID)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, today)
}

// GET /api/v1/routine?week_offset=-1
func (h *RoutineHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	offset := 0
	if raw := r.URL.Query().Get("week_offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "week_offset must be an integer")
			return
		}
		offset = n
	}

	week, err := h.routineService.Week(ctx, userID, offset)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, week)
}
