package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/types/completion"
	"resolveAPI/services"
)

type CompletionHandler struct {
	completionService *services.CompletionService
	log               *logger.Logger
}

func NewCompletionHandler(completionService *services.CompletionService, log *logger.Logger) *CompletionHandler {
	return &CompletionHandler{
		completionService: completionService,
		log:               log.With("handler", "CompletionHandler"),
	}
}

// POST /api/v1/habits/{id}/toggle  body: {"date": "2024-03-15"} (optional)
func (h *CompletionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req completion.ToggleRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	res, err := h.completionService.Toggle(ctx, userID, mux.Vars(r)["id"], &req)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// PUT /api/v1/habits/{id}/completions/{date}  body: {"value": 2.5}
func (h *CompletionHandler) SetValue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req completion.SetValueRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	vars := mux.Vars(r)
	res, err := h.completionService.SetValue(ctx, userID, vars["id"], vars["date"], &req)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// DELETE /api/v1/habits/{id}/completions/{date}
func (h *CompletionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	res, err := h.completionService.Remove(ctx, userID, vars["id"], vars["date"])
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// POST /api/v1/habits/{id}/track  body: {"amount": 1, "date": "2024-03-15"}
func (h *CompletionHandler) Track(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req completion.TrackRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	res, err := h.completionService.Track(ctx, userID, mux.Vars(r)["id"], &req)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}
