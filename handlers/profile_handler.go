package handlers

import (
	"context"
	"net/http"
	"time"

	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/types/profile"
	"resolveAPI/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	log            *logger.Logger
}

func NewProfileHandler(profileService *services.ProfileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		log:            log.With("handler", "ProfileHandler"),
	}
}

// GET /api/v1/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	p, err := h.profileService.GetProfile(ctx, userID)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

// PUT /api/v1/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req profile.UpdateProfileRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	p, err := h.profileService.UpdateName(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}
