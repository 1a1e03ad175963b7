package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resolveAPI/internal/apierr"
	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/store"
	"resolveAPI/internal/types/clerk"
	"resolveAPI/internal/types/profile"
)

type ProfileService struct {
	store store.Store
	log   *logger.Logger
}

func NewProfileService(st store.Store, log *logger.Logger) *ProfileService {
	return &ProfileService{store: st, log: log.With("service", "ProfileService")}
}

// GetProfile returns the caller's profile, creating an empty one on first
// access when the signup webhook has not arrived yet.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	p = &profile.Profile{ID: userID}
	if err := s.store.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("created profile on first access", "user_id", userID)
	return p, nil
}

func (s *ProfileService) UpdateName(ctx context.Context, userID string, req *profile.UpdateProfileRequest) (*profile.Profile, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apierr.BadRequest(fmt.Errorf("name must not be empty"))
	}
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.UpdateProfileName(ctx, userID, name)
}

// SyncFromClerk mirrors a Clerk user into the profile table. Points are
// never touched here.
func (s *ProfileService) SyncFromClerk(ctx context.Context, data *clerk.ClerkUserData) (*profile.Profile, error) {
	if data.ID == "" {
		return nil, apierr.BadRequest(fmt.Errorf("clerk user id missing"))
	}
	p := &profile.Profile{
		ID:    data.ID,
		Email: data.PrimaryEmail(),
		Name:  data.DisplayName(),
	}
	if existing, err := s.store.GetProfile(ctx, data.ID); err == nil {
		p.Points = existing.Points
		p.CreatedAt = existing.CreatedAt
	}
	if err := s.store.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
