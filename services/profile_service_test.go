package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolveAPI/internal/apierr"
	"resolveAPI/internal/types/clerk"
	"resolveAPI/internal/types/profile"
)

func TestGetProfile_CreatesOnFirstAccess(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	p, err := env.profiles.GetProfile(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, testUser, p.ID)
	assert.Zero(t, p.Points)

	again, err := env.profiles.GetProfile(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
}

func TestUpdateName(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	p, err := env.profiles.UpdateName(ctx, testUser, &profile.UpdateProfileRequest{Name: "  Alice  "})
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)

	_, err = env.profiles.UpdateName(ctx, testUser, &profile.UpdateProfileRequest{Name: " "})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
}

func TestSyncFromClerk_KeepsPoints(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.store.UpsertProfile(ctx, &profile.Profile{ID: testUser, Name: "old", Points: 40}))

	p, err := env.profiles.SyncFromClerk(ctx, &clerk.ClerkUserData{
		ID:                    testUser,
		FirstName:             "Alice",
		LastName:              "Liddell",
		PrimaryEmailAddressID: "em_2",
		EmailAddresses: []clerk.ClerkEmailAddress{
			{ID: "em_1", EmailAddress: "old@example.com"},
			{ID: "em_2", EmailAddress: "alice@example.com"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", p.Name)
	assert.Equal(t, "alice@example.com", p.Email)

	stored, err := env.store.GetProfile(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 40, stored.Points)
	assert.Equal(t, "alice@example.com", stored.Email)

	_, err = env.profiles.SyncFromClerk(ctx, &clerk.ClerkUserData{})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
}
