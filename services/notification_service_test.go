package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolveAPI/internal/apierr"
	pushnotif "resolveAPI/internal/notification"
	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/types/notification"
	"resolveAPI/utils"
)

type fakePushProvider struct {
	mu      sync.Mutex
	calls   int
	tokens  []string
	invalid []string
}

func (f *fakePushProvider) SendPush(_ context.Context, tokens []notification.DeviceToken, _, _ string, _ map[string]any) (pushnotif.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	res := pushnotif.SendResult{Invalid: f.invalid}
	for _, t := range tokens {
		f.tokens = append(f.tokens, t.Token)
		res.Sent++
	}
	res.Sent -= len(f.invalid)
	res.Failed = len(f.invalid)
	return res, nil
}

func (f *fakePushProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRegisterDevice(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	svc := NewNotificationService(st, nil, logger.Nop())

	d, err := svc.RegisterDevice(ctx, testUser, &notification.RegisterDeviceRequest{Token: " tok-1 ", Platform: "ios"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", d.Token)

	_, err = svc.RegisterDevice(ctx, testUser, &notification.RegisterDeviceRequest{Token: "tok-2", Platform: "blackberry"})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	tokens, err := st.ListDeviceTokens(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, tokens, 1)

	assert.False(t, svc.Enqueue(&notification.Notification{UserID: testUser}), "no dispatcher configured")
}

func TestDispatcher_DeliversAndForgetsInvalidTokens(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	require.NoError(t, st.RegisterDevice(ctx, notification.DeviceToken{UserID: testUser, Token: "good", Platform: "android", CreatedAt: time.Now()}))
	require.NoError(t, st.RegisterDevice(ctx, notification.DeviceToken{UserID: testUser, Token: "stale", Platform: "ios", CreatedAt: time.Now()}))

	provider := &fakePushProvider{invalid: []string{"stale"}}
	dispatcher := NewNotificationDispatcher(st, logger.Nop(), 2)
	defer dispatcher.Stop()
	dispatcher.SetPushProvider(provider)

	svc := NewNotificationService(st, dispatcher, logger.Nop())
	queued := utils.StreakMilestoneReached(svc, testUser, "habit-1", "Read", 30)
	require.True(t, queued)

	require.Eventually(t, func() bool {
		tokens, err := st.ListDeviceTokens(ctx, testUser)
		return err == nil && len(tokens) == 1 && provider.callCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	tokens, err := st.ListDeviceTokens(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "good", tokens[0].Token)
}

func TestDispatcher_WithoutProviderSkips(t *testing.T) {
	st := openTestStore(t)
	dispatcher := NewNotificationDispatcher(st, logger.Nop(), 1)

	assert.True(t, dispatcher.Dispatch(&notification.Notification{UserID: testUser, Type: notification.TypeStreakMilestone}))
	dispatcher.Stop()
	dispatcher.Stop()

	assert.False(t, dispatcher.Dispatch(&notification.Notification{UserID: testUser}), "stopped dispatcher rejects work")
}
