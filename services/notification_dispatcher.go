package services

import (
	"context"
	"sync"
	"time"

	pushnotif "resolveAPI/internal/notification"
	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/store"
	"resolveAPI/internal/types/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) (pushnotif.SendResult, error)
}

// NotificationDispatcher delivers queued notifications on a small worker pool.
// Delivery is best-effort: nothing is retried and a full queue drops the job.
type NotificationDispatcher struct {
	store    store.Store
	log      *logger.Logger
	workers  int
	jobQueue chan *notification.Notification
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu           sync.RWMutex
	pushProvider PushNotificationProvider
}

func NewNotificationDispatcher(st store.Store, log *logger.Logger, workers int) *NotificationDispatcher {
	if workers <= 0 {
		workers = 5
	}
	d := &NotificationDispatcher{
		store:    st,
		log:      log.With("service", "NotificationDispatcher"),
		workers:  workers,
		jobQueue: make(chan *notification.Notification, 100),
		stopChan: make(chan struct{}),
	}
	d.startWorkers()
	return d
}

// SetPushProvider injects the push backend (FCM in production).
func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.mu.Lock()
	d.pushProvider = provider
	d.mu.Unlock()
}

func (d *NotificationDispatcher) provider() PushNotificationProvider {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pushProvider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(n *notification.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider := d.provider()
	if provider == nil {
		notificationsDispatched.WithLabelValues("skipped").Inc()
		d.log.Debug("skipping push: no provider", "user_id", n.UserID, "type", n.Type)
		return
	}

	tokens, err := d.store.ListDeviceTokens(ctx, n.UserID)
	if err != nil {
		notificationsDispatched.WithLabelValues("failed").Inc()
		d.log.Warn("failed to load device tokens", "user_id", n.UserID, "error", err)
		return
	}
	if len(tokens) == 0 {
		notificationsDispatched.WithLabelValues("skipped").Inc()
		return
	}

	res, err := provider.SendPush(ctx, tokens, n.Title, n.Body, n.Data)
	for _, token := range res.Invalid {
		if delErr := d.store.DeleteDeviceToken(ctx, token); delErr != nil {
			d.log.Warn("failed to forget invalid device token", "error", delErr)
		}
	}
	if err != nil {
		notificationsDispatched.WithLabelValues("failed").Inc()
		d.log.Warn("push failed", "user_id", n.UserID, "type", n.Type, "error", err)
		return
	}
	notificationsDispatched.WithLabelValues("sent").Inc()
}

// Dispatch queues n without blocking. It reports false when the queue is
// full or the dispatcher has stopped.
func (d *NotificationDispatcher) Dispatch(n *notification.Notification) bool {
	select {
	case <-d.stopChan:
		return false
	default:
	}

	select {
	case d.jobQueue <- n:
		return true
	default:
		notificationsDispatched.WithLabelValues("dropped").Inc()
		d.log.Warn("notification queue full, dropping", "user_id", n.UserID, "type", n.Type)
		return false
	}
}

// Stop terminates the workers. Queued jobs that were not picked up are dropped.
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.log.Info("stopping notification dispatcher")
		close(d.stopChan)
		d.wg.Wait()
	})
}
