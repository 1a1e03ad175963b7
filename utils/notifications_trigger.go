package utils

import (
	"fmt"

	"resolveAPI/internal/types/notification"
)

// NotificationEnqueuer is the one method the triggers need from the
// notification service.
type NotificationEnqueuer interface {
	Enqueue(n *notification.Notification) bool
}

// StreakMilestones are the current-streak lengths that earn a push.
var StreakMilestones = []int{7, 30, 100, 365}

func IsStreakMilestone(days int) bool {
	for _, m := range StreakMilestones {
		if days == m {
			return true
		}
	}
	return false
}

// StreakMilestoneReached queues a milestone push when days is a milestone.
// It reports whether a notification was queued.
func StreakMilestoneReached(notifier NotificationEnqueuer, userID, habitID, habitName string, days int) bool {
	if notifier == nil || !IsStreakMilestone(days) {
		return false
	}

	return notifier.Enqueue(&notification.Notification{
		UserID: userID,
		Type:   notification.TypeStreakMilestone,
		Title:  fmt.Sprintf("%d day streak!", days),
		Body:   fmt.Sprintf("You've kept up %q for %d days in a row.", habitName, days),
		Data: map[string]any{
			"habit_id": habitID,
			"streak":   days,
		},
	})
}
