package lock

import (
	"context"
	"errors"
)

// ErrBusy is returned when another mutation holds the key.
var ErrBusy = errors.New("resource is busy")

// Locker hands out short-lived exclusive holds on a key. The returned
// release func is safe to call more than once.
type Locker interface {
	TryAcquire(ctx context.Context, key string) (release func(), err error)
}

// HabitKey is the lock key guarding mutations of one habit's completions.
func HabitKey(habitID string) string {
	return "habit:" + habitID
}
