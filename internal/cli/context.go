package cli

import (
	"io"

	"resolveAPI/internal/store"
	"resolveAPI/services"
)

// Context is shared by every resolvectl command.
type Context struct {
	Store   store.Store
	Goals   *services.GoalService
	Streaks *services.StreakService
	Out     io.Writer
}
