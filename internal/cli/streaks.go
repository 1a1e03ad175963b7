package cli

import (
	"context"
	"fmt"
)

type StreaksCmd struct {
	User string `required:"" help:"User whose streaks to show."`
}

func (c *StreaksCmd) Run(ctx *Context) error {
	streaks, err := ctx.Streaks.GetAllStreaks(context.Background(), c.User)
	if err != nil {
		return err
	}
	if len(streaks) == 0 {
		fmt.Fprintln(ctx.Out, "No habits found")
		return nil
	}

	fmt.Fprintln(ctx.Out, "Streaks:")
	for _, s := range streaks {
		last := "never"
		if s.LastCompletedDate != nil {
			last = *s.LastCompletedDate
		}
		fmt.Fprintf(ctx.Out, "  %s - current %d, longest %d, %d completions (last %s)\n",
			s.HabitName, s.CurrentStreak, s.LongestStreak, s.TotalCompletions, last)
	}
	return nil
}
