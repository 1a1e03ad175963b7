package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

type RecomputeGoalCmd struct {
	GoalID string `arg:"" optional:"" help:"Goal to recompute."`
	User   string `help:"Recompute every goal of this user instead."`
}

func (c *RecomputeGoalCmd) Run(ctx *Context) error {
	bg := context.Background()

	switch {
	case c.GoalID != "" && c.User != "":
		return errors.New("pass either a goal id or --user, not both")
	case c.GoalID != "":
		res, err := ctx.Goals.RecomputeProgress(bg, c.GoalID)
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.Out, "%s: %d%% (value %.2f)\n", c.GoalID, res.Progress, res.CurrentValue)
		return nil
	case c.User != "":
		results, err := ctx.Goals.RecomputeAll(bg, c.User)
		ids := make([]string, 0, len(results))
		for id := range results {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(ctx.Out, "%s: %d%% (value %.2f)\n", id, results[id].Progress, results[id].CurrentValue)
		}
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(ctx.Out, "No goals found")
		}
		return nil
	default:
		return errors.New("a goal id or --user is required")
	}
}
