package cli

import (
	"context"
	"fmt"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	if err := ctx.Store.Migrate(context.Background()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintln(ctx.Out, "Schema is up to date")
	return nil
}
