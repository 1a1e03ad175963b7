package cli

import (
	"errors"
	"fmt"
	"time"

	"resolveAPI/internal/auth"
)

// TokenCmd mints a session token for AUTH_MODE=local.
type TokenCmd struct {
	User   string        `required:"" help:"Subject of the token."`
	Secret string        `env:"LOCAL_JWT_SECRET" help:"Signing secret."`
	TTL    time.Duration `default:"24h" help:"Token lifetime."`
}

func (c *TokenCmd) Run(ctx *Context) error {
	if c.Secret == "" {
		return errors.New("LOCAL_JWT_SECRET is not set")
	}
	token, err := auth.NewLocalVerifier(c.Secret).IssueToken(c.User, c.TTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, token)
	return nil
}
