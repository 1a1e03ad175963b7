package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"resolveAPI/internal/cli"
	"resolveAPI/internal/config"
	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/store"
	"resolveAPI/internal/store/postgres"
	"resolveAPI/internal/store/sqlite"
	"resolveAPI/services"
)

var CLI struct {
	Version     kong.VersionFlag
	Driver      string `help:"Store driver (postgres or sqlite)." env:"STORE_DRIVER" enum:"postgres,sqlite" default:"sqlite"`
	DatabaseURL string `help:"Postgres connection string." env:"DATABASE_URL"`
	SQLitePath  string `help:"SQLite database file." env:"SQLITE_PATH" type:"path" default:"resolve.db"`
	Timezone    string `help:"Timezone that defines today." env:"TIMEZONE" default:"UTC"`
	LogFile     string `help:"Also write logs to this file." env:"LOG_FILE"`

	Migrate       cli.MigrateCmd       `cmd:"" help:"Create or update the database schema."`
	RecomputeGoal cli.RecomputeGoalCmd `cmd:"" help:"Recompute stored goal progress."`
	Streaks       cli.StreaksCmd       `cmd:"" help:"Show a user's habit streaks."`
	Token         cli.TokenCmd         `cmd:"" help:"Issue a local session token."`
}

func main() {
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI,
		kong.Name("resolvectl"),
		kong.Description("Admin tool for the resolve habit and goal API"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	appCtx := &cli.Context{Out: os.Stdout}

	if !strings.HasPrefix(kctx.Command(), "token") {
		log, err := logger.New("cli", CLI.LogFile)
		if err != nil {
			fatal(err)
		}
		defer log.Sync()

		loc, err := time.LoadLocation(CLI.Timezone)
		if err != nil {
			fatal(fmt.Errorf("invalid timezone %q: %w", CLI.Timezone, err))
		}

		st, err := openStore()
		if err != nil {
			fatal(err)
		}
		defer st.Close()

		clock := services.NewClock(loc)
		appCtx.Store = st
		appCtx.Goals = services.NewGoalService(st, clock, log)
		appCtx.Streaks = services.NewStreakService(st, clock, log)
	}

	if err := kctx.Run(appCtx); err != nil {
		fatal(err)
	}
}

func openStore() (store.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch CLI.Driver {
	case config.StoreDriverPostgres:
		if CLI.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		return postgres.New(ctx, CLI.DatabaseURL)
	default:
		return sqlite.Open(ctx, CLI.SQLitePath)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
