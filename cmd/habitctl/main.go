package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"habittracker/internal/cli"
	"habittracker/internal/config"
	"habittracker/pkg/logger"
)

var version = "dev"

var CLI struct {
	Version     kong.VersionFlag
	ConfigEnv   string `help:"Config environment (config/<env>.yaml)." env:"CONFIG_ENV" default:"local"`
	ConfigDir   string `help:"Config directory." env:"CONFIG_DIR" default:"config" type:"path"`
	DatabaseURL string `help:"PostgreSQL URL; overrides the db section." env:"DATABASE_URL"`

	Migrate      cli.MigrateCmd      `cmd:"" help:"Apply pending schema migrations."`
	Seed         cli.SeedCmd         `cmd:"" help:"Reset the tracker and create today's sample task."`
	HashPassword cli.HashPasswordCmd `cmd:"" help:"Print a bcrypt hash for auth.password_hash."`
	Token        cli.TokenCmd        `cmd:"" help:"Issue an owner token signed with auth.jwt_secret."`
	Replay       cli.ReplayCmd       `cmd:"" help:"Re-publish outbox events."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("habitctl"),
		kong.Description("Habit tracker administration"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	cfg, err := config.LoadFrom(CLI.ConfigEnv, CLI.ConfigDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Log.Development = true
	log := logger.NewLogger(cfg.Log)
	defer log.Sync()

	appCtx := &cli.Context{
		Config:      cfg,
		Logger:      log,
		Out:         os.Stdout,
		DatabaseURL: CLI.DatabaseURL,
	}
	defer appCtx.Close()

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
