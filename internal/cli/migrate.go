package cli

import (
	"context"
	"fmt"

	"habittracker/migrations"
	"habittracker/pkg/db"
)

type MigrateCmd struct {
	Status bool `help:"Print the current schema version without applying anything."`
}

func (c *MigrateCmd) Run(app *Context) error {
	pool, err := app.Pool()
	if err != nil {
		return err
	}
	migrator := db.NewMigrator(pool, migrations.FS, app.Logger)
	ctx := context.Background()

	if c.Status {
		version, err := migrator.CurrentVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.Out, "schema version: %d\n", version)
		return nil
	}

	applied, err := migrator.Up(ctx)
	if err != nil {
		return err
	}
	version, err := migrator.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "applied %d migration(s), schema version %d\n", applied, version)
	return nil
}
