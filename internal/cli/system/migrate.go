package system

import (
	"fmt"

	"github.com/julianstephens/tokumei/internal/cli"
	"github.com/julianstephens/tokumei/internal/utils"
)

type MigrateCmd struct {
	NoBackup bool `help:"Skip the SQLite snapshot taken before applying migrations."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	current, latest, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current < latest && !c.NoBackup && !utils.IsConnString(ctx.Store.GetConfigPath()) {
		mgr, err := backupManager(ctx)
		if err != nil {
			return err
		}
		info, err := mgr.Create()
		if err != nil {
			return fmt.Errorf("failed to back up before migrating: %w", err)
		}
		ctx.Printf("Backup created: %s\n", info.Name())
	}

	count, err := ctx.Store.Migrate(func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
