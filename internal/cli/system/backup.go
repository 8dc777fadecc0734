package system

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tokumei/internal/backup"
	"github.com/julianstephens/tokumei/internal/cli"
	apperrors "github.com/julianstephens/tokumei/internal/errors"
	"github.com/julianstephens/tokumei/internal/utils"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Snapshot the local database." default:"1"`
	List    BackupListCmd    `cmd:"" help:"List available snapshots."`
	Restore BackupRestoreCmd `cmd:"" help:"Replace the local database with a snapshot."`
}

var errBackupPostgres = apperrors.WithHint(
	errors.New("backups are only available for the SQLite store"),
	"use pg_dump for PostgreSQL databases",
)

var confirmRestore = func(name string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title("Restore " + name + "?").
		Description("The current database is snapshotted first.").
		Affirmative("Restore").
		Negative("Cancel").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func backupManager(ctx *cli.Context) (*backup.Manager, error) {
	path := ctx.Store.GetConfigPath()
	if utils.IsConnString(path) {
		return nil, errBackupPostgres
	}
	var opts []backup.Option
	if ctx.Clock != nil {
		opts = append(opts, backup.WithClock(ctx.Clock))
	}
	return backup.NewManager(path, opts...), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	info, err := mgr.Create()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Printf("✓ Backup created: %s\n", info.Name())
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return err
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	ctx.Printf("Available backups (%d, keeping the newest %d):\n\n", len(backups), backup.DefaultKeep)
	for _, b := range backups {
		ctx.Printf("  %s  %s  (%.1f KB)\n", b.Created.Format("2006-01-02 15:04:05"), b.Name(), float64(b.Size)/1024.0)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	File string `arg:"" help:"Snapshot file name or path."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Resolve(c.File)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := confirmRestore(filepath.Base(path))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	safety, err := mgr.Restore(path)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	if safety.Path != "" {
		ctx.Printf("Previous database saved as: %s\n", safety.Name())
	}
	ctx.Printf("✓ Restored %s\n", filepath.Base(path))
	return nil
}
