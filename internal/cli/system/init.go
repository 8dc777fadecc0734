package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/tokumei/internal/cli"
)

type InitCmd struct {
	Force     bool `help:"Force reset by deleting existing database before initialization."`
	Bootstrap bool `help:"Also obtain an anonymous identity from the service."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			// close first so the file is not locked
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized tokumei storage at: %s\n", ctx.Store.GetConfigPath())

	if !c.Bootstrap {
		return nil
	}
	_, userID, err := ctx.Bootstrapped()
	if err != nil {
		return err
	}
	ctx.Printf("Identity: %s\n", userID)
	return nil
}
