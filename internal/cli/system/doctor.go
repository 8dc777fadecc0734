package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tokumei/internal/cli"
	"github.com/julianstephens/tokumei/internal/identity"
	"github.com/julianstephens/tokumei/internal/keyring"
	"github.com/julianstephens/tokumei/internal/notifier"
)

// warning marks a check result that is reported but does not fail doctor.
type warning struct{ msg string }

func (w warning) Error() string { return w.msg }

func warnf(format string, args ...any) error {
	return warning{msg: fmt.Sprintf(format, args...)}
}

type check struct {
	name string
	// needsDB checks are skipped when the database is unreachable
	needsDB bool
	run     func(*cli.Context) error
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Settings", needsDB: true, run: checkSettings},
	{name: "Clock/timezone", needsDB: true, run: checkClockTimezone},
	{name: "Identity", needsDB: true, run: checkIdentity},
	{name: "OS keyring", run: checkKeyring},
	{name: "API reachable", needsDB: true, run: checkAPIReachable},
	{name: "Tray notifier", run: checkTray},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	for i, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		var w warning
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.As(err, &w):
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if i == 0 {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, _, err := ctx.Store.Get("doctor:ping"); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'tokumei migrate')", current, latest)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	_, err := ctx.Settings()
	return err
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, err := ctx.Location(); err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	return nil
}

func checkIdentity(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	_, ok, err := identity.NewStore(settings.IdentityBackend, ctx.Store).Get()
	if err != nil {
		return fmt.Errorf("failed to read identity: %w", err)
	}
	if !ok {
		return warnf("no identity yet; one is issued on first use")
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return warnf("OS keyring is not available; the keyring identity backend and stored connection strings will not work")
	}
	return nil
}

func checkAPIReachable(ctx *cli.Context) error {
	client, err := ctx.Client()
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx.Context(), 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		return fmt.Errorf("%s: %w", client.BaseURL(), err)
	}
	return nil
}

func checkTray(ctx *cli.Context) error {
	if !notifier.New().Available() {
		return warnf("tokumei-tray is not running; 'tokumei notify' will have nowhere to deliver")
	}
	return nil
}
