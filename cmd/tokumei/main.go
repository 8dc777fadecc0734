package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/tokumei/internal/cli"
	"github.com/julianstephens/tokumei/internal/cli/diaries"
	"github.com/julianstephens/tokumei/internal/cli/settings"
	"github.com/julianstephens/tokumei/internal/cli/system"
	"github.com/julianstephens/tokumei/internal/config"
	"github.com/julianstephens/tokumei/internal/constants"
	apperrors "github.com/julianstephens/tokumei/internal/errors"
	"github.com/julianstephens/tokumei/internal/keyring"
	"github.com/julianstephens/tokumei/internal/logger"
	"github.com/julianstephens/tokumei/internal/storage"
	"github.com/julianstephens/tokumei/internal/utils"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string        `help:"Database path or PostgreSQL connection string. Falls back to $TOKUMEI_DB_CONNECTION, then the OS keyring." type:"string"`
	DebugLog bool          `name:"debug" help:"Enable debug logging."`
	APIURL   string        `name:"api-url" help:"Override the diary service base URL for this run."`
	Timeout  time.Duration `help:"Per-request timeout for the diary service. Zero leaves the transport default." default:"0s"`

	Init     system.InitCmd     `cmd:"" help:"Initialize tokumei storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Whoami   system.WhoamiCmd   `cmd:"" help:"Show the anonymous identity."`
	Status   system.StatusCmd   `cmd:"" help:"Show today's posting, receiving and saving state."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage the database connection string in the OS keyring."`
	Notify   system.NotifyCmd   `cmd:"" help:"Notify the tray app about new saves of your diaries."`
	Backup   system.BackupCmd   `cmd:"" help:"Manage snapshots of the local SQLite database."`
	Debug    system.DebugCmd    `cmd:"" help:"Debug commands for troubleshooting."`

	Write         diaries.WriteCmd         `cmd:"" help:"Post today's diary."`
	Read          diaries.ReadCmd          `cmd:"" help:"Receive diaries written by others today."`
	Save          diaries.SaveCmd          `cmd:"" help:"Keep one received diary in your collection."`
	Collection    diaries.CollectionCmd    `cmd:"" help:"List diaries you have saved."`
	Mine          diaries.MineCmd          `cmd:"" help:"List diaries you have written."`
	Notifications diaries.NotificationsCmd `cmd:"" help:"List your diaries that others saved."`

	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
}

// resolveConfig picks the database location: flag, then environment, then
// keyring, then the default path.
func resolveConfig(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(constants.EnvDBConnection); env != "" {
		return env
	}
	if connStr, err := keyring.GetConnectionString(); err == nil && connStr != "" {
		return connStr
	}
	return constants.DefaultConfigPath
}

// logDir keeps logs next to a SQLite database, or in the default config
// directory for PostgreSQL.
func logDir(config string) string {
	if !utils.IsConnString(config) {
		if path, err := utils.ExpandPath(config); err == nil {
			return filepath.Dir(path)
		}
	}
	path, err := utils.ExpandPath(constants.DefaultConfigPath)
	if err != nil {
		return "."
	}
	return filepath.Dir(path)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Anonymous daily diary exchange"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
		config.Option(),
	)

	command := ctx.Command()
	dbConfig := resolveConfig(CLI.Config)

	if err := logger.Init(logger.Config{
		Debug:     CLI.DebugLog,
		ConfigDir: logDir(dbConfig),
		Console:   command != "tui",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	store, err := storage.Open(dbConfig)
	if err != nil {
		apperrors.Fatal(err)
	}

	// init and keyring manage storage themselves
	if ctx.Selected() != nil && ctx.Selected().Name != "init" && !isKeyringCommand(command) {
		if err := store.Load(); err != nil {
			apperrors.Fatal(apperrors.WithHint(err, "run `tokumei init` to create the database"))
		}
	}
	defer store.Close()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &cli.Context{
		Store:   store,
		APIURL:  CLI.APIURL,
		Timeout: CLI.Timeout,
		Ctx:     runCtx,
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		stop()
		apperrors.Fatal(err)
	}
}

func isKeyringCommand(command string) bool {
	return strings.HasPrefix(command, "keyring")
}
