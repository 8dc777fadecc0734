package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/tokumei/internal/cli"
	"github.com/julianstephens/tokumei/internal/daily"
	"github.com/julianstephens/tokumei/internal/identity"
	"github.com/julianstephens/tokumei/internal/pkg/json"
)

type DebugCmd struct {
	DBPath  DebugDBPathCmd  `cmd:"" name:"db-path" help:"Show database path."`
	Markers DebugMarkersCmd `cmd:"" help:"Dump the raw daily markers for the stored identity as JSON."`
	KV      DebugKVCmd      `cmd:"" name:"kv" help:"Dump local key/value entries as JSON."`
	Reset   DebugResetCmd   `cmd:"" name:"reset-day" help:"Delete the local daily markers. The service keeps its own limits."`
}

func printJSON(ctx *cli.Context, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(out))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Store.GetConfigPath()})
}

// DebugMarkersCmd reads the markers as stored, without the day-boundary
// reset a normal load performs.
type DebugMarkersCmd struct{}

func (cmd *DebugMarkersCmd) Run(ctx *cli.Context) error {
	userID, tracker, err := storedIdentity(ctx)
	if err != nil {
		return err
	}
	markers, err := tracker.Markers(userID)
	if err != nil {
		return fmt.Errorf("failed to read markers: %w", err)
	}

	out := make(map[string]string, len(markers))
	for name, v := range markers {
		out[string(name)] = v
	}
	return printJSON(ctx, map[string]any{
		"user_id": userID,
		"markers": out,
	})
}

// storedIdentity reads the identity without contacting the service.
func storedIdentity(ctx *cli.Context) (string, *daily.Tracker, error) {
	settings, err := ctx.Settings()
	if err != nil {
		return "", nil, err
	}
	userID, ok, err := identity.NewStore(settings.IdentityBackend, ctx.Store).Get()
	if err != nil {
		return "", nil, fmt.Errorf("failed to read identity: %w", err)
	}
	if !ok {
		return "", nil, errors.New("no identity stored")
	}
	tracker, err := ctx.Tracker()
	if err != nil {
		return "", nil, err
	}
	return userID, tracker, nil
}

type DebugResetCmd struct{}

func (cmd *DebugResetCmd) Run(ctx *cli.Context) error {
	userID, tracker, err := storedIdentity(ctx)
	if err != nil {
		return err
	}
	if err := tracker.Reset(userID); err != nil {
		return fmt.Errorf("failed to reset markers: %w", err)
	}
	ctx.Println("Local daily markers cleared.")
	return nil
}

type DebugKVCmd struct {
	Prefix string `arg:"" optional:"" help:"Only show keys starting with this prefix."`
}

func (cmd *DebugKVCmd) Run(ctx *cli.Context) error {
	pairs, err := ctx.Store.List(cmd.Prefix)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}
	return printJSON(ctx, pairs)
}
