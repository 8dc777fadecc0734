package system

import (
	"github.com/julianstephens/tokumei/internal/cli"
	"github.com/julianstephens/tokumei/internal/constants"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	sess, _, err := ctx.Bootstrapped()
	if err != nil {
		return err
	}
	state, err := sess.Daily()
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	ctx.Printf("Today:    %s (%s)\n", state.Today, loc)
	ctx.Printf("Posted:   %s\n", yesNo(state.HasPostedToday))
	ctx.Printf("Received: %d/%d\n", state.ReceivedCount, constants.MaxReceivesPerDay)
	ctx.Printf("Saved:    %s\n", yesNo(state.HasSavedToday))
	ctx.Println()

	switch {
	case state.CanPost():
		ctx.Println("Next: write today's diary with 'tokumei write'.")
	case state.CanReceive():
		ctx.Printf("Next: read others' diaries with 'tokumei read' (%d left).\n", state.RemainingReceives())
	case state.CanSave():
		ctx.Println("Next: keep a favorite with 'tokumei save <id>'.")
	default:
		ctx.Println("All done for today.")
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
