package diaries

import (
	"fmt"

	"github.com/julianstephens/tokumei/internal/cli"
	"github.com/julianstephens/tokumei/internal/constants"
)

type ReadCmd struct {
	Full bool `help:"Print whole entries instead of previews."`
}

func (c *ReadCmd) Run(ctx *cli.Context) error {
	sess, _, err := ctx.Bootstrapped()
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	batch, err := sess.Acquire(ctx.Context())
	if err != nil {
		if msg := sess.Snapshot().Message; !msg.Empty() {
			ctx.Println(msg.Text)
		}
		return err
	}

	view := sess.Snapshot()
	if len(batch) > 0 {
		cli.RenderDiaries(ctx.Writer(), batch, loc, cli.ListOptions{Title: "Received", Full: c.Full})
	}
	ctx.Println(view.Message.Text)
	if remaining := constants.MaxReceivesPerDay - view.Daily.ReceivedCount; remaining > 0 {
		ctx.Printf("%d receive(s) left today.\n", remaining)
	}
	if len(batch) > 0 && view.Daily.CanSave() {
		fmt.Fprintln(ctx.Writer(), "Keep one with: tokumei save <id>")
	}
	return nil
}
