package diaries

import (
	"github.com/julianstephens/tokumei/internal/cli"
)

type SaveCmd struct {
	DiaryID string `arg:"" help:"ID of the received diary to keep."`
}

func (c *SaveCmd) Run(ctx *cli.Context) error {
	sess, _, err := ctx.Bootstrapped()
	if err != nil {
		return err
	}

	err = sess.Save(ctx.Context(), c.DiaryID)
	if msg := sess.Snapshot().Message; !msg.Empty() {
		ctx.Println(msg.Text)
	}
	return err
}
