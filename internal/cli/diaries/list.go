package diaries

import (
	"context"

	"github.com/julianstephens/tokumei/internal/cli"
	"github.com/julianstephens/tokumei/internal/models"
	"github.com/julianstephens/tokumei/internal/session"
)

type listFlags struct {
	Full bool `help:"Print whole entries instead of previews."`
}

func runList(ctx *cli.Context, full bool, fetch func(*session.Session, context.Context) error, pick func(session.View) []models.Diary, opts cli.ListOptions) error {
	sess, _, err := ctx.Bootstrapped()
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	if err := fetch(sess, ctx.Context()); err != nil {
		return err
	}

	opts.Full = full
	cli.RenderDiaries(ctx.Writer(), pick(sess.Snapshot()), loc, opts)
	return nil
}

type CollectionCmd struct {
	listFlags
}

func (c *CollectionCmd) Run(ctx *cli.Context) error {
	return runList(ctx, c.Full, (*session.Session).RefreshSaved,
		func(v session.View) []models.Diary { return v.Saved },
		cli.ListOptions{Title: "Collection", Empty: "Your collection is empty.", ShowSaved: true},
	)
}

type MineCmd struct {
	listFlags
}

func (c *MineCmd) Run(ctx *cli.Context) error {
	return runList(ctx, c.Full, (*session.Session).RefreshMine,
		func(v session.View) []models.Diary { return v.Mine },
		cli.ListOptions{Title: "Your diaries", Empty: "You haven't written anything yet.", ShowSaves: true},
	)
}

type NotificationsCmd struct {
	listFlags
}

func (c *NotificationsCmd) Run(ctx *cli.Context) error {
	return runList(ctx, c.Full, (*session.Session).RefreshNotifications,
		func(v session.View) []models.Diary { return v.Notifications },
		cli.ListOptions{Title: "Saved by others", Empty: "No notifications yet.", ShowSaves: true},
	)
}
