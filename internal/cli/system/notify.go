package system

import (
	"context"

	"github.com/julianstephens/tokumei/internal/cli"
	"github.com/julianstephens/tokumei/internal/logger"
	"github.com/julianstephens/tokumei/internal/notifier"
)

// Sender delivers one desktop notification.
type Sender interface {
	Notify(ctx context.Context, text string) error
}

var newSender = func() Sender { return notifier.New() }

// NotifyCmd forwards saves of the user's entries that have not been
// forwarded before. It runs once per invocation.
type NotifyCmd struct {
	DryRun bool `help:"Print notifications to stdout instead of sending them."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if !settings.NotificationsEnabled {
		if c.DryRun {
			ctx.Println("Notifications are disabled in settings.")
		}
		return nil
	}

	sess, userID, err := ctx.Bootstrapped()
	if err != nil {
		return err
	}
	if err := sess.RefreshNotifications(ctx.Context()); err != nil {
		return err
	}

	prev, err := notifier.LoadSeen(ctx.Store, userID)
	if err != nil {
		return err
	}
	events, next := notifier.Diff(prev, sess.Snapshot().Notifications)
	if len(events) == 0 {
		if c.DryRun {
			ctx.Println("No new notifications.")
		}
		return nil
	}

	if c.DryRun {
		for _, e := range events {
			ctx.Println("[DryRun] " + e.Text())
		}
		return nil
	}

	sender := newSender()
	for _, e := range events {
		if err := sender.Notify(ctx.Context(), e.Text()); err != nil {
			// retried on the next run
			logger.Warn("failed to send notification", "diary_id", e.Diary.ID, "error", err)
			ctx.Printf("Failed to send notification: %v\n", err)
			if seen, ok := prev[e.Diary.ID]; ok {
				next[e.Diary.ID] = seen
			} else {
				delete(next, e.Diary.ID)
			}
		}
	}
	return notifier.StoreSeen(ctx.Store, userID, next)
}
