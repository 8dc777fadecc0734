package diaries

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tokumei/internal/cli"
	"github.com/julianstephens/tokumei/internal/session"
)

// promptContent asks for the entry interactively. Tests replace it.
var promptContent = func() (string, error) {
	var content string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Today's diary").
				Description("Nobody will know it was you.").
				CharLimit(4000).
				Value(&content),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", nil
	}
	return content, err
}

type WriteCmd struct {
	Content []string `arg:"" optional:"" help:"Diary text. Opens an editor prompt when omitted."`
}

func (c *WriteCmd) Run(ctx *cli.Context) error {
	sess, _, err := ctx.Bootstrapped()
	if err != nil {
		return err
	}

	state, err := sess.Daily()
	if err != nil {
		return err
	}
	if state.HasPostedToday {
		return fmt.Errorf("%w; come back tomorrow", session.ErrAlreadyPosted)
	}

	content := strings.Join(c.Content, " ")
	if strings.TrimSpace(content) == "" {
		if content, err = promptContent(); err != nil {
			return fmt.Errorf("prompt failed: %w", err)
		}
	}

	err = sess.Submit(ctx.Context(), content)
	if msg := sess.Snapshot().Message; !msg.Empty() {
		ctx.Println(msg.Text)
	}
	return err
}
