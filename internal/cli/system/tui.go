package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tokumei/internal/cli"
	"github.com/julianstephens/tokumei/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		tui.New(ctx.Context(), sess, loc),
		tea.WithAltScreen(),
		tea.WithContext(ctx.Context()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interactive UI: %w", err)
	}
	return nil
}
