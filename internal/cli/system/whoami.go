package system

import (
	"github.com/julianstephens/tokumei/internal/cli"
)

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	_, userID, err := ctx.Bootstrapped()
	if err != nil {
		return err
	}
	ctx.Println(userID)
	return nil
}
