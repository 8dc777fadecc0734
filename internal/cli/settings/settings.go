package settings

import (
	"fmt"

	"github.com/julianstephens/tokumei/internal/cli"
	"github.com/julianstephens/tokumei/internal/constants"
	"github.com/julianstephens/tokumei/internal/validation"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	APIURL               *string  `name:"api-url" help:"Base URL of the diary service."`
	Timezone             *string  `help:"IANA timezone that decides when a day starts, or Local."`
	NotificationsEnabled *bool    `help:"Enable or disable notifications."`
	IdentityBackend      *string  `help:"Where the identity is kept (store or keyring)."`
	RequestsPerSecond    *float64 `help:"Maximum API requests per second; 0 disables throttling."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  API URL:               %s\n", settings.APIURL)
		ctx.Printf("  Timezone:              %s\n", settings.Timezone)
		ctx.Printf("  Identity Backend:      %s\n", settings.IdentityBackend)
		ctx.Printf("  Requests Per Second:   %g\n", settings.RequestsPerSecond)
		ctx.Println("\nNotification Settings:")
		ctx.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
		return nil
	}

	updated := false
	if c.APIURL != nil {
		settings.APIURL = *c.APIURL
		updated = true
	}
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.IdentityBackend != nil && *c.IdentityBackend != "" {
		settings.IdentityBackend = constants.IdentityBackend(*c.IdentityBackend)
		updated = true
	}
	if c.RequestsPerSecond != nil {
		settings.RequestsPerSecond = *c.RequestsPerSecond
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := validation.Default().Validate(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println("Settings updated successfully.")
	return nil
}
