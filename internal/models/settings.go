package models

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/julianstephens/tokumei/internal/constants"
)

// Settings represents application-wide settings
type Settings struct {
	// APIURL is the base URL of the diary service.
	APIURL string `json:"api_url" validate:"required,url"`
	// Timezone is the IANA name used to decide "today", or "Local".
	Timezone string `json:"timezone" validate:"tzname"`
	// NotificationsEnabled controls whether `notify` forwards to the tray app.
	NotificationsEnabled bool `json:"notifications_enabled"`
	// IdentityBackend selects where the identity token lives.
	IdentityBackend constants.IdentityBackend `json:"identity_backend" validate:"oneof=store keyring"`
	// RequestsPerSecond throttles API calls; 0 disables throttling.
	RequestsPerSecond float64 `json:"requests_per_second" validate:"gte=0,lte=100"`
}

// DefaultSettings returns the settings written by `init`.
func DefaultSettings() Settings {
	return Settings{
		APIURL:               constants.DefaultAPIURL,
		Timezone:             constants.DefaultTimezone,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		IdentityBackend:      constants.DefaultIdentityBackend,
		RequestsPerSecond:    constants.DefaultRequestsPerSecond,
	}
}

// Pairs flattens settings into the key/value rows stored in the settings table.
func (s Settings) Pairs() map[string]string {
	return map[string]string{
		constants.SettingAPIURL:               s.APIURL,
		constants.SettingTimezone:             s.Timezone,
		constants.SettingNotificationsEnabled: strconv.FormatBool(s.NotificationsEnabled),
		constants.SettingIdentityBackend:      string(s.IdentityBackend),
		constants.SettingRequestsPerSecond:    strconv.FormatFloat(s.RequestsPerSecond, 'f', -1, 64),
	}
}

// SettingsFromPairs rebuilds settings from stored rows. Missing keys keep their defaults.
func SettingsFromPairs(pairs map[string]string) (Settings, error) {
	settings := DefaultSettings()
	for key, value := range pairs {
		switch key {
		case constants.SettingAPIURL:
			settings.APIURL = value
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingIdentityBackend:
			settings.IdentityBackend = constants.IdentityBackend(value)
		case constants.SettingRequestsPerSecond:
			rps, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", constants.SettingRequestsPerSecond, err)
			}
			settings.RequestsPerSecond = rps
		}
	}
	return settings, nil
}

// ErrSettingsNotFound is returned by stores whose settings table is empty.
var ErrSettingsNotFound = errors.New("settings not found")
