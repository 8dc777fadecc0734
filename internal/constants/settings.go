package constants

const (
	SettingAPIURL               = "api_url"
	SettingTimezone             = "timezone"
	SettingNotificationsEnabled = "notifications_enabled"
	SettingIdentityBackend      = "identity_backend"
	SettingRequestsPerSecond    = "requests_per_second"

	// Default Settings Values
	DefaultTimezone             = "Local" // Use system local timezone by default
	DefaultNotificationsEnabled = true
	DefaultIdentityBackend      = IdentityBackendStore
)
