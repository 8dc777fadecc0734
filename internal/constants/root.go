package constants

// SessionState represents the active view of the TUI application
type SessionState int

// IdentityBackend selects where the anonymous identity token is persisted
type IdentityBackend string

const (
	AppName             = "tokumei"
	DefaultKeyringUser  = "database-connection"
	IdentityKeyringUser = "user-id"
	DefaultConfigPath   = "~/.config/tokumei/tokumei.db"
	DefaultConfigFile   = "~/.config/tokumei/config.yaml"
	DefaultAPIURL       = "https://dialy-app-backend.onrender.com"
	Version             = "v0.1.0"

	// Environment overrides
	EnvDBConnection = "TOKUMEI_DB_CONNECTION"
	EnvConfigFile   = "TOKUMEI_CONFIG_FILE"

	// IdentityKey is the fixed local store key holding the identity token
	IdentityKey = "user_id"

	// MaxReceivesPerDay caps acquisition calls per calendar day
	MaxReceivesPerDay = 5

	// Daily marker schema: <MarkerPrefix>:<user id>:<name>
	MarkerPrefix       = "daily"
	MarkerLastPosted   = "last_posted_date"
	MarkerLastReceived = "last_received_date"
	MarkerReceiveCount = "received_count"
	MarkerLastSaved    = "last_saved_date"

	// NotifyPrefix namespaces the notification watermark: <NotifyPrefix>:<user id>:seen
	NotifyPrefix  = "notify"
	NotifySeenKey = "seen"

	// Identity backends
	IdentityBackendStore   IdentityBackend = "store"
	IdentityBackendKeyring IdentityBackend = "keyring"

	// Notify constants
	NotifierLockfileName   = "tokumei-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.tokumei"
	TrayExecutablePrefix   = "tokumei-tray"

	// API client defaults
	DefaultRequestsPerSecond = 5
	DefaultRequestBurst      = 5
	PreviewLength            = 60
	RequestIDHeader          = "X-Request-ID"
)

// Session States
const (
	StateWrite SessionState = iota
	StateRead
	StateCollection
	StateNotifications
	StateMine
	StateEditing
	StateInspect
	StateConfirmSave
)

// MainStates lists the tabbed views in display order.
var MainStates = []SessionState{StateWrite, StateRead, StateCollection, StateNotifications, StateMine}
