package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DisplayTimeFormat is used when rendering diary timestamps
	DisplayTimeFormat = "2006-01-02 15:04"
)
