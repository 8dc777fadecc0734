package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Diary is a single anonymous diary entry as returned by the remote service.
// The same shape is used for received, saved, authored and notification entries.
type Diary struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	CreatedAt  Timestamp  `json:"created_at"`
	SavedCount *int       `json:"saved_count,omitempty"` // set on authored entries
	SavedAt    *Timestamp `json:"saved_at,omitempty"`    // set on saved entries
}

// Saves returns the saved count, or 0 when the service did not report one.
func (d Diary) Saves() int {
	if d.SavedCount == nil {
		return 0
	}
	return *d.SavedCount
}

// Preview returns the content on a single line, truncated to n runes.
func (d Diary) Preview(n int) string {
	text := strings.Join(strings.Fields(d.Content), " ")
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// timestampLayouts are tried in order. The service emits naive ISO-8601
// timestamps for some endpoints, which are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a time.Time that accepts the timestamp variants the service produces.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses s using the accepted layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Timestamp{Time: t}, nil
		}
		lastErr = err
	}
	return Timestamp{}, lastErr
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
