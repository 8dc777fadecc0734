package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/julianstephens/tokumei/internal/pkg/json"
)

// Sentinel errors for diary service operations.
var (
	ErrNotFound    = errors.New("diary service: not found")
	ErrRateLimited = errors.New("diary service: rate limited by server")
	ErrBadRequest  = errors.New("diary service: request rejected")
	ErrServer      = errors.New("diary service: server error")
	ErrUnexpected  = errors.New("diary service: unexpected response")
)

// Error describes a non-2xx response. Detail holds the server's "detail"
// message verbatim when the body carried one.
type Error struct {
	Op     string // "initUser", "createDiary", "todayDiaries", ...
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Detail, e.Status)
	}
	return fmt.Sprintf("%s: %v (status %d)", e.Op, e.Err, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail returns the server-provided detail carried by err, if any.
func Detail(err error) (string, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail, true
	}
	return "", false
}

func statusError(status int) error {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	case status >= 400:
		return ErrBadRequest
	default:
		return ErrUnexpected
	}
}

// parseDetail extracts the "detail" member of an error body. A string detail
// is returned as is; a list of validation issues is joined by their messages.
func parseDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return ""
	}

	switch d := payload.Detail.(type) {
	case string:
		return d
	case []any:
		msgs := make([]string, 0, len(d))
		for _, item := range d {
			if m, ok := item.(map[string]any); ok {
				if msg, ok := m["msg"].(string); ok {
					msgs = append(msgs, msg)
				}
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
