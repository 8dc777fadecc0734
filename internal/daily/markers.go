// Package daily derives per-day action eligibility from persisted markers.
package daily

import (
	"github.com/julianstephens/tokumei/internal/constants"
)

// Name identifies one marker within a user's daily namespace.
type Name string

const (
	LastPosted   Name = constants.MarkerLastPosted
	LastReceived Name = constants.MarkerLastReceived
	ReceiveCount Name = constants.MarkerReceiveCount
	LastSaved    Name = constants.MarkerLastSaved
)

// Names lists every marker a user can have.
var Names = []Name{LastPosted, LastReceived, ReceiveCount, LastSaved}

// Key addresses a marker as identity × flag name. The stored form is
// "daily:<user_id>:<name>".
type Key struct {
	UserID string
	Name   Name
}

func (k Key) String() string {
	return Prefix(k.UserID) + string(k.Name)
}

// Prefix returns the key prefix shared by all of a user's markers.
func Prefix(userID string) string {
	return constants.MarkerPrefix + ":" + userID + ":"
}
