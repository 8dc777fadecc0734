package session

import (
	"github.com/julianstephens/tokumei/internal/daily"
	"github.com/julianstephens/tokumei/internal/models"
)

// View is a copy of the session's in-memory state for rendering.
type View struct {
	Ready    bool
	UserID   string
	Daily    daily.State
	Draft    string
	Message  Message
	Selected *models.Diary

	Received      []models.Diary
	Saved         []models.Diary
	Mine          []models.Diary
	Notifications []models.Diary

	Submit  Request
	Acquire Request
	Save    Request
}

// Degraded reports a finished bootstrap that produced no identity.
func (v View) Degraded() bool {
	return v.Ready && v.UserID == ""
}

// CanSubmit mirrors the submission preconditions other than content.
func (v View) CanSubmit() bool {
	return v.UserID != "" && v.Daily.CanPost() && !v.Submit.InFlight()
}

func (v View) CanAcquire() bool {
	return v.UserID != "" && v.Daily.CanReceive() && !v.Acquire.InFlight()
}

func (v View) CanSave() bool {
	return v.UserID != "" && v.Daily.CanSave() && !v.Save.InFlight()
}

// Saving reports whether diaryID is the entry currently being saved.
func (v View) Saving(diaryID string) bool {
	return v.Save.InFlight() && v.Save.EntryID() == diaryID
}
