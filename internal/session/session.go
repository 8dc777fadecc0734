// Package session holds the per-process session context: identity, today's
// daily state, per-flow request state and the in-memory view lists. CLI
// commands and the TUI share one Session built at startup.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/tokumei/internal/daily"
	"github.com/julianstephens/tokumei/internal/identity"
	"github.com/julianstephens/tokumei/internal/logger"
	"github.com/julianstephens/tokumei/internal/models"
)

const maxReceives = daily.MaxReceives

// API is the subset of the diary service the session drives.
type API interface {
	identity.Issuer
	CreateDiary(ctx context.Context, userID, content string) error
	TodayDiaries(ctx context.Context, userID string) ([]models.Diary, error)
	SaveDiary(ctx context.Context, userID, diaryID string) error
	SavedDiaries(ctx context.Context, userID string) ([]models.Diary, error)
	MyDiaries(ctx context.Context, userID string) ([]models.Diary, error)
	Notifications(ctx context.Context, userID string) ([]models.Diary, error)
}

type Session struct {
	api     API
	boot    *identity.Bootstrapper
	tracker *daily.Tracker

	mu       sync.Mutex
	ready    bool
	userID   string
	state    daily.State
	draft    string
	message  Message
	selected *models.Diary

	received      []models.Diary
	saved         []models.Diary
	mine          []models.Diary
	notifications []models.Diary

	submit  Request
	acquire Request
	save    Request
}

func New(api API, boot *identity.Bootstrapper, tracker *daily.Tracker) *Session {
	return &Session{
		api:     api,
		boot:    boot,
		tracker: tracker,
	}
}

func (s *Session) log() *log.Logger {
	return logger.Component("session")
}

// Bootstrap resolves the identity once and loads today's state. It always
// marks the session ready; an error means the session runs without identity
// (or, with a non-empty id, that the id could not be persisted).
func (s *Session) Bootstrap(ctx context.Context) (string, error) {
	userID, bootErr := s.boot.Bootstrap(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ready = true
	s.userID = userID
	if userID == "" {
		s.message = Message{Text: msgNoIdentity, Kind: Failure}
		return "", bootErr
	}
	if err := s.reloadLocked(); err != nil {
		return userID, errors.Join(bootErr, err)
	}
	return userID, bootErr
}

// Start bootstraps and then runs the initial view refresh. Refresh failures
// are logged, never returned.
func (s *Session) Start(ctx context.Context) error {
	userID, err := s.Bootstrap(ctx)
	if userID != "" {
		_ = s.Refresh(ctx)
	}
	return err
}

// UserID returns the session identity; ok is false when there is none.
func (s *Session) UserID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.userID != ""
}

// Daily re-derives today's state from the persisted markers.
func (s *Session) Daily() (daily.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireIdentityLocked(); err != nil {
		return daily.State{}, err
	}
	if err := s.reloadLocked(); err != nil {
		return daily.State{}, err
	}
	return s.state, nil
}

// Markers returns the raw stored daily markers for the session identity.
func (s *Session) Markers() (map[daily.Name]string, error) {
	userID, ok := s.UserID()
	if !ok {
		return nil, ErrNoIdentity
	}
	return s.tracker.Markers(userID)
}

func (s *Session) requireIdentityLocked() error {
	if !s.ready {
		return ErrNotReady
	}
	if s.userID == "" {
		return ErrNoIdentity
	}
	return nil
}

// reloadLocked refreshes s.state. Crossing into a new day also drops the
// accumulated received list, which only ever holds today's entries.
func (s *Session) reloadLocked() error {
	state, err := s.tracker.Load(s.userID)
	if err != nil {
		return fmt.Errorf("loading daily state: %w", err)
	}
	if s.state.Today != "" && s.state.Today != state.Today {
		s.received = nil
	}
	s.state = state
	return nil
}

// Snapshot copies the current state for rendering.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Ready:         s.ready,
		UserID:        s.userID,
		Daily:         s.state,
		Draft:         s.draft,
		Message:       s.message,
		Received:      slices.Clone(s.received),
		Saved:         slices.Clone(s.saved),
		Mine:          slices.Clone(s.mine),
		Notifications: slices.Clone(s.notifications),
		Submit:        s.submit,
		Acquire:       s.acquire,
		Save:          s.save,
	}
	if s.selected != nil {
		sel := *s.selected
		v.Selected = &sel
	}
	return v
}

// SetDraft keeps the unsent submission text.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// ClearMessage drops the transient message.
func (s *Session) ClearMessage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = Message{}
}

func (s *Session) setMessageLocked(text string, kind MessageKind) {
	s.message = Message{Text: text, Kind: kind}
}

// Inspect selects the entry with diaryID from any view list.
func (s *Session) Inspect(diaryID string) (models.Diary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, list := range [][]models.Diary{s.received, s.saved, s.mine, s.notifications} {
		for _, d := range list {
			if d.ID == diaryID {
				sel := d
				s.selected = &sel
				return d, true
			}
		}
	}
	return models.Diary{}, false
}

// ClearSelection drops the inspected entry.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}
