package session

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/tokumei/internal/models"
)

type listKind int

const (
	listSaved listKind = iota
	listMine
	listNotifications
)

func (k listKind) String() string {
	switch k {
	case listSaved:
		return "saved"
	case listMine:
		return "mine"
	default:
		return "notifications"
	}
}

// Refresh re-fetches the saved, authored and notification lists
// concurrently. A failed fetch is logged and leaves its list unchanged; the
// joined failures are returned for callers that want them.
func (s *Session) Refresh(ctx context.Context) error {
	var g errgroup.Group
	errs := make([]error, 3)

	for i, kind := range []listKind{listSaved, listMine, listNotifications} {
		i, kind := i, kind
		g.Go(func() error {
			errs[i] = s.refresh(ctx, kind)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// RefreshSaved re-fetches the collection.
func (s *Session) RefreshSaved(ctx context.Context) error {
	return s.refresh(ctx, listSaved)
}

// RefreshMine re-fetches the authored entries.
func (s *Session) RefreshMine(ctx context.Context) error {
	return s.refresh(ctx, listMine)
}

// RefreshNotifications re-fetches the notifications.
func (s *Session) RefreshNotifications(ctx context.Context) error {
	return s.refresh(ctx, listNotifications)
}

func (s *Session) refresh(ctx context.Context, kind listKind) error {
	userID, ok := s.UserID()
	if !ok {
		return ErrNoIdentity
	}

	var (
		list []models.Diary
		err  error
	)
	switch kind {
	case listSaved:
		list, err = s.api.SavedDiaries(ctx, userID)
	case listMine:
		list, err = s.api.MyDiaries(ctx, userID)
	case listNotifications:
		list, err = s.api.Notifications(ctx, userID)
	}
	if err != nil {
		s.log().Warn("list refresh failed", "list", kind, "error", err)
		return fmt.Errorf("refreshing %s: %w", kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case listSaved:
		s.saved = list
	case listMine:
		s.mine = list
	case listNotifications:
		s.notifications = list
	}
	return nil
}
