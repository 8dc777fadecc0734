package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/tokumei/internal/api"
)

// SaveOp is a save that passed its preconditions and is pending.
type SaveOp struct {
	UserID  string
	DiaryID string
}

// BeginSave checks that nothing was saved today and no other save is pending,
// then marks diaryID as the entry being saved.
func (s *Session) BeginSave(diaryID string) (SaveOp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	diaryID = strings.TrimSpace(diaryID)
	if err := s.requireIdentityLocked(); err != nil {
		if errors.Is(err, ErrNoIdentity) {
			s.setMessageLocked(msgNoIdentity, Failure)
		}
		return SaveOp{}, err
	}
	if diaryID == "" {
		return SaveOp{}, ErrNoEntry
	}
	if s.save.InFlight() {
		s.setMessageLocked(msgSaveInProgress, Info)
		return SaveOp{}, ErrSaveInFlight
	}
	if err := s.reloadLocked(); err != nil {
		return SaveOp{}, err
	}
	if !s.state.CanSave() {
		s.setMessageLocked(msgAlreadySaved, Info)
		return SaveOp{}, ErrAlreadySaved
	}
	if err := s.save.begin(diaryID); err != nil {
		return SaveOp{}, err
	}
	return SaveOp{UserID: s.userID, DiaryID: diaryID}, nil
}

// CompleteSave performs the remote save. On success the saved list is
// re-fetched from the service. On failure the service's detail message, when
// present, becomes the user-facing message verbatim.
func (s *Session) CompleteSave(ctx context.Context, op SaveOp) error {
	callErr := s.api.SaveDiary(ctx, op.UserID, op.DiaryID)

	s.mu.Lock()
	if err := s.save.finish(callErr); err != nil {
		s.mu.Unlock()
		return err
	}
	if callErr != nil {
		if detail, ok := api.Detail(callErr); ok {
			s.setMessageLocked(detail, Failure)
		} else {
			s.setMessageLocked(msgSaveFailed, Failure)
		}
		s.mu.Unlock()
		s.log().Warn("save failed", "diary_id", op.DiaryID, "error", callErr)
		return fmt.Errorf("saving diary %s: %w", op.DiaryID, callErr)
	}

	if err := s.tracker.MarkSaved(op.UserID); err != nil {
		s.log().Error("failed to persist saved marker", "error", err)
	}
	s.state.HasSavedToday = true
	s.setMessageLocked(msgSaved, Success)
	s.mu.Unlock()

	_ = s.RefreshSaved(ctx)
	return nil
}

// Save keeps diaryID as today's favorite.
func (s *Session) Save(ctx context.Context, diaryID string) error {
	op, err := s.BeginSave(diaryID)
	if err != nil {
		return err
	}
	return s.CompleteSave(ctx, op)
}
