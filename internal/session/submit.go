package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SubmitOp is a submission that passed its preconditions and is pending.
type SubmitOp struct {
	UserID  string
	Content string
}

// BeginSubmit validates a submission and marks it pending. Rejections happen
// here, before any remote call.
func (s *Session) BeginSubmit(content string) (SubmitOp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content = strings.TrimSpace(content)
	if err := s.requireIdentityLocked(); err != nil {
		if errors.Is(err, ErrNoIdentity) {
			s.setMessageLocked(msgNoIdentity, Failure)
		}
		return SubmitOp{}, err
	}
	if content == "" {
		s.setMessageLocked(msgEmptyContent, Failure)
		return SubmitOp{}, ErrEmptyContent
	}
	if err := s.reloadLocked(); err != nil {
		return SubmitOp{}, err
	}
	if !s.state.CanPost() {
		s.setMessageLocked(msgAlreadyPosted, Info)
		return SubmitOp{}, ErrAlreadyPosted
	}
	if err := s.submit.begin(""); err != nil {
		return SubmitOp{}, err
	}
	return SubmitOp{UserID: s.userID, Content: content}, nil
}

// CompleteSubmit performs the remote call for op and applies its outcome.
// On success the authored list is re-fetched.
func (s *Session) CompleteSubmit(ctx context.Context, op SubmitOp) error {
	callErr := s.api.CreateDiary(ctx, op.UserID, op.Content)

	s.mu.Lock()
	if err := s.submit.finish(callErr); err != nil {
		s.mu.Unlock()
		return err
	}
	if callErr != nil {
		s.setMessageLocked(msgPostFailed, Failure)
		s.mu.Unlock()
		s.log().Warn("post failed", "error", callErr)
		return fmt.Errorf("posting diary: %w", callErr)
	}

	if err := s.tracker.MarkPosted(op.UserID); err != nil {
		s.log().Error("failed to persist posted marker", "error", err)
	}
	s.state.HasPostedToday = true
	s.draft = ""
	s.setMessageLocked(msgPosted, Success)
	s.mu.Unlock()

	_ = s.RefreshMine(ctx)
	return nil
}

// Submit posts today's entry.
func (s *Session) Submit(ctx context.Context, content string) error {
	op, err := s.BeginSubmit(content)
	if err != nil {
		return err
	}
	return s.CompleteSubmit(ctx, op)
}
