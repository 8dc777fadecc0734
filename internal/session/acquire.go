package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/tokumei/internal/models"
)

// AcquireOp is an acquisition that passed its preconditions and is pending.
type AcquireOp struct {
	UserID string
}

// BeginAcquire checks that the user posted today and has receives left, then
// marks the acquisition pending.
func (s *Session) BeginAcquire() (AcquireOp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireIdentityLocked(); err != nil {
		if errors.Is(err, ErrNoIdentity) {
			s.setMessageLocked(msgNoIdentity, Failure)
		}
		return AcquireOp{}, err
	}
	if err := s.reloadLocked(); err != nil {
		return AcquireOp{}, err
	}
	if !s.state.HasPostedToday {
		s.setMessageLocked(msgMustPostFirst, Info)
		return AcquireOp{}, ErrMustPostFirst
	}
	if s.state.ReceivedCount >= maxReceives {
		s.setMessageLocked(msgReceiveLimit, Info)
		return AcquireOp{}, ErrReceiveLimit
	}
	if err := s.acquire.begin(""); err != nil {
		return AcquireOp{}, err
	}
	return AcquireOp{UserID: s.userID}, nil
}

// CompleteAcquire fetches the next batch and appends it to the received list.
// Every successful call uses one receive, even when it returns nothing.
// It returns the entries from this call only.
func (s *Session) CompleteAcquire(ctx context.Context, op AcquireOp) ([]models.Diary, error) {
	batch, callErr := s.api.TodayDiaries(ctx, op.UserID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acquire.finish(callErr); err != nil {
		return nil, err
	}
	if callErr != nil {
		s.setMessageLocked(msgReceiveFailed, Failure)
		s.log().Warn("receive failed", "error", callErr)
		return nil, fmt.Errorf("receiving diaries: %w", callErr)
	}

	count, err := s.tracker.RecordReceive(op.UserID)
	if err != nil {
		s.log().Error("failed to persist receive count", "error", err)
		count = min(s.state.ReceivedCount+1, maxReceives)
	}
	s.state.ReceivedCount = count

	if len(batch) == 0 {
		s.setMessageLocked(msgNoEntries, Info)
		return batch, nil
	}
	s.received = append(s.received, batch...)
	s.setMessageLocked(receivedMessage(len(batch), count), Success)
	return batch, nil
}

// Acquire receives the next batch of today's entries.
func (s *Session) Acquire(ctx context.Context) ([]models.Diary, error) {
	op, err := s.BeginAcquire()
	if err != nil {
		return nil, err
	}
	return s.CompleteAcquire(ctx, op)
}
