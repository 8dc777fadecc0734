package session

import "errors"

var (
	// ErrNotReady is returned before identity bootstrap has completed.
	ErrNotReady = errors.New("session is still starting")
	// ErrNoIdentity is returned when bootstrap finished without an identity.
	ErrNoIdentity = errors.New("no identity: the service could not issue one, try again later")
	// ErrEmptyContent rejects blank submissions.
	ErrEmptyContent = errors.New("diary content is empty")
	// ErrAlreadyPosted is returned after today's entry has been posted.
	ErrAlreadyPosted = errors.New("already posted today")
	// ErrMustPostFirst blocks receiving until today's entry is posted.
	ErrMustPostFirst = errors.New("post today's diary before receiving others")
	// ErrReceiveLimit is returned once today's receives are used up.
	ErrReceiveLimit = errors.New("daily receive limit reached")
	// ErrAlreadySaved is returned after today's save.
	ErrAlreadySaved = errors.New("already saved a diary today")
	// ErrNoEntry rejects a save without an entry id.
	ErrNoEntry = errors.New("no diary selected")
	// ErrInFlight rejects starting a flow that is already pending.
	ErrInFlight = errors.New("request already in progress")
	// ErrSaveInFlight rejects a save while another save is pending.
	ErrSaveInFlight = errors.New("another save is in progress")
	// ErrNotPending is returned when finishing a request that was never started.
	ErrNotPending = errors.New("request is not pending")
)
