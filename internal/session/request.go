package session

import "fmt"

// Status is the lifecycle stage of one flow's remote call.
type Status int

const (
	Idle Status = iota
	Pending
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Request is the per-flow request state. Its fields are only reachable
// through the transition methods, so a pending request cannot be restarted
// and an idle one cannot be finished.
type Request struct {
	status  Status
	entryID string
	err     error
}

func (r Request) Status() Status { return r.status }

// EntryID is the entry the request acts on; only saves carry one.
func (r Request) EntryID() string { return r.entryID }

// Err is the failure of a Failed request.
func (r Request) Err() error { return r.err }

func (r Request) InFlight() bool { return r.status == Pending }

func (r *Request) begin(entryID string) error {
	if r.status == Pending {
		return ErrInFlight
	}
	*r = Request{status: Pending, entryID: entryID}
	return nil
}

func (r *Request) finish(err error) error {
	if r.status != Pending {
		return ErrNotPending
	}
	if err != nil {
		*r = Request{status: Failed, entryID: r.entryID, err: err}
		return nil
	}
	*r = Request{status: Succeeded, entryID: r.entryID}
	return nil
}
