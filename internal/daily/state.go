package daily

import "github.com/julianstephens/tokumei/internal/constants"

// MaxReceives is the daily acquisition cap.
const MaxReceives = constants.MaxReceivesPerDay

// State is today's eligibility for one identity.
type State struct {
	Today          string
	HasPostedToday bool
	ReceivedCount  int
	HasSavedToday  bool
}

func (s State) CanPost() bool { return !s.HasPostedToday }

// CanReceive requires a post today and an unused receive.
func (s State) CanReceive() bool {
	return s.HasPostedToday && s.ReceivedCount < MaxReceives
}

func (s State) CanSave() bool { return !s.HasSavedToday }

func (s State) RemainingReceives() int {
	if s.ReceivedCount >= MaxReceives {
		return 0
	}
	return MaxReceives - s.ReceivedCount
}
