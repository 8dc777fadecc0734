package session

import "fmt"

// MessageKind classifies a transient user-facing message.
type MessageKind int

const (
	Info MessageKind = iota
	Success
	Failure
)

// Message is the latest transient feedback for the user.
type Message struct {
	Text string
	Kind MessageKind
}

func (m Message) Empty() bool { return m.Text == "" }

const (
	msgEmptyContent   = "Please write something first."
	msgPosted         = "Diary posted!"
	msgPostFailed     = "Failed to post diary."
	msgNoEntries      = "No diaries available right now."
	msgReceiveFailed  = "Failed to receive diaries."
	msgSaved          = "Saved to your collection."
	msgSaveFailed     = "Failed to save diary."
	msgNoIdentity     = "No identity yet. Restart to try again."
	msgAlreadyPosted  = "You already posted today."
	msgMustPostFirst  = "Post today's diary to start receiving."
	msgReceiveLimit   = "You've received all of today's diaries."
	msgAlreadySaved   = "You already saved a diary today."
	msgSaveInProgress = "A save is already in progress."
)

func receivedMessage(n, count int) string {
	if n == 1 {
		return fmt.Sprintf("Received 1 diary (%d/%d today).", count, maxReceives)
	}
	return fmt.Sprintf("Received %d diaries (%d/%d today).", n, count, maxReceives)
}
