package notifier

import (
	"fmt"
	"strings"

	"github.com/julianstephens/tokumei/internal/constants"
	"github.com/julianstephens/tokumei/internal/logger"
	"github.com/julianstephens/tokumei/internal/models"
	"github.com/julianstephens/tokumei/internal/pkg/json"
	"github.com/julianstephens/tokumei/internal/storage"
)

// Seen maps an authored diary id to the save count last forwarded for it.
type Seen map[string]int

// Event is one notification worth forwarding.
type Event struct {
	Diary models.Diary
	// NewSaves is how many saves happened since the last forward.
	NewSaves int
}

// Text is the line shown by the tray companion.
func (e Event) Text() string {
	preview := e.Diary.Preview(constants.PreviewLength)
	if e.NewSaves == 1 {
		return fmt.Sprintf("Someone saved your diary: %s", preview)
	}
	return fmt.Sprintf("%d people saved your diary: %s", e.NewSaves, preview)
}

// Diff returns the entries whose save count grew past the watermark, in
// input order, and the watermark to store once they are forwarded. Entries
// missing from current keep their watermark.
func Diff(prev Seen, current []models.Diary) ([]Event, Seen) {
	next := make(Seen, len(prev)+len(current))
	for id, saves := range prev {
		next[id] = saves
	}
	var events []Event
	for _, d := range current {
		saves := d.Saves()
		// an entry listed as a notification was saved at least once
		if saves < 1 {
			saves = 1
		}
		next[d.ID] = saves
		if delta := saves - prev[d.ID]; delta > 0 {
			events = append(events, Event{Diary: d, NewSaves: delta})
		}
	}
	return events, next
}

func seenKey(userID string) string {
	return strings.Join([]string{constants.NotifyPrefix, userID, constants.NotifySeenKey}, ":")
}

// LoadSeen reads the watermark for userID. A corrupt value reads as empty.
func LoadSeen(kv storage.KV, userID string) (Seen, error) {
	raw, ok, err := kv.Get(seenKey(userID))
	if err != nil {
		return nil, fmt.Errorf("reading notification watermark: %w", err)
	}
	seen := Seen{}
	if !ok {
		return seen, nil
	}
	if err := json.UnmarshalString(raw, &seen); err != nil {
		logger.Warn("discarding corrupt notification watermark", "error", err)
		return Seen{}, nil
	}
	return seen, nil
}

func StoreSeen(kv storage.KV, userID string, seen Seen) error {
	raw, err := json.MarshalString(seen)
	if err != nil {
		return err
	}
	return kv.Set(seenKey(userID), raw)
}
