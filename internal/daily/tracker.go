package daily

import (
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/tokumei/internal/constants"
	"github.com/julianstephens/tokumei/internal/logger"
	"github.com/julianstephens/tokumei/internal/storage"
	"github.com/julianstephens/tokumei/internal/utils"
)

// Tracker reads and stamps daily markers. It never calls the remote service.
type Tracker struct {
	kv  storage.KV
	loc *time.Location
	now utils.Clock
}

type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(clock utils.Clock) Option {
	return func(t *Tracker) { t.now = clock }
}

func NewTracker(kv storage.KV, loc *time.Location, opts ...Option) *Tracker {
	if loc == nil {
		loc = time.Local
	}
	t := &Tracker{kv: kv, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Today is the current calendar day in the tracker's location.
func (t *Tracker) Today() string {
	return utils.DateKey(t.now(), t.loc)
}

// Load derives today's state for userID, deleting markers left over from
// earlier days.
func (t *Tracker) Load(userID string) (State, error) {
	state := State{Today: t.Today()}

	posted, err := t.resolve(userID, state.Today, LastPosted)
	if err != nil {
		return State{}, err
	}
	state.HasPostedToday = posted

	received, err := t.resolve(userID, state.Today, LastReceived, ReceiveCount)
	if err != nil {
		return State{}, err
	}
	if received {
		count, err := t.count(userID)
		if err != nil {
			return State{}, err
		}
		state.ReceivedCount = count
	}

	saved, err := t.resolve(userID, state.Today, LastSaved)
	if err != nil {
		return State{}, err
	}
	state.HasSavedToday = saved

	return state, nil
}

// resolve reports whether the date marker holds today. A marker from any
// other day is deleted together with its dependent markers.
func (t *Tracker) resolve(userID, today string, date Name, dependents ...Name) (bool, error) {
	key := Key{UserID: userID, Name: date}
	stored, ok, err := t.kv.Get(key.String())
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if stored == today {
		return true, nil
	}

	stale := []string{key.String()}
	for _, name := range dependents {
		stale = append(stale, Key{UserID: userID, Name: name}.String())
	}
	logger.Debug("clearing stale daily marker", "marker", date, "stored", stored, "today", today)
	if err := t.kv.Delete(stale...); err != nil {
		return false, fmt.Errorf("clearing %s: %w", key, err)
	}
	return false, nil
}

// count reads the receive counter. Unparseable values count as zero and
// values are clamped to the daily cap.
func (t *Tracker) count(userID string) (int, error) {
	key := Key{UserID: userID, Name: ReceiveCount}
	raw, ok, err := t.kv.Get(key.String())
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("ignoring malformed receive count", "value", raw)
		return 0, nil
	}
	return clamp(n), nil
}

func clamp(n int) int {
	switch {
	case n < 0:
		return 0
	case n > constants.MaxReceivesPerDay:
		return constants.MaxReceivesPerDay
	}
	return n
}

// MarkPosted stamps today as the last posting day.
func (t *Tracker) MarkPosted(userID string) error {
	return t.kv.Set(Key{UserID: userID, Name: LastPosted}.String(), t.Today())
}

// MarkSaved stamps today as the last saving day.
func (t *Tracker) MarkSaved(userID string) error {
	return t.kv.Set(Key{UserID: userID, Name: LastSaved}.String(), t.Today())
}

// RecordReceive counts one successful acquisition for today and returns the
// new count. The count is re-derived from storage so a day change since the
// last Load starts again from zero.
func (t *Tracker) RecordReceive(userID string) (int, error) {
	today := t.Today()
	received, err := t.resolve(userID, today, LastReceived, ReceiveCount)
	if err != nil {
		return 0, err
	}
	count := 0
	if received {
		if count, err = t.count(userID); err != nil {
			return 0, err
		}
	}
	count = clamp(count + 1)

	err = t.kv.SetMany(map[string]string{
		Key{UserID: userID, Name: LastReceived}.String(): today,
		Key{UserID: userID, Name: ReceiveCount}.String(): strconv.Itoa(count),
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Markers returns the raw stored markers for userID, keyed by name.
func (t *Tracker) Markers(userID string) (map[Name]string, error) {
	pairs, err := t.kv.List(Prefix(userID))
	if err != nil {
		return nil, err
	}
	out := make(map[Name]string, len(pairs))
	prefix := Prefix(userID)
	for key, value := range pairs {
		out[Name(key[len(prefix):])] = value
	}
	return out, nil
}

// Reset deletes every marker for userID.
func (t *Tracker) Reset(userID string) error {
	keys := make([]string, 0, len(Names))
	for _, name := range Names {
		keys = append(keys, Key{UserID: userID, Name: name}.String())
	}
	return t.kv.Delete(keys...)
}
