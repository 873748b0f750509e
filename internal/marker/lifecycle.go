package marker

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/knitlab/skein/internal/errors"
)

// RecordEvent applies a lifecycle event to a marker and returns the updated
// copy plus the appended event. The input marker is not mutated.
//
// triggered/snoozed/acknowledged increment their counter and leave the
// status unchanged. completed sets status=completed and is terminal:
// re-completing is rejected with INVALID_TRANSITION rather than silently
// accepted, so the event log stays meaningful.
func RecordEvent(m Marker, eventType EventType, atRow int, now time.Time) (Marker, Event, error) {
	switch eventType {
	case EventTriggered:
		m.TimesTriggered++
	case EventSnoozed:
		m.TimesSnoozed++
	case EventAcknowledged:
		m.TimesAcknowledged++
	case EventCompleted:
		if m.Status == StatusCompleted {
			return m, Event{}, errors.NewInvalidTransition(
				fmt.Sprintf("marker %s is already completed", m.ID))
		}
		m.Status = StatusCompleted
	default:
		return m, Event{}, errors.NewInvalidRequest(fmt.Sprintf("unknown event type %q", eventType))
	}

	id, err := newEventID(now)
	if err != nil {
		return m, Event{}, errors.NewInternal(err)
	}

	event := Event{
		ID:        id,
		MarkerID:  m.ID,
		EventType: eventType,
		AtRow:     atRow,
		CreatedAt: now.Unix(),
	}
	m.UpdatedAt = now.Unix()

	return m, event, nil
}

// Counters is the per-marker interaction tally derived from the event log.
type Counters struct {
	Triggered    int `json:"triggered"`
	Snoozed      int `json:"snoozed"`
	Acknowledged int `json:"acknowledged"`
}

// ReplayCounters recomputes interaction counters from an event log. The
// stored marker columns are cached projections of this; replaying the log
// must reproduce them exactly (consistency check).
func ReplayCounters(events []Event) Counters {
	var c Counters
	for _, e := range events {
		switch e.EventType {
		case EventTriggered:
			c.Triggered++
		case EventSnoozed:
			c.Snoozed++
		case EventAcknowledged:
			c.Acknowledged++
		}
	}
	return c
}

// ConsistentWithLog reports whether a marker's cached counters match a
// replay of its event log.
func ConsistentWithLog(m *Marker, events []Event) bool {
	c := ReplayCounters(events)
	return m.TimesTriggered == c.Triggered &&
		m.TimesSnoozed == c.Snoozed &&
		m.TimesAcknowledged == c.Acknowledged
}

// newEventID generates a ULID for an event.
func newEventID(now time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
