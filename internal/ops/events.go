package ops

import (
	"database/sql"
	"time"

	"github.com/knitlab/skein/internal/db"
	"github.com/knitlab/skein/internal/errors"
	"github.com/knitlab/skein/internal/marker"
)

// RecordMarkerEventInput contains parameters for the RecordMarkerEvent operation.
type RecordMarkerEventInput struct {
	MarkerID  string           // required
	EventType marker.EventType // required
	AtRow     *int             // nil = read the marker's counter
}

// RecordMarkerEventOutput contains the result of the RecordMarkerEvent operation.
type RecordMarkerEventOutput struct {
	Marker marker.Marker `json:"marker"`
	Event  marker.Event  `json:"event"`
}

// RecordMarkerEvent records a lifecycle interaction with a marker. The
// engine decides the transition (and rejects invalid ones) before anything
// is written; the event row and counter bump then persist in one
// transaction.
func RecordMarkerEvent(database *sql.DB, input RecordMarkerEventInput) (*RecordMarkerEventOutput, error) {
	if input.MarkerID == "" {
		return nil, errors.NewInvalidRequest("marker_id is required")
	}
	if input.EventType == "" {
		return nil, errors.NewInvalidRequest("event_type is required")
	}

	m, err := db.GetMarker(database, input.MarkerID)
	if err != nil {
		return nil, err
	}

	atRow := 0
	if input.AtRow != nil {
		atRow = *input.AtRow
	} else {
		counterID := ""
		if m.CounterID != nil {
			counterID = *m.CounterID
		}
		counter, err := resolveCounter(database, m.ProjectID, counterID)
		if err != nil {
			return nil, err
		}
		atRow = counter.Value
	}

	updated, event, err := marker.RecordEvent(*m, input.EventType, atRow, time.Now())
	if err != nil {
		return nil, err
	}
	if err := db.ApplyEvent(database, &event); err != nil {
		return nil, err
	}

	return &RecordMarkerEventOutput{Marker: updated, Event: event}, nil
}
