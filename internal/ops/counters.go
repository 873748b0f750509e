package ops

import (
	"database/sql"
	"time"

	"github.com/knitlab/skein/internal/db"
	"github.com/knitlab/skein/internal/errors"
	"github.com/knitlab/skein/internal/marker"
)

// resolveCounter returns the named counter, or the project's primary
// counter when counterID is empty. This is the counter value provider the
// marker engine's host contract asks for.
func resolveCounter(database *sql.DB, projectID, counterID string) (*db.Counter, error) {
	if counterID == "" {
		return db.GetPrimaryCounter(database, projectID)
	}
	counter, err := db.GetCounter(database, counterID)
	if err != nil {
		return nil, err
	}
	if counter.ProjectID != projectID {
		return nil, errors.NewNotFound(counterID)
	}
	return counter, nil
}

// markersForCounter filters a marker set down to those driven by the given
// counter: explicitly bound markers, plus unbound markers when the counter
// is the project's primary.
func markersForCounter(markers []marker.Marker, counter *db.Counter) []marker.Marker {
	result := []marker.Marker{}
	for _, m := range markers {
		if m.CounterID == nil {
			if counter.IsPrimary {
				result = append(result, m)
			}
			continue
		}
		if *m.CounterID == counter.ID {
			result = append(result, m)
		}
	}
	return result
}

// GetCounterValueInput contains parameters for the GetCounterValue operation.
type GetCounterValueInput struct {
	ProjectID string // required
	CounterID string // optional; empty falls back to the primary counter
}

// GetCounterValueOutput contains the result of the GetCounterValue operation.
type GetCounterValueOutput struct {
	Counter db.Counter `json:"counter"`
}

// GetCounterValue reads the current progress value of a counter.
func GetCounterValue(database *sql.DB, input GetCounterValueInput) (*GetCounterValueOutput, error) {
	if input.ProjectID == "" {
		return nil, errors.NewInvalidRequest("project_id is required")
	}
	counter, err := resolveCounter(database, input.ProjectID, input.CounterID)
	if err != nil {
		return nil, err
	}
	return &GetCounterValueOutput{Counter: *counter}, nil
}

// SetCounterInput contains parameters for the SetCounter operation.
type SetCounterInput struct {
	ProjectID string // required
	CounterID string // optional; empty falls back to the primary counter
	Value     int    // new absolute value
}

// SetCounterOutput contains the result of the SetCounter operation.
type SetCounterOutput struct {
	Counter db.Counter `json:"counter"`
}

// SetCounter overwrites a counter's value without evaluating markers.
// Used for corrections ("I frogged back to row 30"), not for progress.
func SetCounter(database *sql.DB, input SetCounterInput) (*SetCounterOutput, error) {
	if input.ProjectID == "" {
		return nil, errors.NewInvalidRequest("project_id is required")
	}
	if input.Value < 0 {
		return nil, errors.NewInvalidRequest("value must not be negative")
	}

	counter, err := resolveCounter(database, input.ProjectID, input.CounterID)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	if err := db.SetCounterValue(database, counter.ID, input.Value, now); err != nil {
		return nil, err
	}
	counter.Value = input.Value
	counter.UpdatedAt = now

	return &SetCounterOutput{Counter: *counter}, nil
}

// AdvanceCounterInput contains parameters for the AdvanceCounter operation.
type AdvanceCounterInput struct {
	ProjectID string // required
	CounterID string // optional; empty falls back to the primary counter
	Delta     int    // default: 1
}

// AdvanceCounterOutput contains the result of the AdvanceCounter operation.
type AdvanceCounterOutput struct {
	Counter db.Counter      `json:"counter"`
	Fired   []marker.Marker `json:"fired"` // markers that fired at the new value, counters already bumped
}

// AdvanceCounter increments a counter and evaluates the project's active
// markers at the new value. Each fired marker gets a triggered event
// recorded atomically against its cached counters.
func AdvanceCounter(database *sql.DB, input AdvanceCounterInput) (*AdvanceCounterOutput, error) {
	if input.ProjectID == "" {
		return nil, errors.NewInvalidRequest("project_id is required")
	}
	delta := input.Delta
	if delta == 0 {
		delta = 1
	}

	counter, err := resolveCounter(database, input.ProjectID, input.CounterID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	newValue, err := db.AdvanceCounterValue(database, counter.ID, delta, now.Unix())
	if err != nil {
		return nil, err
	}
	counter.Value = newValue
	counter.UpdatedAt = now.Unix()

	active, err := db.ListMarkers(database, input.ProjectID, true)
	if err != nil {
		return nil, err
	}

	fired := []marker.Marker{}
	for _, m := range markersForCounter(active, counter) {
		if !marker.Fires(&m, newValue) {
			continue
		}
		updated, event, err := marker.RecordEvent(m, marker.EventTriggered, newValue, now)
		if err != nil {
			return nil, err
		}
		if err := db.ApplyEvent(database, &event); err != nil {
			return nil, err
		}
		fired = append(fired, updated)
	}

	return &AdvanceCounterOutput{Counter: *counter, Fired: fired}, nil
}
