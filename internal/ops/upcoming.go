package ops

import (
	"database/sql"

	"github.com/knitlab/skein/internal/config"
	"github.com/knitlab/skein/internal/db"
	"github.com/knitlab/skein/internal/errors"
	"github.com/knitlab/skein/internal/marker"
)

// UpcomingMarkersInput contains parameters for the UpcomingMarkers operation.
type UpcomingMarkersInput struct {
	ProjectID string // required
	CounterID string // optional; empty falls back to the primary counter
	Window    int    // lookahead in rows; 0 = config default
}

// UpcomingMarkersOutput contains the result of the UpcomingMarkers operation.
type UpcomingMarkersOutput struct {
	CurrentValue int                     `json:"current_value"`
	Window       int                     `json:"window"`
	Items        []marker.UpcomingMarker `json:"items"`
}

// UpcomingMarkers answers "what fires in the next N rows" for a project:
// it loads the counter value and the evaluable marker snapshot, then hands
// both to the pure lookahead scheduler.
func UpcomingMarkers(database *sql.DB, cfg *config.Config, input UpcomingMarkersInput) (*UpcomingMarkersOutput, error) {
	if input.ProjectID == "" {
		return nil, errors.NewInvalidRequest("project_id is required")
	}

	window := input.Window
	if window == 0 {
		window = cfg.DefaultLookahead
	}
	if window < 0 {
		return nil, errors.NewInvalidRequest("window must not be negative")
	}

	counter, err := resolveCounter(database, input.ProjectID, input.CounterID)
	if err != nil {
		return nil, err
	}

	active, err := db.ListMarkers(database, input.ProjectID, true)
	if err != nil {
		return nil, err
	}

	items := marker.Upcoming(markersForCounter(active, counter), counter.Value, window)
	return &UpcomingMarkersOutput{
		CurrentValue: counter.Value,
		Window:       window,
		Items:        items,
	}, nil
}
