package ops

import (
	"database/sql"

	"github.com/knitlab/skein/internal/config"
	"github.com/knitlab/skein/internal/db"
	"github.com/knitlab/skein/internal/errors"
	"github.com/knitlab/skein/internal/marker"
)

// MarkerTimelineInput contains parameters for the MarkerTimeline operation.
type MarkerTimelineInput struct {
	ProjectID string // required
}

// MarkerTimelineOutput contains the result of the MarkerTimeline operation.
type MarkerTimelineOutput struct {
	CurrentValue  int                       `json:"current_value"`
	ProjectLength int                       `json:"project_length"`
	Items         []marker.PositionedMarker `json:"items"`
}

// MarkerTimeline projects all of a project's markers onto a normalized
// position scale for visualization. The project's total row count is the
// scale; the primary counter supplies the current position.
func MarkerTimeline(database *sql.DB, cfg *config.Config, input MarkerTimelineInput) (*MarkerTimelineOutput, error) {
	if input.ProjectID == "" {
		return nil, errors.NewInvalidRequest("project_id is required")
	}

	project, err := db.GetProject(database, input.ProjectID)
	if err != nil {
		return nil, err
	}
	counter, err := db.GetPrimaryCounter(database, input.ProjectID)
	if err != nil {
		return nil, err
	}
	markers, err := db.ListMarkers(database, input.ProjectID, false)
	if err != nil {
		return nil, err
	}

	items := marker.Timeline(markers, counter.Value, project.TotalRows, cfg.TimelineMaxOccurrences)
	return &MarkerTimelineOutput{
		CurrentValue:  counter.Value,
		ProjectLength: project.TotalRows,
		Items:         items,
	}, nil
}
