package ops

import (
	"database/sql"

	"github.com/knitlab/skein/internal/db"
	"github.com/knitlab/skein/internal/errors"
	"github.com/knitlab/skein/internal/marker"
)

// SummaryInput contains parameters for the Summary operation.
type SummaryInput struct {
	ProjectID string // required
}

// SummaryOutput contains the result of the Summary operation.
type SummaryOutput struct {
	Summary marker.Summary `json:"summary"`
}

// Summary rolls a project's marker set up into usage statistics.
func Summary(database *sql.DB, input SummaryInput) (*SummaryOutput, error) {
	if input.ProjectID == "" {
		return nil, errors.NewInvalidRequest("project_id is required")
	}
	if _, err := db.GetProject(database, input.ProjectID); err != nil {
		return nil, err
	}

	markers, err := db.ListMarkers(database, input.ProjectID, false)
	if err != nil {
		return nil, err
	}

	return &SummaryOutput{Summary: marker.Summarize(markers)}, nil
}
