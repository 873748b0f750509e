package ops

import (
	"database/sql"
	"time"

	"github.com/knitlab/skein/internal/db"
	"github.com/knitlab/skein/internal/errors"
	"github.com/knitlab/skein/internal/marker"
)

// AcceptSuggestionInput contains parameters for the AcceptSuggestion operation.
type AcceptSuggestionInput struct {
	ProjectID  string            // required
	Suggestion marker.Suggestion // candidate from the external pattern analyzer
}

// AcceptSuggestionOutput contains the result of the AcceptSuggestion operation.
type AcceptSuggestionOutput struct {
	Marker marker.Marker `json:"marker"`
}

// AcceptSuggestion converts an analyzer suggestion into a persisted marker:
// the pure mapping produces the draft, then the draft is bound to the
// project, validated, and stored like any other marker.
func AcceptSuggestion(database *sql.DB, input AcceptSuggestionInput) (*AcceptSuggestionOutput, error) {
	if input.ProjectID == "" {
		return nil, errors.NewInvalidRequest("project_id is required")
	}
	if input.Suggestion.Message == "" {
		return nil, errors.NewInvalidRequest("suggestion message is required")
	}
	if _, err := db.GetProject(database, input.ProjectID); err != nil {
		return nil, err
	}

	m := marker.FromSuggestion(input.Suggestion)

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()
	m.ID = id
	m.ProjectID = input.ProjectID
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := marker.Validate(&m); err != nil {
		return nil, err
	}
	if err := db.InsertMarker(database, &m); err != nil {
		return nil, err
	}

	return &AcceptSuggestionOutput{Marker: m}, nil
}
