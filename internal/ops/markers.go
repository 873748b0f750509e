package ops

import (
	"database/sql"
	"time"

	"github.com/knitlab/skein/internal/db"
	"github.com/knitlab/skein/internal/errors"
	"github.com/knitlab/skein/internal/marker"
)

// CreateMarkerInput contains parameters for the CreateMarker operation.
type CreateMarkerInput struct {
	ProjectID string // required
	CounterID *string

	TriggerType    marker.TriggerType // required
	Condition      marker.Condition
	StartRow       *int
	EndRow         *int
	RepeatInterval *int
	RepeatOffset   *int

	AlertMessage string
	AlertType    marker.AlertType // default: notification
	Priority     int
	DisplayStyle string
	Color        string
	Category     string
}

// CreateMarkerOutput contains the result of the CreateMarker operation.
type CreateMarkerOutput struct {
	Marker marker.Marker `json:"marker"`
}

// CreateMarker validates and stores a new marker. Invalid trigger
// conditions are rejected here, before anything is persisted.
func CreateMarker(database *sql.DB, input CreateMarkerInput) (*CreateMarkerOutput, error) {
	if input.ProjectID == "" {
		return nil, errors.NewInvalidRequest("project_id is required")
	}
	if _, err := db.GetProject(database, input.ProjectID); err != nil {
		return nil, err
	}
	if input.CounterID != nil {
		if _, err := resolveCounter(database, input.ProjectID, *input.CounterID); err != nil {
			return nil, err
		}
	}

	alertType := input.AlertType
	if alertType == "" {
		alertType = marker.AlertNotification
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()

	m := marker.Marker{
		ID:             id,
		ProjectID:      input.ProjectID,
		CounterID:      input.CounterID,
		TriggerType:    input.TriggerType,
		Condition:      input.Condition,
		StartRow:       input.StartRow,
		EndRow:         input.EndRow,
		RepeatInterval: input.RepeatInterval,
		RepeatOffset:   input.RepeatOffset,
		AlertMessage:   input.AlertMessage,
		AlertType:      alertType,
		Priority:       input.Priority,
		DisplayStyle:   input.DisplayStyle,
		Color:          input.Color,
		Category:       input.Category,
		IsActive:       true,
		Status:         marker.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := marker.Validate(&m); err != nil {
		return nil, err
	}
	if err := db.InsertMarker(database, &m); err != nil {
		return nil, err
	}

	return &CreateMarkerOutput{Marker: m}, nil
}

// GetMarkerInput contains parameters for the GetMarker operation.
type GetMarkerInput struct {
	ID            string // required
	IncludeEvents bool
}

// GetMarkerOutput contains the result of the GetMarker operation.
type GetMarkerOutput struct {
	Marker marker.Marker  `json:"marker"`
	Events []marker.Event `json:"events,omitempty"`
}

// GetMarker retrieves a marker, optionally with its full event log.
func GetMarker(database *sql.DB, input GetMarkerInput) (*GetMarkerOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	m, err := db.GetMarker(database, input.ID)
	if err != nil {
		return nil, err
	}

	out := &GetMarkerOutput{Marker: *m}
	if input.IncludeEvents {
		events, err := db.ListEvents(database, input.ID)
		if err != nil {
			return nil, err
		}
		out.Events = events
	}
	return out, nil
}

// ListMarkersInput contains parameters for the ListMarkers operation.
type ListMarkersInput struct {
	ProjectID  string // required
	ActiveOnly bool   // restrict to the evaluable set
}

// ListMarkersOutput contains the result of the ListMarkers operation.
type ListMarkersOutput struct {
	Items []marker.Marker `json:"items"`
}

// ListMarkers retrieves a project's markers in creation order.
func ListMarkers(database *sql.DB, input ListMarkersInput) (*ListMarkersOutput, error) {
	if input.ProjectID == "" {
		return nil, errors.NewInvalidRequest("project_id is required")
	}
	if _, err := db.GetProject(database, input.ProjectID); err != nil {
		return nil, err
	}

	markers, err := db.ListMarkers(database, input.ProjectID, input.ActiveOnly)
	if err != nil {
		return nil, err
	}
	return &ListMarkersOutput{Items: markers}, nil
}

// UpdateMarkerInput contains parameters for the UpdateMarker operation.
// Lifecycle status and interaction counters are not editable here; they
// advance only through RecordMarkerEvent.
type UpdateMarkerInput struct {
	ID string // required

	// Editable fields (nil = don't change)
	CounterID      *string
	TriggerType    *marker.TriggerType
	Condition      *marker.Condition
	StartRow       *int
	EndRow         *int
	RepeatInterval *int
	RepeatOffset   *int
	AlertMessage   *string
	AlertType      *marker.AlertType
	Priority       *int
	DisplayStyle   *string
	Color          *string
	Category       *string
	IsActive       *bool
}

// UpdateMarkerOutput contains the result of the UpdateMarker operation.
type UpdateMarkerOutput struct {
	Marker marker.Marker `json:"marker"`
}

// UpdateMarker modifies a marker's rule or presentation. The updated rule
// is re-validated as a whole before persisting.
func UpdateMarker(database *sql.DB, input UpdateMarkerInput) (*UpdateMarkerOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	m, err := db.GetMarker(database, input.ID)
	if err != nil {
		return nil, err
	}

	if input.CounterID != nil {
		if *input.CounterID == "" {
			m.CounterID = nil
		} else {
			if _, err := resolveCounter(database, m.ProjectID, *input.CounterID); err != nil {
				return nil, err
			}
			m.CounterID = input.CounterID
		}
	}
	if input.TriggerType != nil {
		m.TriggerType = *input.TriggerType
	}
	if input.Condition != nil {
		m.Condition = *input.Condition
	}
	if input.StartRow != nil {
		m.StartRow = input.StartRow
	}
	if input.EndRow != nil {
		m.EndRow = input.EndRow
	}
	if input.RepeatInterval != nil {
		m.RepeatInterval = input.RepeatInterval
	}
	if input.RepeatOffset != nil {
		m.RepeatOffset = input.RepeatOffset
	}
	if input.AlertMessage != nil {
		m.AlertMessage = *input.AlertMessage
	}
	if input.AlertType != nil {
		m.AlertType = *input.AlertType
	}
	if input.Priority != nil {
		m.Priority = *input.Priority
	}
	if input.DisplayStyle != nil {
		m.DisplayStyle = *input.DisplayStyle
	}
	if input.Color != nil {
		m.Color = *input.Color
	}
	if input.Category != nil {
		m.Category = *input.Category
	}
	if input.IsActive != nil {
		m.IsActive = *input.IsActive
	}
	m.UpdatedAt = time.Now().Unix()

	if err := marker.Validate(m); err != nil {
		return nil, err
	}
	if err := db.UpdateMarker(database, m); err != nil {
		return nil, err
	}

	return &UpdateMarkerOutput{Marker: *m}, nil
}

// DeleteMarkerInput contains parameters for the DeleteMarker operation.
type DeleteMarkerInput struct {
	ID string
}

// DeleteMarkerOutput contains the result of the DeleteMarker operation.
type DeleteMarkerOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeleteMarker hard-deletes a marker and its event log.
func DeleteMarker(database *sql.DB, input DeleteMarkerInput) (*DeleteMarkerOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if err := db.DeleteMarker(database, input.ID); err != nil {
		return nil, err
	}
	return &DeleteMarkerOutput{Deleted: true, ID: input.ID}, nil
}
