package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/knitlab/skein/internal/config"
	"github.com/knitlab/skein/internal/errors"
	"github.com/knitlab/skein/internal/marker"
	"github.com/knitlab/skein/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// ProjectCreateRequest represents the arguments for project_create.
type ProjectCreateRequest struct {
	Name      string  `json:"name"`
	Craft     string  `json:"craft,omitempty"`
	NotesMD   *string `json:"notes_md,omitempty"`
	TotalRows int     `json:"total_rows,omitempty"`
}

// ProjectListRequest represents the arguments for project_list.
type ProjectListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ProjectGetRequest represents the arguments for project_get.
type ProjectGetRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ProjectUpdateRequest represents the arguments for project_update.
type ProjectUpdateRequest struct {
	ID        string  `json:"id"`
	Name      *string `json:"name,omitempty"`
	Craft     *string `json:"craft,omitempty"`
	NotesMD   *string `json:"notes_md,omitempty"`
	TotalRows *int    `json:"total_rows,omitempty"`
}

// ProjectDeleteRequest represents the arguments for project_delete.
type ProjectDeleteRequest struct {
	ID string `json:"id"`
}

// CounterGetRequest represents the arguments for counter_get.
type CounterGetRequest struct {
	ProjectID string `json:"project_id"`
	CounterID string `json:"counter_id,omitempty"`
}

// CounterAdvanceRequest represents the arguments for counter_advance.
type CounterAdvanceRequest struct {
	ProjectID string `json:"project_id"`
	CounterID string `json:"counter_id,omitempty"`
	Delta     int    `json:"delta,omitempty"`
}

// CounterSetRequest represents the arguments for counter_set.
type CounterSetRequest struct {
	ProjectID string `json:"project_id"`
	CounterID string `json:"counter_id,omitempty"`
	Value     int    `json:"value"`
}

// MarkerCreateRequest represents the arguments for marker_create.
type MarkerCreateRequest struct {
	ProjectID      string           `json:"project_id"`
	CounterID      *string          `json:"counter_id,omitempty"`
	TriggerType    string           `json:"trigger_type"`
	Condition      marker.Condition `json:"condition,omitempty"`
	StartRow       *int             `json:"start_row,omitempty"`
	EndRow         *int             `json:"end_row,omitempty"`
	RepeatInterval *int             `json:"repeat_interval,omitempty"`
	RepeatOffset   *int             `json:"repeat_offset,omitempty"`
	AlertMessage   string           `json:"alert_message,omitempty"`
	AlertType      string           `json:"alert_type,omitempty"`
	Priority       int              `json:"priority,omitempty"`
	DisplayStyle   string           `json:"display_style,omitempty"`
	Color          string           `json:"color,omitempty"`
	Category       string           `json:"category,omitempty"`
}

// MarkerGetRequest represents the arguments for marker_get.
type MarkerGetRequest struct {
	ID            string `json:"id"`
	IncludeEvents bool   `json:"include_events,omitempty"`
}

// MarkerListRequest represents the arguments for marker_list.
type MarkerListRequest struct {
	ProjectID  string `json:"project_id"`
	ActiveOnly bool   `json:"active_only,omitempty"`
}

// MarkerUpdateRequest represents the arguments for marker_update.
type MarkerUpdateRequest struct {
	ID             string            `json:"id"`
	CounterID      *string           `json:"counter_id,omitempty"`
	TriggerType    *string           `json:"trigger_type,omitempty"`
	Condition      *marker.Condition `json:"condition,omitempty"`
	StartRow       *int              `json:"start_row,omitempty"`
	EndRow         *int              `json:"end_row,omitempty"`
	RepeatInterval *int              `json:"repeat_interval,omitempty"`
	RepeatOffset   *int              `json:"repeat_offset,omitempty"`
	AlertMessage   *string           `json:"alert_message,omitempty"`
	AlertType      *string           `json:"alert_type,omitempty"`
	Priority       *int              `json:"priority,omitempty"`
	DisplayStyle   *string           `json:"display_style,omitempty"`
	Color          *string           `json:"color,omitempty"`
	Category       *string           `json:"category,omitempty"`
	IsActive       *bool             `json:"is_active,omitempty"`
}

// MarkerDeleteRequest represents the arguments for marker_delete.
type MarkerDeleteRequest struct {
	ID string `json:"id"`
}

// MarkerEventRequest represents the arguments for marker_event.
type MarkerEventRequest struct {
	MarkerID  string `json:"marker_id"`
	EventType string `json:"event_type"`
	AtRow     *int   `json:"at_row,omitempty"`
}

// MarkerUpcomingRequest represents the arguments for marker_upcoming.
type MarkerUpcomingRequest struct {
	ProjectID string `json:"project_id"`
	CounterID string `json:"counter_id,omitempty"`
	Window    int    `json:"window,omitempty"`
}

// MarkerTimelineRequest represents the arguments for marker_timeline.
type MarkerTimelineRequest struct {
	ProjectID string `json:"project_id"`
}

// MarkerSummaryRequest represents the arguments for marker_summary.
type MarkerSummaryRequest struct {
	ProjectID string `json:"project_id"`
}

// MarkerAcceptSuggestionRequest represents the arguments for marker_accept_suggestion.
type MarkerAcceptSuggestionRequest struct {
	ProjectID  string            `json:"project_id"`
	Suggestion marker.Suggestion `json:"suggestion"`
}

// Handler implementations

// HandleProjectCreate handles the project_create tool call.
func (h *Handlers) HandleProjectCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CreateProject(h.db, ops.CreateProjectInput{
		Name:      input.Name,
		Craft:     input.Craft,
		NotesMD:   input.NotesMD,
		TotalRows: input.TotalRows,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleProjectList handles the project_list tool call.
func (h *Handlers) HandleProjectList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListProjects(h.db, ops.ListProjectsInput{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleProjectGet handles the project_get tool call.
func (h *Handlers) HandleProjectGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.GetProject(h.db, ops.GetProjectInput{
		ID:   input.ID,
		Name: input.Name,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleProjectUpdate handles the project_update tool call.
func (h *Handlers) HandleProjectUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.UpdateProject(h.db, ops.UpdateProjectInput{
		ID:        input.ID,
		Name:      input.Name,
		Craft:     input.Craft,
		NotesMD:   input.NotesMD,
		TotalRows: input.TotalRows,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleProjectDelete handles the project_delete tool call.
func (h *Handlers) HandleProjectDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteProject(h.db, ops.DeleteProjectInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCounterGet handles the counter_get tool call.
func (h *Handlers) HandleCounterGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CounterGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.GetCounterValue(h.db, ops.GetCounterValueInput{
		ProjectID: input.ProjectID,
		CounterID: input.CounterID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCounterAdvance handles the counter_advance tool call.
func (h *Handlers) HandleCounterAdvance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CounterAdvanceRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AdvanceCounter(h.db, ops.AdvanceCounterInput{
		ProjectID: input.ProjectID,
		CounterID: input.CounterID,
		Delta:     input.Delta,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCounterSet handles the counter_set tool call.
func (h *Handlers) HandleCounterSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CounterSetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SetCounter(h.db, ops.SetCounterInput{
		ProjectID: input.ProjectID,
		CounterID: input.CounterID,
		Value:     input.Value,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMarkerCreate handles the marker_create tool call.
func (h *Handlers) HandleMarkerCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MarkerCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CreateMarker(h.db, ops.CreateMarkerInput{
		ProjectID:      input.ProjectID,
		CounterID:      input.CounterID,
		TriggerType:    marker.TriggerType(input.TriggerType),
		Condition:      input.Condition,
		StartRow:       input.StartRow,
		EndRow:         input.EndRow,
		RepeatInterval: input.RepeatInterval,
		RepeatOffset:   input.RepeatOffset,
		AlertMessage:   input.AlertMessage,
		AlertType:      marker.AlertType(input.AlertType),
		Priority:       input.Priority,
		DisplayStyle:   input.DisplayStyle,
		Color:          input.Color,
		Category:       input.Category,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMarkerGet handles the marker_get tool call.
func (h *Handlers) HandleMarkerGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MarkerGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.GetMarker(h.db, ops.GetMarkerInput{
		ID:            input.ID,
		IncludeEvents: input.IncludeEvents,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMarkerList handles the marker_list tool call.
func (h *Handlers) HandleMarkerList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MarkerListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListMarkers(h.db, ops.ListMarkersInput{
		ProjectID:  input.ProjectID,
		ActiveOnly: input.ActiveOnly,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMarkerUpdate handles the marker_update tool call.
func (h *Handlers) HandleMarkerUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MarkerUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	opsInput := ops.UpdateMarkerInput{
		ID:             input.ID,
		CounterID:      input.CounterID,
		Condition:      input.Condition,
		StartRow:       input.StartRow,
		EndRow:         input.EndRow,
		RepeatInterval: input.RepeatInterval,
		RepeatOffset:   input.RepeatOffset,
		AlertMessage:   input.AlertMessage,
		Priority:       input.Priority,
		DisplayStyle:   input.DisplayStyle,
		Color:          input.Color,
		Category:       input.Category,
		IsActive:       input.IsActive,
	}
	if input.TriggerType != nil {
		tt := marker.TriggerType(*input.TriggerType)
		opsInput.TriggerType = &tt
	}
	if input.AlertType != nil {
		at := marker.AlertType(*input.AlertType)
		opsInput.AlertType = &at
	}

	result, err := ops.UpdateMarker(h.db, opsInput)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMarkerDelete handles the marker_delete tool call.
func (h *Handlers) HandleMarkerDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MarkerDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteMarker(h.db, ops.DeleteMarkerInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMarkerEvent handles the marker_event tool call.
func (h *Handlers) HandleMarkerEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MarkerEventRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RecordMarkerEvent(h.db, ops.RecordMarkerEventInput{
		MarkerID:  input.MarkerID,
		EventType: marker.EventType(input.EventType),
		AtRow:     input.AtRow,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMarkerUpcoming handles the marker_upcoming tool call.
func (h *Handlers) HandleMarkerUpcoming(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MarkerUpcomingRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.UpcomingMarkers(h.db, h.cfg, ops.UpcomingMarkersInput{
		ProjectID: input.ProjectID,
		CounterID: input.CounterID,
		Window:    input.Window,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMarkerTimeline handles the marker_timeline tool call.
func (h *Handlers) HandleMarkerTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MarkerTimelineRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.MarkerTimeline(h.db, h.cfg, ops.MarkerTimelineInput{ProjectID: input.ProjectID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMarkerSummary handles the marker_summary tool call.
func (h *Handlers) HandleMarkerSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MarkerSummaryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Summary(h.db, ops.SummaryInput{ProjectID: input.ProjectID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMarkerAcceptSuggestion handles the marker_accept_suggestion tool call.
func (h *Handlers) HandleMarkerAcceptSuggestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MarkerAcceptSuggestionRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AcceptSuggestion(h.db, ops.AcceptSuggestionInput{
		ProjectID:  input.ProjectID,
		Suggestion: input.Suggestion,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if skeinErr, ok := err.(*errors.SkeinError); ok {
		errorObj := map[string]any{
			"code":    skeinErr.Code,
			"message": skeinErr.Message,
			"status":  skeinErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if skeinErr.Code != errors.ErrInternal && skeinErr.Details != nil {
			errorObj["details"] = skeinErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
