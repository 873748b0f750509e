package web

import (
	"database/sql"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/knitlab/skein/internal/config"
	"github.com/knitlab/skein/internal/db"
	"github.com/knitlab/skein/internal/errors"
	"github.com/knitlab/skein/internal/marker"
	"github.com/knitlab/skein/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleProjects handles GET /projects, the project list page.
func (h *Handlers) HandleProjects(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListProjects(h.db, ops.ListProjectsInput{
		Limit:  parseIntParam(r, "limit", 20),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "projects", ProjectsPageData{
		PageData: PageData{
			Title:   "Projects",
			Version: h.renderer.version,
			Nav:     "projects",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
	})
}

// HandleProjectDetail handles GET /projects/{id}, the project dashboard:
// counters, markers, the lookahead list, the timeline, and usage stats.
func (h *Handlers) HandleProjectDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("project ID is required"))
		return
	}

	project, err := ops.GetProject(h.db, ops.GetProjectInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	markers, err := ops.ListMarkers(h.db, ops.ListMarkersInput{ProjectID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	upcoming, err := ops.UpcomingMarkers(h.db, h.cfg, ops.UpcomingMarkersInput{
		ProjectID: id,
		Window:    parseIntParam(r, "window", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	timeline, err := ops.MarkerTimeline(h.db, h.cfg, ops.MarkerTimelineInput{ProjectID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	summary, err := ops.Summary(h.db, ops.SummaryInput{ProjectID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	var rendered template.HTML
	if project.Project.NotesMD != nil {
		rendered = renderMarkdown(*project.Project.NotesMD)
	}

	h.renderer.renderPage(w, r, "detail", ProjectDetailPageData{
		PageData: PageData{
			Title:   project.Project.NameRaw,
			Version: h.renderer.version,
			Nav:     "projects",
		},
		Project:      project.Project,
		Counters:     project.Counters,
		Primary:      primaryCounter(project.Counters),
		Markers:      markers.Items,
		Upcoming:     upcoming.Items,
		Window:       upcoming.Window,
		Timeline:     timeline.Items,
		Summary:      summary.Summary,
		RenderedHTML: rendered,
	})
}

// HandleAdvance handles POST /projects/{id}/advance: advance a counter and
// evaluate markers at the new value.
func (h *Handlers) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("project ID is required"))
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.AdvanceCounterInput{
		ProjectID: id,
		CounterID: r.FormValue("counter_id"),
	}
	if delta := r.FormValue("delta"); delta != "" {
		d, err := strconv.Atoi(delta)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("delta must be an integer"))
			return
		}
		input.Delta = d
	}

	result, err := ops.AdvanceCounter(h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: reload the dashboard
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/projects/"+id)
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	// Default: redirect back to the dashboard
	http.Redirect(w, r, "/projects/"+id, http.StatusFound)
}

// HandleProjectDelete handles DELETE /projects/{id}.
func (h *Handlers) HandleProjectDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("project ID is required"))
		return
	}

	result, err := ops.DeleteProject(h.db, ops.DeleteProjectInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/projects")
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": result.Deleted,
			"id":      result.ID,
		})
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/projects", http.StatusFound)
}

// HandleMarkerEvent handles POST /markers/{id}/event: record a lifecycle
// event (snooze, acknowledge, complete) from the dashboard.
func (h *Handlers) HandleMarkerEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("marker ID is required"))
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.RecordMarkerEventInput{
		MarkerID:  id,
		EventType: marker.EventType(r.FormValue("event_type")),
	}
	if atRow := r.FormValue("at_row"); atRow != "" {
		v, err := strconv.Atoi(atRow)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("at_row must be an integer"))
			return
		}
		input.AtRow = &v
	}

	result, err := ops.RecordMarkerEvent(h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	projectPath := "/projects/" + result.Marker.ProjectID

	// HTMX request: reload the dashboard
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", projectPath)
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	// Default: redirect
	http.Redirect(w, r, projectPath, http.StatusFound)
}

// HandleMarkerDelete handles DELETE /markers/{id}.
func (h *Handlers) HandleMarkerDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("marker ID is required"))
		return
	}

	// Read the marker first so the redirect can land on its project page.
	m, err := ops.GetMarker(h.db, ops.GetMarkerInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.DeleteMarker(h.db, ops.DeleteMarkerInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	projectPath := "/projects/" + m.Marker.ProjectID

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", projectPath)
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": result.Deleted,
			"id":      result.ID,
		})
		return
	}

	// Default: redirect
	http.Redirect(w, r, projectPath, http.StatusFound)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// primaryCounter picks the primary counter out of a project's counter set.
func primaryCounter(counters []db.Counter) *db.Counter {
	for i := range counters {
		if counters[i].IsPrimary {
			return &counters[i]
		}
	}
	return nil
}
