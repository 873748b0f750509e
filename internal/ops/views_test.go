package ops

import (
	"testing"

	"github.com/knitlab/skein/internal/config"
	"github.com/knitlab/skein/internal/errors"
	"github.com/knitlab/skein/internal/marker"
)

func TestUpcomingMarkers(t *testing.T) {
	database := testDB(t)
	cfg := config.DefaultConfig()
	projectID := projectFixture(t, database, "pullover")

	if _, err := CreateMarker(database, CreateMarkerInput{
		ProjectID:    projectID,
		TriggerType:  marker.TriggerCounterValue,
		Condition:    marker.Condition{Operator: marker.OpEquals, Value: 8},
		AlertMessage: "near",
	}); err != nil {
		t.Fatalf("CreateMarker failed: %v", err)
	}
	if _, err := CreateMarker(database, CreateMarkerInput{
		ProjectID:    projectID,
		TriggerType:  marker.TriggerCounterValue,
		Condition:    marker.Condition{Operator: marker.OpEquals, Value: 60},
		AlertMessage: "far",
	}); err != nil {
		t.Fatalf("CreateMarker failed: %v", err)
	}

	if _, err := SetCounter(database, SetCounterInput{ProjectID: projectID, Value: 5}); err != nil {
		t.Fatalf("SetCounter failed: %v", err)
	}

	out, err := UpcomingMarkers(database, cfg, UpcomingMarkersInput{ProjectID: projectID, Window: 10})
	if err != nil {
		t.Fatalf("UpcomingMarkers failed: %v", err)
	}
	if out.CurrentValue != 5 || out.Window != 10 {
		t.Errorf("current=%d window=%d, want 5/10", out.CurrentValue, out.Window)
	}
	if len(out.Items) != 1 || out.Items[0].At != 8 {
		t.Fatalf("items = %+v, want the row-8 marker only", out.Items)
	}
}

func TestUpcomingMarkers_IntervalMarker(t *testing.T) {
	database := testDB(t)
	cfg := config.DefaultConfig()
	projectID := projectFixture(t, database, "pullover")

	// Interval marker with only the condition payload, as the create
	// surfaces produce it.
	if _, err := CreateMarker(database, CreateMarkerInput{
		ProjectID:    projectID,
		TriggerType:  marker.TriggerRowInterval,
		Condition:    marker.Condition{Interval: 5},
		AlertMessage: "count your stitches",
	}); err != nil {
		t.Fatalf("CreateMarker failed: %v", err)
	}
	if _, err := SetCounter(database, SetCounterInput{ProjectID: projectID, Value: 7}); err != nil {
		t.Fatalf("SetCounter failed: %v", err)
	}

	out, err := UpcomingMarkers(database, cfg, UpcomingMarkersInput{ProjectID: projectID, Window: 10})
	if err != nil {
		t.Fatalf("UpcomingMarkers failed: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].At != 10 {
		t.Fatalf("items = %+v, want one item at row 10", out.Items)
	}

	// Advancing to the projected row fires the same marker.
	adv, err := AdvanceCounter(database, AdvanceCounterInput{ProjectID: projectID, Delta: 3})
	if err != nil {
		t.Fatalf("AdvanceCounter failed: %v", err)
	}
	if len(adv.Fired) != 1 || adv.Fired[0].ID != out.Items[0].Marker.ID {
		t.Fatalf("fired = %+v, want the projected marker", adv.Fired)
	}
}

func TestUpcomingMarkers_WindowDefaultsAndValidation(t *testing.T) {
	database := testDB(t)
	cfg := config.DefaultConfig()
	projectID := projectFixture(t, database, "pullover")

	out, err := UpcomingMarkers(database, cfg, UpcomingMarkersInput{ProjectID: projectID})
	if err != nil {
		t.Fatalf("UpcomingMarkers failed: %v", err)
	}
	if out.Window != cfg.DefaultLookahead {
		t.Errorf("Window = %d, want config default %d", out.Window, cfg.DefaultLookahead)
	}

	if _, err := UpcomingMarkers(database, cfg, UpcomingMarkersInput{ProjectID: projectID, Window: -1}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("negative window: err = %v, want INVALID_REQUEST", err)
	}
}

func TestMarkerTimeline(t *testing.T) {
	database := testDB(t)
	cfg := config.DefaultConfig()
	projectID := projectFixture(t, database, "pullover")

	if _, err := CreateMarker(database, CreateMarkerInput{
		ProjectID:    projectID,
		TriggerType:  marker.TriggerCounterValue,
		Condition:    marker.Condition{Operator: marker.OpEquals, Value: 50},
		AlertMessage: "halfway",
	}); err != nil {
		t.Fatalf("CreateMarker failed: %v", err)
	}
	if _, err := SetCounter(database, SetCounterInput{ProjectID: projectID, Value: 25}); err != nil {
		t.Fatalf("SetCounter failed: %v", err)
	}

	out, err := MarkerTimeline(database, cfg, MarkerTimelineInput{ProjectID: projectID})
	if err != nil {
		t.Fatalf("MarkerTimeline failed: %v", err)
	}
	if out.ProjectLength != 100 || out.CurrentValue != 25 {
		t.Errorf("length=%d current=%d, want 100/25", out.ProjectLength, out.CurrentValue)
	}
	if len(out.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(out.Items))
	}
	item := out.Items[0]
	if len(item.Occurrences) != 1 || item.Occurrences[0].Position != 0.5 {
		t.Errorf("occurrences = %+v, want one at position 0.5", item.Occurrences)
	}
	if item.Class != marker.ClassUpcoming {
		t.Errorf("Class = %q, want upcoming", item.Class)
	}
}

func TestSummaryOp(t *testing.T) {
	database := testDB(t)
	projectID := projectFixture(t, database, "pullover")
	m := markerFixture(t, database, projectID)

	for _, et := range []marker.EventType{marker.EventTriggered, marker.EventSnoozed} {
		if _, err := RecordMarkerEvent(database, RecordMarkerEventInput{
			MarkerID:  m.ID,
			EventType: et,
			AtRow:     intPtr(1),
		}); err != nil {
			t.Fatalf("event %s: %v", et, err)
		}
	}

	out, err := Summary(database, SummaryInput{ProjectID: projectID})
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	s := out.Summary
	if s.TotalMarkers != 1 || s.ActiveMarkers != 1 {
		t.Errorf("totals = %d/%d, want 1/1", s.TotalMarkers, s.ActiveMarkers)
	}
	if s.TotalTriggered != 1 || s.TotalSnoozed != 1 {
		t.Errorf("counts = %d/%d, want 1/1", s.TotalTriggered, s.TotalSnoozed)
	}
	if s.SnoozeRate != 1.0 {
		t.Errorf("SnoozeRate = %v, want 1.0", s.SnoozeRate)
	}
}

func TestAcceptSuggestion(t *testing.T) {
	database := testDB(t)
	projectID := projectFixture(t, database, "pullover")

	out, err := AcceptSuggestion(database, AcceptSuggestionInput{
		ProjectID: projectID,
		Suggestion: marker.Suggestion{
			Type:           "repeat",
			StartRow:       10,
			RepeatInterval: intPtr(6),
			Message:        "cable cross",
			Category:       "cable",
		},
	})
	if err != nil {
		t.Fatalf("AcceptSuggestion failed: %v", err)
	}

	m := out.Marker
	if m.ID == "" || m.ProjectID != projectID {
		t.Errorf("marker not bound: %+v", m)
	}
	if m.TriggerType != marker.TriggerRowInterval {
		t.Errorf("TriggerType = %q, want row_interval", m.TriggerType)
	}
	if !m.SuggestedByAI {
		t.Error("SuggestedByAI = false")
	}

	// Accepted suggestions participate in evaluation like hand-made markers.
	if _, err := SetCounter(database, SetCounterInput{ProjectID: projectID, Value: 17}); err != nil {
		t.Fatalf("SetCounter failed: %v", err)
	}
	adv, err := AdvanceCounter(database, AdvanceCounterInput{ProjectID: projectID})
	if err != nil {
		t.Fatalf("AdvanceCounter failed: %v", err)
	}
	if len(adv.Fired) != 1 || adv.Fired[0].ID != m.ID {
		t.Errorf("fired = %+v, want the accepted marker at row 18", adv.Fired)
	}
}

func TestAcceptSuggestion_Validation(t *testing.T) {
	database := testDB(t)
	projectID := projectFixture(t, database, "pullover")

	_, err := AcceptSuggestion(database, AcceptSuggestionInput{
		ProjectID:  projectID,
		Suggestion: marker.Suggestion{Type: "row", StartRow: 5},
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("missing message: err = %v, want INVALID_REQUEST", err)
	}

	_, err = AcceptSuggestion(database, AcceptSuggestionInput{
		ProjectID:  "missing",
		Suggestion: marker.Suggestion{Type: "row", StartRow: 5, Message: "x"},
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("unknown project: err = %v, want NOT_FOUND", err)
	}
}
