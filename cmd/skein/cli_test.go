package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"testing"

	"github.com/knitlab/skein/internal/config"
	"github.com/knitlab/skein/internal/db"
	"github.com/knitlab/skein/internal/marker"
	"github.com/knitlab/skein/internal/ops"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	cleanup := func() {
		database.Close()
	}
	return database, cleanup
}

// testConfig returns a default config for testing.
func testConfig() *config.Config {
	return config.DefaultConfig()
}

// runCapture runs the app with args and returns captured stdout.
func runCapture(t *testing.T, app interface{ Run([]string) error }, args []string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := app.Run(args)

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

// seedProject creates a project directly through the ops layer.
func seedProject(t *testing.T, database *sql.DB, name string, totalRows int) *ops.CreateProjectOutput {
	t.Helper()
	out, err := ops.CreateProject(database, ops.CreateProjectInput{
		Name:      name,
		TotalRows: totalRows,
	})
	if err != nil {
		t.Fatalf("failed to seed project %q: %v", name, err)
	}
	return out
}

// TestCLIProjectAdd tests the project add command with notes piped via stdin.
func TestCLIProjectAdd(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	app := newCLIApp(database, testConfig())

	// Capture stdout
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// Pipe pattern notes via stdin
	oldStdin := os.Stdin
	stdinR, stdinW, _ := os.Pipe()
	os.Stdin = stdinR

	go func() {
		_, _ = stdinW.WriteString("## Pattern\nCast on 120 stitches.")
		stdinW.Close()
	}()

	err := app.Run([]string{"skein", "project", "add", "--craft=crochet", "--total-rows=80", "Granny Blanket"})

	os.Stdin = oldStdin

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("project add failed: %v", err)
	}

	var output ops.CreateProjectOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, buf.String())
	}

	if output.Project.ID == "" {
		t.Error("expected non-empty project ID")
	}
	if output.Project.Craft != "crochet" {
		t.Errorf("expected craft=crochet, got %s", output.Project.Craft)
	}
	if output.Project.NotesMD == nil || *output.Project.NotesMD == "" {
		t.Error("expected notes from stdin to be stored")
	}
	if !output.Counter.IsPrimary {
		t.Error("expected primary counter alongside the project")
	}
}

// TestCLIProjectGet tests fetching by positional ID and by name.
func TestCLIProjectGet(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	seeded := seedProject(t, database, "get-test", 100)
	app := newCLIApp(database, testConfig())

	t.Run("get by name", func(t *testing.T) {
		out, err := runCapture(t, app, []string{"skein", "project", "get", "--name=get-test"})
		if err != nil {
			t.Fatalf("project get failed: %v", err)
		}

		var output ops.GetProjectOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Project.ID != seeded.Project.ID {
			t.Errorf("expected ID=%s, got %s", seeded.Project.ID, output.Project.ID)
		}
	})

	t.Run("get by id", func(t *testing.T) {
		out, err := runCapture(t, app, []string{"skein", "project", "get", seeded.Project.ID})
		if err != nil {
			t.Fatalf("project get failed: %v", err)
		}

		var output ops.GetProjectOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if len(output.Counters) != 1 {
			t.Errorf("expected 1 counter, got %d", len(output.Counters))
		}
	})
}

// TestCLIProjectList tests the project list command.
func TestCLIProjectList(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	for _, name := range []string{"list-a", "list-b", "list-c"} {
		seedProject(t, database, name, 0)
	}

	app := newCLIApp(database, testConfig())

	out, err := runCapture(t, app, []string{"skein", "project", "list"})
	if err != nil {
		t.Fatalf("project list failed: %v", err)
	}

	var output ops.ListProjectsOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if len(output.Items) != 3 {
		t.Errorf("expected 3 items, got %d", len(output.Items))
	}
	if output.Pagination.Total != 3 {
		t.Errorf("expected total=3, got %d", output.Pagination.Total)
	}
}

// TestCLIMarkerAdd tests creating a marker via flags.
func TestCLIMarkerAdd(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	seeded := seedProject(t, database, "marker-add-test", 100)
	app := newCLIApp(database, testConfig())

	out, err := runCapture(t, app, []string{
		"skein", "marker", "add",
		"--project=" + seeded.Project.ID,
		"--trigger=row_interval",
		"--interval=10",
		"--message=place stitch marker",
		"--category=shaping",
	})
	if err != nil {
		t.Fatalf("marker add failed: %v", err)
	}

	var output ops.CreateMarkerOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Marker.ID == "" {
		t.Error("expected non-empty marker ID")
	}
	if output.Marker.TriggerType != marker.TriggerRowInterval {
		t.Errorf("expected trigger=row_interval, got %s", output.Marker.TriggerType)
	}
	if output.Marker.Condition.Interval != 10 {
		t.Errorf("expected interval=10, got %d", output.Marker.Condition.Interval)
	}
}

// TestCLIAdvance tests that advance bumps the counter and reports fired markers.
func TestCLIAdvance(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	seeded := seedProject(t, database, "advance-test", 100)
	if _, err := ops.CreateMarker(database, ops.CreateMarkerInput{
		ProjectID:    seeded.Project.ID,
		TriggerType:  marker.TriggerCounterValue,
		Condition:    marker.Condition{Operator: marker.OpEquals, Value: 1},
		AlertMessage: "first row done",
	}); err != nil {
		t.Fatalf("failed to seed marker: %v", err)
	}

	app := newCLIApp(database, testConfig())

	out, err := runCapture(t, app, []string{"skein", "advance", "--project=" + seeded.Project.ID})
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	var output ops.AdvanceCounterOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Counter.Value != 1 {
		t.Errorf("expected counter=1, got %d", output.Counter.Value)
	}
	if len(output.Fired) != 1 {
		t.Errorf("expected 1 fired marker, got %d", len(output.Fired))
	}
}

// TestCLISet tests the set command.
func TestCLISet(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	seeded := seedProject(t, database, "set-test", 100)
	app := newCLIApp(database, testConfig())

	out, err := runCapture(t, app, []string{"skein", "set", "--project=" + seeded.Project.ID, "--value=42"})
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var output ops.SetCounterOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Counter.Value != 42 {
		t.Errorf("expected counter=42, got %d", output.Counter.Value)
	}
}

// TestCLIUpcoming tests the upcoming command.
func TestCLIUpcoming(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	seeded := seedProject(t, database, "upcoming-test", 100)
	if _, err := ops.CreateMarker(database, ops.CreateMarkerInput{
		ProjectID:    seeded.Project.ID,
		TriggerType:  marker.TriggerCounterValue,
		Condition:    marker.Condition{Operator: marker.OpEquals, Value: 7},
		AlertMessage: "start decreases",
	}); err != nil {
		t.Fatalf("failed to seed marker: %v", err)
	}

	app := newCLIApp(database, testConfig())

	out, err := runCapture(t, app, []string{"skein", "upcoming", "--project=" + seeded.Project.ID, "--window=10"})
	if err != nil {
		t.Fatalf("upcoming failed: %v", err)
	}

	var output ops.UpcomingMarkersOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if len(output.Items) != 1 {
		t.Fatalf("expected 1 upcoming item, got %d", len(output.Items))
	}
	if output.Items[0].At != 7 {
		t.Errorf("expected at=7, got %d", output.Items[0].At)
	}
}

// TestCLISummary tests the summary command.
func TestCLISummary(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	seeded := seedProject(t, database, "summary-test", 100)
	if _, err := ops.CreateMarker(database, ops.CreateMarkerInput{
		ProjectID:    seeded.Project.ID,
		TriggerType:  marker.TriggerCounterValue,
		Condition:    marker.Condition{Operator: marker.OpEquals, Value: 5},
		AlertMessage: "checkpoint",
	}); err != nil {
		t.Fatalf("failed to seed marker: %v", err)
	}

	app := newCLIApp(database, testConfig())

	out, err := runCapture(t, app, []string{"skein", "summary", "--project=" + seeded.Project.ID})
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}

	var output ops.SummaryOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Summary.TotalMarkers != 1 {
		t.Errorf("expected total_markers=1, got %d", output.Summary.TotalMarkers)
	}
	if output.Summary.ActiveMarkers != 1 {
		t.Errorf("expected active_markers=1, got %d", output.Summary.ActiveMarkers)
	}
}

// TestCLISuggest tests accepting a suggestion piped as JSON.
func TestCLISuggest(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	seeded := seedProject(t, database, "suggest-test", 100)
	app := newCLIApp(database, testConfig())

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	oldStdin := os.Stdin
	stdinR, stdinW, _ := os.Pipe()
	os.Stdin = stdinR

	go func() {
		_, _ = stdinW.WriteString(`{"type":"repeat","start_row":0,"repeat_interval":6,"message":"cable cross","category":"cable"}`)
		stdinW.Close()
	}()

	err := app.Run([]string{"skein", "suggest", "--project=" + seeded.Project.ID})

	os.Stdin = oldStdin

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}

	var output ops.AcceptSuggestionOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Marker.TriggerType != marker.TriggerRowInterval {
		t.Errorf("expected trigger=row_interval, got %s", output.Marker.TriggerType)
	}
	if !output.Marker.SuggestedByAI {
		t.Error("expected suggested_by_ai=true")
	}
}

// TestCLIMarkerEvent tests recording lifecycle events.
func TestCLIMarkerEvent(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	seeded := seedProject(t, database, "event-test", 100)
	created, err := ops.CreateMarker(database, ops.CreateMarkerInput{
		ProjectID:    seeded.Project.ID,
		TriggerType:  marker.TriggerCounterValue,
		Condition:    marker.Condition{Operator: marker.OpEquals, Value: 10},
		AlertMessage: "bind off",
	})
	if err != nil {
		t.Fatalf("failed to seed marker: %v", err)
	}

	app := newCLIApp(database, testConfig())

	out, err := runCapture(t, app, []string{
		"skein", "marker", "event", "--type=completed", "--at-row=10", created.Marker.ID,
	})
	if err != nil {
		t.Fatalf("marker event failed: %v", err)
	}

	var output ops.RecordMarkerEventOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Marker.Status != marker.StatusCompleted {
		t.Errorf("expected status=completed, got %s", output.Marker.Status)
	}
	if output.Event.AtRow != 10 {
		t.Errorf("expected at_row=10, got %d", output.Event.AtRow)
	}
}

// TestCLIErrorHandling tests error handling in CLI commands.
func TestCLIErrorHandling(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	app := newCLIApp(database, testConfig())

	t.Run("project get not found returns error", func(t *testing.T) {
		_, err := runCapture(t, app, []string{"skein", "project", "get", "--name=nonexistent"})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("project rm without id returns error", func(t *testing.T) {
		_, err := runCapture(t, app, []string{"skein", "project", "rm"})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("marker event invalid type returns error", func(t *testing.T) {
		seeded := seedProject(t, database, "err-test", 0)
		created, err := ops.CreateMarker(database, ops.CreateMarkerInput{
			ProjectID:    seeded.Project.ID,
			TriggerType:  marker.TriggerCounterValue,
			Condition:    marker.Condition{Operator: marker.OpEquals, Value: 1},
			AlertMessage: "x",
		})
		if err != nil {
			t.Fatalf("failed to seed marker: %v", err)
		}

		_, err = runCapture(t, app, []string{"skein", "marker", "event", "--type=dismissed", created.Marker.ID})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})
}

// TestIsCLIMode tests the isCLIMode function.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{
			name:     "no args",
			args:     []string{"skein"},
			expected: false,
		},
		{
			name:     "project command",
			args:     []string{"skein", "project"},
			expected: true,
		},
		{
			name:     "advance command",
			args:     []string{"skein", "advance"},
			expected: true,
		},
		{
			name:     "web command",
			args:     []string{"skein", "web"},
			expected: true,
		},
		{
			name:     "help flag",
			args:     []string{"skein", "--help"},
			expected: true,
		},
		{
			name:     "version flag",
			args:     []string{"skein", "--version"},
			expected: true,
		},
		{
			name:     "unknown arg defaults to MCP",
			args:     []string{"skein", "--unknown"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save and restore os.Args
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			result := isCLIMode()

			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests the isHelpOrVersion function.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{
			name:     "no args",
			args:     []string{"skein"},
			expected: false,
		},
		{
			name:     "help flag",
			args:     []string{"skein", "--help"},
			expected: true,
		},
		{
			name:     "short help flag",
			args:     []string{"skein", "-h"},
			expected: true,
		},
		{
			name:     "version flag",
			args:     []string{"skein", "--version"},
			expected: true,
		},
		{
			name:     "help subcommand",
			args:     []string{"skein", "help"},
			expected: true,
		},
		{
			name:     "advance command is not help",
			args:     []string{"skein", "advance"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			result := isHelpOrVersion()

			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}
