package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. Condition payloads and suggestion objects arrive as
// plain JSON objects; their shape is validated by the ops layer, not the
// schema.

var projectCreateToolDef = mcp.NewTool("project_create",
	mcp.WithDescription("Create a new project with its primary row counter."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Project name, unique after normalization"),
	),
	mcp.WithString("craft",
		mcp.Description("Craft kind: knitting (default) or crochet"),
	),
	mcp.WithString("notes_md",
		mcp.Description("Freeform pattern notes, markdown"),
	),
	mcp.WithNumber("total_rows",
		mcp.Description("Expected total rows, used as the timeline scale"),
	),
)

var projectListToolDef = mcp.NewTool("project_list",
	mcp.WithDescription("List projects, most recently updated first."),
	mcp.WithNumber("limit",
		mcp.Description("Max results (default 20, max 100)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Pagination offset"),
	),
)

var projectGetToolDef = mcp.NewTool("project_get",
	mcp.WithDescription("Get a project by id or by name, with its counters."),
	mcp.WithString("id",
		mcp.Description("Project ULID"),
	),
	mcp.WithString("name",
		mcp.Description("Project name (normalized lookup), used when id is absent"),
	),
)

var projectUpdateToolDef = mcp.NewTool("project_update",
	mcp.WithDescription("Update a project's name, craft, notes, or total rows."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Project ULID"),
	),
	mcp.WithString("name",
		mcp.Description("New name"),
	),
	mcp.WithString("craft",
		mcp.Description("New craft kind"),
	),
	mcp.WithString("notes_md",
		mcp.Description("New notes, markdown"),
	),
	mcp.WithNumber("total_rows",
		mcp.Description("New expected total rows"),
	),
)

var projectDeleteToolDef = mcp.NewTool("project_delete",
	mcp.WithDescription("Delete a project and everything under it (counters, markers, events)."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Project ULID"),
	),
)

var counterGetToolDef = mcp.NewTool("counter_get",
	mcp.WithDescription("Read a counter's current value."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project ULID"),
	),
	mcp.WithString("counter_id",
		mcp.Description("Counter ULID; omit for the primary row counter"),
	),
)

var counterAdvanceToolDef = mcp.NewTool("counter_advance",
	mcp.WithDescription("Advance a counter and evaluate markers at the new value. Returns the markers that fired."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project ULID"),
	),
	mcp.WithString("counter_id",
		mcp.Description("Counter ULID; omit for the primary row counter"),
	),
	mcp.WithNumber("delta",
		mcp.Description("Rows to advance by (default 1)"),
	),
)

var counterSetToolDef = mcp.NewTool("counter_set",
	mcp.WithDescription("Set a counter to an absolute value without evaluating markers. For corrections, e.g. after frogging."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project ULID"),
	),
	mcp.WithString("counter_id",
		mcp.Description("Counter ULID; omit for the primary row counter"),
	),
	mcp.WithNumber("value",
		mcp.Required(),
		mcp.Description("New counter value, must not be negative"),
	),
)

var markerCreateToolDef = mcp.NewTool("marker_create",
	mcp.WithDescription("Create a marker. The trigger rule is validated before anything is stored."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project ULID"),
	),
	mcp.WithString("counter_id",
		mcp.Description("Counter the marker watches; omit for the primary row counter"),
	),
	mcp.WithString("trigger_type",
		mcp.Required(),
		mcp.Description("One of: counter_value, row_interval, row_range, stitch_count, time_based, custom, at_same_time"),
	),
	mcp.WithObject("condition",
		mcp.Description("Trigger payload: {operator, value} for counter_value, {interval} for row_interval, {start, end} for row_range, {stitch_count} for stitch_count"),
	),
	mcp.WithNumber("start_row",
		mcp.Description("First row the marker applies to"),
	),
	mcp.WithNumber("end_row",
		mcp.Description("Last row the marker applies to"),
	),
	mcp.WithNumber("repeat_interval",
		mcp.Description("Repeat every N rows; makes the marker recurring"),
	),
	mcp.WithNumber("repeat_offset",
		mcp.Description("Offset added to start_row before the first repeat"),
	),
	mcp.WithString("alert_message",
		mcp.Description("Message shown when the marker fires"),
	),
	mcp.WithString("alert_type",
		mcp.Description("One of: notification (default), sound, vibration, visual"),
	),
	mcp.WithNumber("priority",
		mcp.Description("Display priority, higher first"),
	),
	mcp.WithString("display_style",
		mcp.Description("Freeform display hint for clients"),
	),
	mcp.WithString("color",
		mcp.Description("Display color, hex"),
	),
	mcp.WithString("category",
		mcp.Description("Freeform grouping label, e.g. shaping, colorwork"),
	),
)

var markerGetToolDef = mcp.NewTool("marker_get",
	mcp.WithDescription("Get a marker, optionally with its event log."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Marker ULID"),
	),
	mcp.WithBoolean("include_events",
		mcp.Description("Include the full lifecycle event log"),
	),
)

var markerListToolDef = mcp.NewTool("marker_list",
	mcp.WithDescription("List a project's markers in creation order."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project ULID"),
	),
	mcp.WithBoolean("active_only",
		mcp.Description("Restrict to markers that can still fire"),
	),
)

var markerUpdateToolDef = mcp.NewTool("marker_update",
	mcp.WithDescription("Update a marker's rule or presentation. The updated rule is re-validated as a whole. Lifecycle status and interaction counts are not editable."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Marker ULID"),
	),
	mcp.WithString("counter_id",
		mcp.Description("Rebind to a counter; empty string unbinds back to the primary"),
	),
	mcp.WithString("trigger_type",
		mcp.Description("New trigger type"),
	),
	mcp.WithObject("condition",
		mcp.Description("New trigger payload, replaces the old one"),
	),
	mcp.WithNumber("start_row",
		mcp.Description("New start row"),
	),
	mcp.WithNumber("end_row",
		mcp.Description("New end row"),
	),
	mcp.WithNumber("repeat_interval",
		mcp.Description("New repeat interval"),
	),
	mcp.WithNumber("repeat_offset",
		mcp.Description("New repeat offset"),
	),
	mcp.WithString("alert_message",
		mcp.Description("New alert message"),
	),
	mcp.WithString("alert_type",
		mcp.Description("New alert type"),
	),
	mcp.WithNumber("priority",
		mcp.Description("New priority"),
	),
	mcp.WithString("display_style",
		mcp.Description("New display hint"),
	),
	mcp.WithString("color",
		mcp.Description("New color"),
	),
	mcp.WithString("category",
		mcp.Description("New category"),
	),
	mcp.WithBoolean("is_active",
		mcp.Description("Pause (false) or resume (true) the marker"),
	),
)

var markerDeleteToolDef = mcp.NewTool("marker_delete",
	mcp.WithDescription("Delete a marker and its event log."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Marker ULID"),
	),
)

var markerEventToolDef = mcp.NewTool("marker_event",
	mcp.WithDescription("Record a lifecycle event against a marker: triggered, snoozed, acknowledged, or completed. Completion is terminal."),
	mcp.WithString("marker_id",
		mcp.Required(),
		mcp.Description("Marker ULID"),
	),
	mcp.WithString("event_type",
		mcp.Required(),
		mcp.Description("One of: triggered, snoozed, acknowledged, completed"),
	),
	mcp.WithNumber("at_row",
		mcp.Description("Row the event happened at; omit to use the marker's counter value"),
	),
)

var markerUpcomingToolDef = mcp.NewTool("marker_upcoming",
	mcp.WithDescription("List markers that will fire within the next N rows, nearest first."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project ULID"),
	),
	mcp.WithString("counter_id",
		mcp.Description("Counter ULID; omit for the primary row counter"),
	),
	mcp.WithNumber("window",
		mcp.Description("Lookahead in rows; omit for the configured default"),
	),
)

var markerTimelineToolDef = mcp.NewTool("marker_timeline",
	mcp.WithDescription("Project all markers onto a normalized 0..1 position scale for visualization."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project ULID"),
	),
)

var markerSummaryToolDef = mcp.NewTool("marker_summary",
	mcp.WithDescription("Roll a project's marker set up into usage statistics."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project ULID"),
	),
)

var markerAcceptSuggestionToolDef = mcp.NewTool("marker_accept_suggestion",
	mcp.WithDescription("Accept a pattern-analyzer suggestion and persist it as a regular marker."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project ULID"),
	),
	mcp.WithObject("suggestion",
		mcp.Required(),
		mcp.Description("Suggestion object: {type, start_row, end_row?, repeat_interval?, message, category?}"),
	),
)
