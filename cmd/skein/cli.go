package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/knitlab/skein/internal/config"
	"github.com/knitlab/skein/internal/errors"
	"github.com/knitlab/skein/internal/marker"
	"github.com/knitlab/skein/internal/ops"
	"github.com/knitlab/skein/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "skein",
		Usage:   "Row counters and magic markers for knitting and crochet projects",
		Version: Version,
		Commands: []*cli.Command{
			projectCmd(db),
			markerCmd(db),
			advanceCmd(db),
			setCmd(db),
			upcomingCmd(db, cfg),
			timelineCmd(db, cfg),
			summaryCmd(db),
			suggestCmd(db),
			webCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// projectCmd groups the project CRUD subcommands.
func projectCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "project",
		Usage: "Manage projects",
		Subcommands: []*cli.Command{
			projectAddCmd(db),
			projectGetCmd(db),
			projectListCmd(db),
			projectUpdateCmd(db),
			projectRmCmd(db),
		},
	}
}

func projectAddCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a project with its primary row counter (optionally reads notes from stdin)",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "craft", Aliases: []string{"c"}, Usage: "Craft type: knitting|crochet"},
			&cli.IntFlag{Name: "total-rows", Aliases: []string{"r"}, Usage: "Total rows in the pattern (0 = unknown)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("project name is required"))
			}

			input := ops.CreateProjectInput{
				Name:      c.Args().First(),
				Craft:     c.String("craft"),
				TotalRows: c.Int("total-rows"),
			}

			// Read pattern notes from stdin if piped
			if stdinHasData() {
				notes, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				if notes != "" {
					input.NotesMD = &notes
				}
			}

			output, err := ops.CreateProject(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

func projectGetCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a project by ID or name",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Project name"},
		},
		Action: func(c *cli.Context) error {
			input := ops.GetProjectInput{}

			// Check for positional ID argument
			if c.NArg() > 0 {
				input.ID = c.Args().First()
			} else {
				input.Name = c.String("name")
			}

			output, err := ops.GetProject(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

func projectListCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List projects",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListProjects(db, ops.ListProjectsInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

func projectUpdateCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a project (optionally reads notes from stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New project name"},
			&cli.StringFlag{Name: "craft", Aliases: []string{"c"}, Usage: "New craft type"},
			&cli.IntFlag{Name: "total-rows", Aliases: []string{"r"}, Usage: "New total row count"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("project id is required"))
			}

			input := ops.UpdateProjectInput{ID: c.Args().First()}

			if name := c.String("name"); name != "" {
				input.Name = &name
			}
			if craft := c.String("craft"); craft != "" {
				input.Craft = &craft
			}
			if c.IsSet("total-rows") {
				rows := c.Int("total-rows")
				input.TotalRows = &rows
			}
			if stdinHasData() {
				notes, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				input.NotesMD = &notes
			}

			output, err := ops.UpdateProject(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

func projectRmCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a project and everything attached to it",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("project id is required"))
			}

			output, err := ops.DeleteProject(db, ops.DeleteProjectInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// markerCmd groups the marker subcommands.
func markerCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "marker",
		Usage: "Manage magic markers",
		Subcommands: []*cli.Command{
			markerAddCmd(db),
			markerListCmd(db),
			markerGetCmd(db),
			markerUpdateCmd(db),
			markerRmCmd(db),
			markerEventCmd(db),
		},
	}
}

func markerAddCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Create a marker on a project",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Required: true, Usage: "Project ID"},
			&cli.StringFlag{Name: "counter", Usage: "Counter ID (default: primary counter)"},
			&cli.StringFlag{Name: "trigger", Aliases: []string{"t"}, Required: true, Usage: "Trigger type: counter_value|row_interval|row_range|stitch_count|time_based|custom|at_same_time"},
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Required: true, Usage: "Alert message"},
			&cli.StringFlag{Name: "operator", Usage: "counter_value operator: equals|greater_than|less_than|multiple_of"},
			&cli.IntFlag{Name: "value", Usage: "counter_value target"},
			&cli.IntFlag{Name: "interval", Usage: "row_interval period"},
			&cli.IntFlag{Name: "stitch-count", Usage: "stitch_count target"},
			&cli.IntFlag{Name: "start-row", Usage: "Range/repeat start row"},
			&cli.IntFlag{Name: "end-row", Usage: "Range/repeat end row"},
			&cli.IntFlag{Name: "repeat-interval", Usage: "Repeat period in rows"},
			&cli.IntFlag{Name: "repeat-offset", Usage: "Repeat phase offset"},
			&cli.StringFlag{Name: "alert-type", Usage: "Alert type: notification|sound|vibration|visual"},
			&cli.IntFlag{Name: "priority", Usage: "Alert priority"},
			&cli.StringFlag{Name: "color", Usage: "Display color (hex)"},
			&cli.StringFlag{Name: "category", Usage: "Category tag (shaping, colorwork, ...)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.CreateMarkerInput{
				ProjectID:   c.String("project"),
				TriggerType: marker.TriggerType(c.String("trigger")),
				Condition: marker.Condition{
					Operator:    marker.Operator(c.String("operator")),
					Value:       c.Int("value"),
					Interval:    c.Int("interval"),
					StitchCount: c.Int("stitch-count"),
					Start:       c.Int("start-row"),
					End:         c.Int("end-row"),
				},
				AlertMessage: c.String("message"),
				AlertType:    marker.AlertType(c.String("alert-type")),
				Priority:     c.Int("priority"),
				Color:        c.String("color"),
				Category:     c.String("category"),
			}

			if counter := c.String("counter"); counter != "" {
				input.CounterID = &counter
			}
			if c.IsSet("start-row") {
				v := c.Int("start-row")
				input.StartRow = &v
			}
			if c.IsSet("end-row") {
				v := c.Int("end-row")
				input.EndRow = &v
			}
			if c.IsSet("repeat-interval") {
				v := c.Int("repeat-interval")
				input.RepeatInterval = &v
			}
			if c.IsSet("repeat-offset") {
				v := c.Int("repeat-offset")
				input.RepeatOffset = &v
			}

			output, err := ops.CreateMarker(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

func markerListCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List a project's markers",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Required: true, Usage: "Project ID"},
			&cli.BoolFlag{Name: "active", Usage: "Only active, non-completed markers"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListMarkers(db, ops.ListMarkersInput{
				ProjectID:  c.String("project"),
				ActiveOnly: c.Bool("active"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

func markerGetCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a marker by ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "events", Usage: "Include the full event log"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("marker id is required"))
			}

			output, err := ops.GetMarker(db, ops.GetMarkerInput{
				ID:            c.Args().First(),
				IncludeEvents: c.Bool("events"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

func markerUpdateCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a marker (the whole trigger rule is revalidated)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "counter", Usage: "Counter ID (empty string unbinds to the primary counter)"},
			&cli.StringFlag{Name: "trigger", Aliases: []string{"t"}, Usage: "New trigger type"},
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "New alert message"},
			&cli.StringFlag{Name: "operator", Usage: "New counter_value operator"},
			&cli.IntFlag{Name: "value", Usage: "New counter_value target"},
			&cli.IntFlag{Name: "interval", Usage: "New row_interval period"},
			&cli.IntFlag{Name: "stitch-count", Usage: "New stitch_count target"},
			&cli.IntFlag{Name: "start-row", Usage: "New start row"},
			&cli.IntFlag{Name: "end-row", Usage: "New end row"},
			&cli.IntFlag{Name: "repeat-interval", Usage: "New repeat period"},
			&cli.IntFlag{Name: "repeat-offset", Usage: "New repeat offset"},
			&cli.StringFlag{Name: "alert-type", Usage: "New alert type"},
			&cli.IntFlag{Name: "priority", Usage: "New priority"},
			&cli.StringFlag{Name: "color", Usage: "New display color"},
			&cli.StringFlag{Name: "category", Usage: "New category tag"},
			&cli.BoolFlag{Name: "active", Usage: "Set active flag"},
			&cli.BoolFlag{Name: "paused", Usage: "Clear active flag"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("marker id is required"))
			}

			input := ops.UpdateMarkerInput{ID: c.Args().First()}

			if c.IsSet("counter") {
				counter := c.String("counter")
				input.CounterID = &counter
			}
			if c.IsSet("trigger") {
				tt := marker.TriggerType(c.String("trigger"))
				input.TriggerType = &tt
			}
			if hasConditionFlags(c) {
				cond := marker.Condition{
					Operator:    marker.Operator(c.String("operator")),
					Value:       c.Int("value"),
					Interval:    c.Int("interval"),
					StitchCount: c.Int("stitch-count"),
					Start:       c.Int("start-row"),
					End:         c.Int("end-row"),
				}
				input.Condition = &cond
			}
			if c.IsSet("start-row") {
				v := c.Int("start-row")
				input.StartRow = &v
			}
			if c.IsSet("end-row") {
				v := c.Int("end-row")
				input.EndRow = &v
			}
			if c.IsSet("repeat-interval") {
				v := c.Int("repeat-interval")
				input.RepeatInterval = &v
			}
			if c.IsSet("repeat-offset") {
				v := c.Int("repeat-offset")
				input.RepeatOffset = &v
			}
			if msg := c.String("message"); msg != "" {
				input.AlertMessage = &msg
			}
			if c.IsSet("alert-type") {
				at := marker.AlertType(c.String("alert-type"))
				input.AlertType = &at
			}
			if c.IsSet("priority") {
				v := c.Int("priority")
				input.Priority = &v
			}
			if c.IsSet("color") {
				color := c.String("color")
				input.Color = &color
			}
			if c.IsSet("category") {
				category := c.String("category")
				input.Category = &category
			}
			if c.Bool("active") {
				active := true
				input.IsActive = &active
			}
			if c.Bool("paused") {
				active := false
				input.IsActive = &active
			}

			output, err := ops.UpdateMarker(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// hasConditionFlags reports whether any condition field flag was given.
func hasConditionFlags(c *cli.Context) bool {
	for _, name := range []string{"operator", "value", "interval", "stitch-count", "start-row", "end-row"} {
		if c.IsSet(name) {
			return true
		}
	}
	return false
}

func markerRmCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a marker and its event log",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("marker id is required"))
			}

			output, err := ops.DeleteMarker(db, ops.DeleteMarkerInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

func markerEventCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "event",
		Usage:     "Record a marker lifecycle event",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Required: true, Usage: "Event type: triggered|snoozed|acknowledged|completed"},
			&cli.IntFlag{Name: "at-row", Usage: "Row the event happened at (default: current counter value)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("marker id is required"))
			}

			input := ops.RecordMarkerEventInput{
				MarkerID:  c.Args().First(),
				EventType: marker.EventType(c.String("type")),
			}
			if c.IsSet("at-row") {
				row := c.Int("at-row")
				input.AtRow = &row
			}

			output, err := ops.RecordMarkerEvent(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// advanceCmd creates the advance command.
func advanceCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "advance",
		Usage: "Advance a counter and report which markers fired",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Required: true, Usage: "Project ID"},
			&cli.StringFlag{Name: "counter", Usage: "Counter ID (default: primary counter)"},
			&cli.IntFlag{Name: "delta", Aliases: []string{"d"}, Value: 1, Usage: "Rows to advance by"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.AdvanceCounter(db, ops.AdvanceCounterInput{
				ProjectID: c.String("project"),
				CounterID: c.String("counter"),
				Delta:     c.Int("delta"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// setCmd creates the set command.
func setCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "set",
		Usage: "Set a counter to an absolute value without evaluating markers",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Required: true, Usage: "Project ID"},
			&cli.StringFlag{Name: "counter", Usage: "Counter ID (default: primary counter)"},
			&cli.IntFlag{Name: "value", Aliases: []string{"v"}, Required: true, Usage: "New counter value"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.SetCounter(db, ops.SetCounterInput{
				ProjectID: c.String("project"),
				CounterID: c.String("counter"),
				Value:     c.Int("value"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// upcomingCmd creates the upcoming command.
func upcomingCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "upcoming",
		Usage: "Show markers firing within the next N rows",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Required: true, Usage: "Project ID"},
			&cli.StringFlag{Name: "counter", Usage: "Counter ID (default: primary counter)"},
			&cli.IntFlag{Name: "window", Aliases: []string{"w"}, Usage: "Lookahead window in rows (default: config default_lookahead)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.UpcomingMarkers(db, cfg, ops.UpcomingMarkersInput{
				ProjectID: c.String("project"),
				CounterID: c.String("counter"),
				Window:    c.Int("window"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// timelineCmd creates the timeline command.
func timelineCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "timeline",
		Usage: "Project all markers onto a normalized 0..1 timeline",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Required: true, Usage: "Project ID"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.MarkerTimeline(db, cfg, ops.MarkerTimelineInput{
				ProjectID: c.String("project"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// summaryCmd creates the summary command.
func summaryCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Show a project's marker usage statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Required: true, Usage: "Project ID"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Summary(db, ops.SummaryInput{
				ProjectID: c.String("project"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// suggestCmd creates the suggest command.
func suggestCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "suggest",
		Usage: "Accept a pattern-analyzer suggestion as a marker (reads suggestion JSON from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Required: true, Usage: "Project ID"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("suggestion JSON must be piped via stdin"))
			}

			raw, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			var suggestion marker.Suggestion
			if err := json.Unmarshal([]byte(raw), &suggestion); err != nil {
				return outputError(errors.NewInvalidRequest("invalid suggestion JSON: " + err.Error()))
			}

			output, err := ops.AcceptSuggestion(db, ops.AcceptSuggestionInput{
				ProjectID:  c.String("project"),
				Suggestion: suggestion,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// webCmd creates the web command.
func webCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the project dashboard UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Usage: "Listen port", Value: 7337},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			if err := web.Run(srv); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if skeinErr, ok := err.(*errors.SkeinError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", skeinErr.Code, skeinErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
