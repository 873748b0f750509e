package marker

// TriggerType identifies the kind of condition that makes a marker fire.
// This is a closed set; the evaluator switches over it exhaustively.
type TriggerType string

const (
	// TriggerCounterValue fires on an operator comparison against the counter value.
	TriggerCounterValue TriggerType = "counter_value"
	// TriggerRowInterval fires every N rows (counter value divisible by the interval).
	TriggerRowInterval TriggerType = "row_interval"
	// TriggerRowRange fires for every row inside an inclusive [start, end] range.
	TriggerRowRange TriggerType = "row_range"
	// TriggerStitchCount fires on an exact stitch-count match.
	TriggerStitchCount TriggerType = "stitch_count"
	// TriggerTimeBased is evaluated by a caller-supplied delegate, never server-side.
	TriggerTimeBased TriggerType = "time_based"
	// TriggerCustom is evaluated by a caller-supplied delegate, never server-side.
	TriggerCustom TriggerType = "custom"
	// TriggerAtSameTime is evaluated by a caller-supplied delegate, never server-side.
	TriggerAtSameTime TriggerType = "at_same_time"
)

// TriggerTypes lists all valid trigger types.
var TriggerTypes = []TriggerType{
	TriggerCounterValue,
	TriggerRowInterval,
	TriggerRowRange,
	TriggerStitchCount,
	TriggerTimeBased,
	TriggerCustom,
	TriggerAtSameTime,
}

// Operator is the comparison used by counter_value conditions.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpMultipleOf  Operator = "multiple_of"
)

// Condition is the tagged payload of a trigger. Which fields are meaningful
// depends on the marker's TriggerType; Validate enforces the pairing.
type Condition struct {
	// Operator and Value are used by counter_value triggers.
	Operator Operator `json:"operator,omitempty"`
	Value    int      `json:"value,omitempty"`

	// Interval is used by row_interval triggers.
	Interval int `json:"interval,omitempty"`

	// StitchCount is used by stitch_count triggers (exact match, not a threshold).
	StitchCount int `json:"stitch_count,omitempty"`

	// Start and End are used by row_range triggers when the marker-level
	// StartRow/EndRow are not set.
	Start int `json:"start,omitempty"`
	End   int `json:"end,omitempty"`
}

// AlertType is how the host should surface a fired marker. Delivery itself
// is a downstream concern; this is just data.
type AlertType string

const (
	AlertNotification AlertType = "notification"
	AlertSound        AlertType = "sound"
	AlertVibration    AlertType = "vibration"
	AlertVisual       AlertType = "visual"
)

// Status is the marker lifecycle status. Completed is terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// EventType is a recorded interaction with a marker.
type EventType string

const (
	EventTriggered    EventType = "triggered"
	EventSnoozed      EventType = "snoozed"
	EventAcknowledged EventType = "acknowledged"
	EventCompleted    EventType = "completed"
)

// Marker is a user-defined rule bound to a project that may fire as the
// project's row/stitch counter advances.
type Marker struct {
	// ID is a ULID that uniquely identifies this marker
	ID string `json:"id"`

	// ProjectID is the owning project (ownership enforcement is the host's job)
	ProjectID string `json:"project_id"`

	// CounterID optionally names the counter whose value drives evaluation.
	// Nil means the project's primary row counter.
	CounterID *string `json:"counter_id,omitempty"`

	// TriggerType selects the condition variant
	TriggerType TriggerType `json:"trigger_type"`

	// Condition is the payload matching TriggerType
	Condition Condition `json:"condition"`

	// StartRow and EndRow bound range and repeating forms (nullable)
	StartRow *int `json:"start_row,omitempty"`
	EndRow   *int `json:"end_row,omitempty"`

	// RepeatInterval makes the marker fire periodically (must be > 0 when set)
	RepeatInterval *int `json:"repeat_interval,omitempty"`

	// RepeatOffset shifts the first repeat occurrence past StartRow (nullable)
	RepeatOffset *int `json:"repeat_offset,omitempty"`

	// Alert presentation fields; delivery is out of scope
	AlertMessage string    `json:"alert_message"`
	AlertType    AlertType `json:"alert_type"`
	Priority     int       `json:"priority"`
	DisplayStyle string    `json:"display_style,omitempty"`
	Color        string    `json:"color,omitempty"`
	Category     string    `json:"category,omitempty"`

	// IsActive gates evaluation independently of lifecycle Status
	IsActive bool `json:"is_active"`

	// Status is the lifecycle status; completed is terminal
	Status Status `json:"status"`

	// SuggestedByAI marks markers that originated from the suggestion analyzer
	SuggestedByAI bool `json:"suggested_by_ai"`

	// Interaction counters, cached projections of the event log
	TimesTriggered    int `json:"times_triggered"`
	TimesSnoozed      int `json:"times_snoozed"`
	TimesAcknowledged int `json:"times_acknowledged"`

	// CreatedAt and UpdatedAt are Unix timestamps
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Event is an append-only fact about a marker interaction.
type Event struct {
	// ID is a ULID that uniquely identifies this event
	ID string `json:"id"`

	// MarkerID references the marker the event belongs to
	MarkerID string `json:"marker_id"`

	// EventType is one of triggered/snoozed/acknowledged/completed
	EventType EventType `json:"event_type"`

	// AtRow is the counter value at the time of the event
	AtRow int `json:"at_row"`

	// CreatedAt is a Unix timestamp
	CreatedAt int64 `json:"created_at"`
}

// Evaluable reports whether the marker participates in evaluation and
// lookahead: it must be active and not lifecycle-completed.
func (m *Marker) Evaluable() bool {
	return m.IsActive && m.Status == StatusActive
}

// Repeats reports whether the marker has a positive repeat interval.
func (m *Marker) Repeats() bool {
	return m.RepeatInterval != nil && *m.RepeatInterval > 0
}

// repeatStart is the position of the first repeat occurrence:
// StartRow (default 0) shifted by RepeatOffset when present.
func (m *Marker) repeatStart() int {
	start := 0
	if m.StartRow != nil {
		start = *m.StartRow
	}
	if m.RepeatOffset != nil {
		start += *m.RepeatOffset
	}
	return start
}

// rangeBounds resolves the inclusive [start, end] of a row_range marker.
// Marker-level StartRow/EndRow win over the condition payload.
func (m *Marker) rangeBounds() (int, int) {
	start := m.Condition.Start
	end := m.Condition.End
	if m.StartRow != nil {
		start = *m.StartRow
	}
	if m.EndRow != nil {
		end = *m.EndRow
	}
	return start, end
}
