package marker

// Suggestion is a candidate marker proposed by the external pattern
// analyzer. The analyzer itself is a black box; this package only maps an
// accepted suggestion into a well-formed draft marker.
type Suggestion struct {
	Type           string `json:"type"`
	StartRow       int    `json:"start_row"`
	EndRow         *int   `json:"end_row,omitempty"`
	RepeatInterval *int   `json:"repeat_interval,omitempty"`
	Message        string `json:"message"`
	Category       string `json:"category,omitempty"`
}

// categoryColors assigns a display color per suggestion category.
var categoryColors = map[string]string{
	"shaping":    "#e07a5f",
	"colorwork":  "#3d8bfd",
	"cable":      "#8d6a9f",
	"lace":       "#5fb49c",
	"buttonhole": "#f2cc8f",
	"increase":   "#81b29a",
	"decrease":   "#e07a5f",
	"bind_off":   "#adb5bd",
}

// defaultSuggestionColor is used when the category has no assigned color.
const defaultSuggestionColor = "#6c757d"

// FromSuggestion converts an accepted suggestion into a draft marker. The
// mapping is total: unknown types fall back to a one-shot counter_value
// marker at the suggested row. The draft is unsaved (no id, no project
// binding) until the host accepts and persists it.
func FromSuggestion(s Suggestion) Marker {
	m := Marker{
		AlertMessage:  s.Message,
		AlertType:     AlertNotification,
		Category:      s.Category,
		Color:         suggestionColor(s.Category),
		IsActive:      true,
		Status:        StatusActive,
		SuggestedByAI: true,
	}

	startRow := s.StartRow

	switch {
	case s.RepeatInterval != nil && *s.RepeatInterval > 0:
		interval := *s.RepeatInterval
		m.TriggerType = TriggerRowInterval
		m.Condition = Condition{Interval: interval}
		m.StartRow = &startRow
		m.RepeatInterval = &interval
		if s.EndRow != nil {
			end := *s.EndRow
			m.EndRow = &end
		}

	case s.Type == "row_range" || s.EndRow != nil:
		end := startRow
		if s.EndRow != nil {
			end = *s.EndRow
		}
		m.TriggerType = TriggerRowRange
		m.Condition = Condition{Start: startRow, End: end}
		m.StartRow = &startRow
		m.EndRow = &end

	case s.Type == "stitch_count":
		m.TriggerType = TriggerStitchCount
		m.Condition = Condition{StitchCount: startRow}

	default:
		// covers "counter_value", "row", and anything unrecognized
		m.TriggerType = TriggerCounterValue
		m.Condition = Condition{Operator: OpEquals, Value: startRow}
		m.StartRow = &startRow
	}

	return m
}

// suggestionColor looks up the category color, falling back to the default.
func suggestionColor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return defaultSuggestionColor
}
