package marker

// PositionClass classifies a timeline position relative to the current
// counter value.
type PositionClass string

const (
	ClassPast     PositionClass = "past"
	ClassCurrent  PositionClass = "current"
	ClassUpcoming PositionClass = "upcoming"
)

// DefaultMaxOccurrences caps repeat expansion on the timeline so a 1-row
// interval over a long project cannot blow up the output.
const DefaultMaxOccurrences = 500

// Occurrence is one plotted point on the timeline.
type Occurrence struct {
	Row      int           `json:"row"`
	Position float64       `json:"position"` // normalized to [0,1]
	Class    PositionClass `json:"class"`
}

// PositionedMarker is a marker projected onto the normalized position scale.
// Range markers carry a start/end occurrence pair; repeating markers carry
// every occurrence inside [0, projectLength], capped.
type PositionedMarker struct {
	Marker      Marker        `json:"marker"`
	Occurrences []Occurrence  `json:"occurrences"`
	IsRange     bool          `json:"is_range"`
	Class       PositionClass `json:"class"`
}

// Timeline projects all markers onto a normalized [0,1] scale relative to
// projectLength. Markers whose trigger has no plottable position
// (time_based, custom, at_same_time) are omitted. maxOccurrences <= 0
// falls back to DefaultMaxOccurrences.
func Timeline(markers []Marker, currentValue, projectLength, maxOccurrences int) []PositionedMarker {
	if projectLength <= 0 {
		projectLength = 1 // avoid division by zero when normalizing
	}
	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}

	result := []PositionedMarker{}
	for i := range markers {
		m := markers[i]
		pm, ok := position(&m, currentValue, projectLength, maxOccurrences)
		if !ok {
			continue
		}
		pm.Marker = m
		result = append(result, pm)
	}
	return result
}

// position computes the occurrences and classification for one marker.
func position(m *Marker, currentValue, projectLength, maxOccurrences int) (PositionedMarker, bool) {
	var rows []int
	isRange := false

	switch {
	case m.TriggerType == TriggerRowRange:
		start, end := m.rangeBounds()
		rows = []int{start, end}
		isRange = true

	case m.Repeats():
		rows = OccurrencesThrough(m.repeatStart(), *m.RepeatInterval, projectLength, maxOccurrences)

	case m.TriggerType == TriggerRowInterval:
		interval := m.Condition.Interval
		if interval <= 0 {
			return PositionedMarker{}, false
		}
		rows = OccurrencesThrough(interval, interval, projectLength, maxOccurrences)

	case m.TriggerType == TriggerCounterValue:
		if m.Condition.Operator == OpMultipleOf {
			if m.Condition.Value <= 0 {
				return PositionedMarker{}, false
			}
			rows = OccurrencesThrough(m.Condition.Value, m.Condition.Value, projectLength, maxOccurrences)
		} else {
			rows = []int{m.Condition.Value}
		}

	case m.TriggerType == TriggerStitchCount:
		rows = []int{m.Condition.StitchCount}

	default:
		// delegate-evaluated types have no plottable position
		return PositionedMarker{}, false
	}

	if len(rows) == 0 {
		return PositionedMarker{}, false
	}

	occurrences := make([]Occurrence, len(rows))
	for i, row := range rows {
		occurrences[i] = Occurrence{
			Row:      row,
			Position: normalize(row, projectLength),
			Class:    classify(row, currentValue),
		}
	}

	return PositionedMarker{
		Occurrences: occurrences,
		IsRange:     isRange,
		Class:       overallClass(occurrences, isRange, currentValue),
	}, true
}

// normalize maps a row onto [0,1], clamping rows outside the project.
func normalize(row, projectLength int) float64 {
	if row <= 0 {
		return 0
	}
	if row >= projectLength {
		return 1
	}
	return float64(row) / float64(projectLength)
}

// classify compares a single position to the current counter value.
func classify(row, currentValue int) PositionClass {
	switch {
	case row < currentValue:
		return ClassPast
	case row == currentValue:
		return ClassCurrent
	default:
		return ClassUpcoming
	}
}

// overallClass derives a marker-level classification. A range spanning the
// current value is current; otherwise the marker is upcoming while any
// occurrence is still ahead, and past once all are behind.
func overallClass(occurrences []Occurrence, isRange bool, currentValue int) PositionClass {
	if isRange && len(occurrences) == 2 {
		start, end := occurrences[0].Row, occurrences[1].Row
		switch {
		case currentValue > end:
			return ClassPast
		case currentValue >= start:
			return ClassCurrent
		default:
			return ClassUpcoming
		}
	}

	class := ClassPast
	for _, o := range occurrences {
		switch o.Class {
		case ClassCurrent:
			return ClassCurrent
		case ClassUpcoming:
			class = ClassUpcoming
		}
	}
	return class
}
