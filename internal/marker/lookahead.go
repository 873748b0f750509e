package marker

import "sort"

// UpcomingMarker pairs a marker with the position at which it next fires.
type UpcomingMarker struct {
	Marker Marker `json:"marker"`
	At     int    `json:"at"`
}

// Upcoming answers "what fires within the next window rows". It merges
// pending one-shot markers with the projected next occurrence of repeating
// markers, de-duplicates by marker id, and sorts ascending by position.
// A non-positive window yields an empty result.
func Upcoming(markers []Marker, currentValue, window int) []UpcomingMarker {
	result := []UpcomingMarker{}
	if window <= 0 {
		return result
	}

	horizon := currentValue + window
	seen := map[string]int{} // marker id -> index into result

	add := func(m Marker, at int) {
		if idx, ok := seen[m.ID]; ok {
			// A repeating marker's first occurrence is structurally the same
			// as a one-shot check; keep whichever position comes first.
			if at < result[idx].At {
				result[idx].At = at
			}
			return
		}
		seen[m.ID] = len(result)
		result = append(result, UpcomingMarker{Marker: m, At: at})
	}

	for i := range markers {
		m := &markers[i]
		if !m.Evaluable() {
			continue
		}

		if pos, ok := fixedTriggerValue(m); ok && pos > currentValue && pos <= horizon {
			add(*m, pos)
		}

		if start, interval, ok := repeatRule(m); ok {
			next := NextOccurrence(start, interval, currentValue)
			if next <= horizon {
				add(*m, next)
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].At != result[j].At {
			return result[i].At < result[j].At
		}
		return result[i].Marker.ID < result[j].Marker.ID
	})
	return result
}

// repeatRule resolves the projection rule for markers that fire
// periodically. An explicit RepeatInterval wins; without one, row_interval
// and multiple_of markers still repeat on their condition's own period,
// matching the positions the evaluator fires them at.
func repeatRule(m *Marker) (start, interval int, ok bool) {
	if m.Repeats() {
		return m.repeatStart(), *m.RepeatInterval, true
	}
	switch m.TriggerType {
	case TriggerRowInterval:
		if m.Condition.Interval > 0 {
			return m.Condition.Interval, m.Condition.Interval, true
		}
	case TriggerCounterValue:
		if m.Condition.Operator == OpMultipleOf && m.Condition.Value > 0 {
			return m.Condition.Value, m.Condition.Value, true
		}
	}
	return 0, 0, false
}

// fixedTriggerValue resolves the single position a non-repeating trigger
// fires at, when it has one. Delegate-evaluated types have no fixed
// position.
func fixedTriggerValue(m *Marker) (int, bool) {
	switch m.TriggerType {
	case TriggerCounterValue:
		if m.Condition.Operator == OpEquals {
			return m.Condition.Value, true
		}
	case TriggerStitchCount:
		return m.Condition.StitchCount, true
	case TriggerRowRange:
		start, _ := m.rangeBounds()
		return start, true
	}
	if m.StartRow != nil && !m.Repeats() {
		return *m.StartRow, true
	}
	return 0, false
}
