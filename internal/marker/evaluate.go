package marker

// DelegateFunc evaluates trigger types this package cannot decide on its
// own (time_based, custom, at_same_time). When no delegate is supplied
// those types never fire, so the system degrades safely rather than
// firing spuriously.
type DelegateFunc func(m *Marker, currentValue int) bool

// Fires reports whether the marker fires at the given counter value.
// Pure; markers that are inactive or lifecycle-completed never fire.
func Fires(m *Marker, currentValue int) bool {
	return FiresWith(m, currentValue, nil)
}

// FiresWith is Fires with an optional delegate for the external trigger
// types. The zero-divisor guards below are defense in depth for rows that
// bypassed Validate (e.g. loaded from an older database); Validate remains
// the primary rejection path.
func FiresWith(m *Marker, currentValue int, delegate DelegateFunc) bool {
	if !m.Evaluable() {
		return false
	}

	switch m.TriggerType {
	case TriggerCounterValue:
		c := m.Condition
		switch c.Operator {
		case OpEquals:
			return currentValue == c.Value
		case OpGreaterThan:
			return currentValue > c.Value
		case OpLessThan:
			return currentValue < c.Value
		case OpMultipleOf:
			return c.Value != 0 && currentValue%c.Value == 0
		default:
			return false
		}

	case TriggerRowInterval:
		interval := m.Condition.Interval
		return interval > 0 && currentValue > 0 && currentValue%interval == 0

	case TriggerRowRange:
		start, end := m.rangeBounds()
		return currentValue >= start && currentValue <= end

	case TriggerStitchCount:
		return currentValue == m.Condition.StitchCount

	case TriggerTimeBased, TriggerCustom, TriggerAtSameTime:
		if delegate == nil {
			return false
		}
		return delegate(m, currentValue)

	default:
		return false
	}
}

// FiringMarkers returns the subset of markers that fire at the given value,
// preserving input order.
func FiringMarkers(markers []Marker, currentValue int) []Marker {
	fired := []Marker{}
	for i := range markers {
		if Fires(&markers[i], currentValue) {
			fired = append(fired, markers[i])
		}
	}
	return fired
}
