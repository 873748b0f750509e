package marker

import (
	"fmt"

	"github.com/knitlab/skein/internal/errors"
)

// Validate checks a marker's trigger condition and interval fields at
// construction/update time. Invalid conditions are rejected here, never
// silently downgraded to "does not fire" at evaluation time.
func Validate(m *Marker) error {
	switch m.TriggerType {
	case TriggerCounterValue:
		switch m.Condition.Operator {
		case OpEquals, OpGreaterThan, OpLessThan:
			// any value is comparable
		case OpMultipleOf:
			if m.Condition.Value == 0 {
				return errors.NewInvalidTriggerCondition("multiple_of requires a non-zero value")
			}
		case "":
			return errors.NewInvalidTriggerCondition("counter_value requires an operator")
		default:
			return errors.NewInvalidTriggerCondition(fmt.Sprintf("unknown operator %q", m.Condition.Operator))
		}

	case TriggerRowInterval:
		if m.Condition.Interval <= 0 {
			return errors.NewInvalidTriggerCondition("row_interval requires interval > 0")
		}

	case TriggerRowRange:
		start, end := m.rangeBounds()
		if end < start {
			return errors.NewInvalidTriggerCondition(fmt.Sprintf("row range end (%d) must not precede start (%d)", end, start))
		}

	case TriggerStitchCount:
		if m.Condition.StitchCount <= 0 {
			return errors.NewInvalidTriggerCondition("stitch_count requires a positive stitch count")
		}

	case TriggerTimeBased, TriggerCustom, TriggerAtSameTime:
		// evaluated by a caller-supplied delegate; nothing to validate here

	default:
		return errors.NewInvalidTriggerCondition(fmt.Sprintf("unknown trigger type %q", m.TriggerType))
	}

	if m.RepeatInterval != nil && *m.RepeatInterval <= 0 {
		return errors.NewInvalidTriggerCondition("repeat_interval must be a positive integer")
	}
	if m.RepeatOffset != nil && *m.RepeatOffset < 0 {
		return errors.NewInvalidTriggerCondition("repeat_offset must not be negative")
	}
	if m.StartRow != nil && m.EndRow != nil && *m.EndRow < *m.StartRow {
		return errors.NewInvalidTriggerCondition(fmt.Sprintf("end_row (%d) must not precede start_row (%d)", *m.EndRow, *m.StartRow))
	}

	if m.AlertType != "" {
		switch m.AlertType {
		case AlertNotification, AlertSound, AlertVibration, AlertVisual:
		default:
			return errors.NewInvalidTriggerCondition(fmt.Sprintf("unknown alert type %q", m.AlertType))
		}
	}

	return nil
}
