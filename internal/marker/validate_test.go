package marker

import (
	"testing"

	"github.com/knitlab/skein/internal/errors"
)

func TestValidate_Valid(t *testing.T) {
	valid := []Marker{
		activeMarker(TriggerCounterValue, Condition{Operator: OpEquals, Value: 0}),
		activeMarker(TriggerCounterValue, Condition{Operator: OpMultipleOf, Value: 10}),
		activeMarker(TriggerRowInterval, Condition{Interval: 6}),
		activeMarker(TriggerStitchCount, Condition{StitchCount: 96}),
	}

	rangeMarker := activeMarker(TriggerRowRange, Condition{})
	rangeMarker.StartRow = intPtr(12)
	rangeMarker.EndRow = intPtr(18)
	valid = append(valid, rangeMarker)

	repeat := activeMarker(TriggerCounterValue, Condition{Operator: OpEquals, Value: 5})
	repeat.StartRow = intPtr(5)
	repeat.RepeatInterval = intPtr(10)
	valid = append(valid, repeat)

	for i, m := range valid {
		if err := Validate(&m); err != nil {
			t.Errorf("marker %d rejected: %v", i, err)
		}
	}
}

func TestValidate_Invalid(t *testing.T) {
	multipleOfZero := activeMarker(TriggerCounterValue, Condition{Operator: OpMultipleOf, Value: 0})
	noOperator := activeMarker(TriggerCounterValue, Condition{Value: 5})
	badOperator := activeMarker(TriggerCounterValue, Condition{Operator: "near", Value: 5})
	zeroInterval := activeMarker(TriggerRowInterval, Condition{Interval: 0})
	negativeInterval := activeMarker(TriggerRowInterval, Condition{Interval: -3})
	zeroStitch := activeMarker(TriggerStitchCount, Condition{})
	unknownType := activeMarker(TriggerType("weather"), Condition{})

	invertedRange := activeMarker(TriggerRowRange, Condition{})
	invertedRange.StartRow = intPtr(18)
	invertedRange.EndRow = intPtr(12)

	badRepeat := activeMarker(TriggerCounterValue, Condition{Operator: OpEquals, Value: 5})
	badRepeat.RepeatInterval = intPtr(0)

	negativeOffset := activeMarker(TriggerCounterValue, Condition{Operator: OpEquals, Value: 5})
	negativeOffset.RepeatInterval = intPtr(4)
	negativeOffset.RepeatOffset = intPtr(-1)

	invertedRows := activeMarker(TriggerCounterValue, Condition{Operator: OpEquals, Value: 5})
	invertedRows.StartRow = intPtr(10)
	invertedRows.EndRow = intPtr(4)

	badAlert := activeMarker(TriggerCounterValue, Condition{Operator: OpEquals, Value: 5})
	badAlert.AlertType = AlertType("smoke_signal")

	tests := []struct {
		name   string
		marker Marker
	}{
		{"multiple_of zero divisor", multipleOfZero},
		{"counter_value without operator", noOperator},
		{"unknown operator", badOperator},
		{"row_interval zero", zeroInterval},
		{"row_interval negative", negativeInterval},
		{"stitch_count zero", zeroStitch},
		{"unknown trigger type", unknownType},
		{"inverted range", invertedRange},
		{"repeat_interval zero", badRepeat},
		{"negative repeat_offset", negativeOffset},
		{"end_row before start_row", invertedRows},
		{"unknown alert type", badAlert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.marker)
			if err == nil {
				t.Fatal("Validate accepted invalid marker")
			}
			if !errors.Is(err, errors.ErrInvalidTriggerCondition) {
				t.Errorf("error = %v, want INVALID_TRIGGER_CONDITION", err)
			}
		})
	}
}

func TestValidate_DelegateTypesAccepted(t *testing.T) {
	for _, tt := range []TriggerType{TriggerTimeBased, TriggerCustom, TriggerAtSameTime} {
		m := activeMarker(tt, Condition{})
		if err := Validate(&m); err != nil {
			t.Errorf("Validate(%s) = %v, want nil", tt, err)
		}
	}
}
