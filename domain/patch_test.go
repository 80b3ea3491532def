package domain

import (
	"encoding/json"
	"testing"
)

func TestDatePatchUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    DatePatch
	}{
		{"absent field leaves zero patch", `{}`, DatePatch{}},
		{"empty string is a no-op", `{"realizado":""}`, DatePatch{}},
		{"null is a no-op", `{"realizado":null}`, DatePatch{}},
		{"CLEAR sentinel clears", `{"realizado":"CLEAR"}`, DatePatch{Clear: true}},
		{"date sets a value", `{"realizado":"2025-06-10"}`, DatePatch{Set: true, Value: Date{Year: 2025, Month: 6, Day: 10}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var patch TaskPatch
			if err := json.Unmarshal([]byte(tt.payload), &patch); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if patch.Completed != tt.want {
				t.Errorf("got %+v, want %+v", patch.Completed, tt.want)
			}
		})
	}
}

func TestDatePatchApply(t *testing.T) {
	current := Date{Year: 2025, Month: 6, Day: 10}
	next := Date{Year: 2025, Month: 7, Day: 1}

	if got := (DatePatch{}).Apply(current); got != current {
		t.Errorf("no-op patch changed the value: %s", got)
	}
	if got := ClearDate().Apply(current); !got.IsZero() {
		t.Errorf("clear patch left %s", got)
	}
	if got := SetDate(next).Apply(current); got != next {
		t.Errorf("set patch produced %s, want %s", got, next)
	}
}

func TestClearRetriggersRecomputation(t *testing.T) {
	// Clearing the completion date must drop the task back into the
	// deadline rules instead of keeping it done.
	deadline := Date{Year: 2025, Month: 6, Day: 10}
	completed := Date{Year: 2025, Month: 6, Day: 9}
	today := Date{Year: 2025, Month: 6, Day: 15}

	if got := EvaluateStatus(deadline, completed, today); got != StatusDone {
		t.Fatalf("precondition: got %q", got)
	}

	cleared := ClearDate().Apply(completed)
	if got := EvaluateStatus(deadline, cleared, today); got != StatusOverdue {
		t.Errorf("after clear got %q, want %q", got, StatusOverdue)
	}
}
