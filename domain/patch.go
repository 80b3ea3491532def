package domain

import "strings"

// DateClearSentinel is the wire value the frontend sends to empty a date
// column. It is distinct from "": an empty string in a patch means "no
// change", the sentinel means "clear and recompute".
const DateClearSentinel = "CLEAR"

// DatePatch carries the three possible intents for a date column on
// update: leave untouched (zero value), clear, or set a new value.
type DatePatch struct {
	Set   bool
	Clear bool
	Value Date
}

// Apply resolves the patch against the current column value.
func (p DatePatch) Apply(current Date) Date {
	switch {
	case p.Clear:
		return Date{}
	case p.Set:
		return p.Value
	default:
		return current
	}
}

// Touched reports whether the patch changes the column at all.
func (p DatePatch) Touched() bool {
	return p.Set || p.Clear
}

func (p *DatePatch) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*p = DatePatch{}
		return nil
	}
	if s == DateClearSentinel {
		*p = DatePatch{Clear: true}
		return nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return err
	}
	*p = DatePatch{Set: true, Value: d}
	return nil
}

// SetDate builds a patch that writes the given date.
func SetDate(d Date) DatePatch {
	return DatePatch{Set: true, Value: d}
}

// ClearDate builds a patch that empties the column.
func ClearDate() DatePatch {
	return DatePatch{Clear: true}
}

// TaskPatch is the partial-update model for tasks. Pointer fields are
// absent when nil; date fields keep the tri-state semantics of
// DatePatch. Status is only ever a hint: the persisted status is always
// recomputed from the final schedule dates.
type TaskPatch struct {
	CompetenceYM     *string   `json:"competenciaYm"`
	Recurrence       *string   `json:"recorrencia"`
	Type             *string   `json:"tipo"`
	Activity         *string   `json:"atividade"`
	ResponsibleEmail *string   `json:"responsavelEmail"`
	Area             *string   `json:"area"`
	Notes            *string   `json:"observacoes"`
	Status           *string   `json:"status"`
	Deadline         DatePatch `json:"prazo"`
	Completed        DatePatch `json:"realizado"`
}

// Empty reports whether the patch carries no change at all.
func (p TaskPatch) Empty() bool {
	return p.CompetenceYM == nil &&
		p.Recurrence == nil &&
		p.Type == nil &&
		p.Activity == nil &&
		p.ResponsibleEmail == nil &&
		p.Area == nil &&
		p.Notes == nil &&
		p.Status == nil &&
		!p.Deadline.Touched() &&
		!p.Completed.Touched()
}
