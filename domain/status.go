package domain

// Status is the derived lifecycle label of a task. The labels are the
// Portuguese display values the product has always used; they are data,
// not translation keys.
type Status string

const (
	StatusInProgress Status = "Em Andamento"
	StatusOverdue    Status = "Em Atraso"
	StatusDone       Status = "Concluído"
	StatusDoneLate   Status = "Concluído em Atraso"
)

// EvaluateStatus derives the status from the schedule dates. It is pure:
// the result depends only on the three arguments.
//
// A completed task is never overdue; completing on the deadline day is
// on time. A task without a deadline is in progress forever, and a task
// due today is not yet late.
func EvaluateStatus(deadline, completed, today Date) Status {
	if !completed.IsZero() {
		if !deadline.IsZero() && completed.After(deadline) {
			return StatusDoneLate
		}
		return StatusDone
	}
	if deadline.IsZero() {
		return StatusInProgress
	}
	if today.After(deadline) {
		return StatusOverdue
	}
	return StatusInProgress
}
