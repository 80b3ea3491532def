package domain

import "time"

// Rule is the per-area recurrence allow-list consulted when a USER
// self-assigns a task at creation time. The absence of a rule for an
// area is a distinct condition (NO_RULE), never "everything allowed".
type Rule struct {
	ID                 string    `json:"id"`
	TenantID           string    `json:"tenantId"`
	Area               string    `json:"area"`
	AllowedRecurrences []string  `json:"allowedRecorrencias"`
	UpdatedAt          time.Time `json:"updatedAt"`
	UpdatedBy          string    `json:"updatedBy"`
}

// Allows reports whether the recurrence label is in the allow-list.
func (r *Rule) Allows(recurrence string) bool {
	if r == nil {
		return false
	}
	for _, allowed := range r.AllowedRecurrences {
		if allowed == recurrence {
			return true
		}
	}
	return false
}
