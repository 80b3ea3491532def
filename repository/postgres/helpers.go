package postgres

import (
	"time"

	"github.com/taskdeck/backend/domain"
)

// dateArg converts a calendar date to a DATE column argument. Unset
// dates become NULL.
func dateArg(d domain.Date) interface{} {
	if d.IsZero() {
		return nil
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func dateFrom(t *time.Time) domain.Date {
	if t == nil {
		return domain.Date{}
	}
	return domain.Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
