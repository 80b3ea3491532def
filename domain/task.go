package domain

import (
	"regexp"
	"strings"
	"time"
)

// Length bounds enforced on free-text fields.
const (
	MaxActivityLen = 200
	MaxNotesLen    = 1000
)

// Task is a unit of work owned by exactly one tenant. Status is always
// derived from the schedule dates via EvaluateStatus and persisted along
// with them; it is never taken from a client verbatim.
type Task struct {
	ID               string    `json:"id"`
	TenantID         string    `json:"tenantId"`
	CompetenceYM     string    `json:"competenciaYm"`
	Recurrence       string    `json:"recorrencia"`
	Type             string    `json:"tipo"`
	Activity         string    `json:"atividade"`
	ResponsibleEmail string    `json:"responsavelEmail"`
	ResponsibleName  string    `json:"responsavelNome"`
	Area             string    `json:"area"`
	Deadline         Date      `json:"prazo"`
	Completed        Date      `json:"realizado"`
	Status           Status    `json:"status"`
	Notes            string    `json:"observacoes"`
	CreatedAt        time.Time `json:"createdAt"`
	CreatedBy        string    `json:"createdBy"`
	UpdatedAt        time.Time `json:"updatedAt"`
	UpdatedBy        string    `json:"updatedBy"`
	DeletedAt        time.Time `json:"-"`
	DeletedBy        string    `json:"-"`
}

func (t *Task) IsDeleted() bool {
	return t != nil && !t.DeletedAt.IsZero()
}

var (
	ymFull  = regexp.MustCompile(`^(\d{4})-(\d{1,2})(?:-\d{1,2}.*)?$`)
	ymSlash = regexp.MustCompile(`^(\d{4})/(\d{1,2})$`)
	mySlash = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)
)

// NormalizeCompetence coerces the competence period to YYYY-MM. Inputs
// arrive from date pickers and free typing, so a handful of historical
// layouts are accepted. Unrecognized values pass through untouched.
func NormalizeCompetence(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	if m := ymFull.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + pad2(m[2])
	}
	if m := ymSlash.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + pad2(m[2])
	}
	if m := mySlash.FindStringSubmatch(s); m != nil {
		return m[2] + "-" + pad2(m[1])
	}
	return s
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
