package domain

import "time"

// Lookup categories. Values under each category feed the frontend
// dropdowns; the task core itself does not validate against them.
const (
	LookupCategoryArea       = "AREA"
	LookupCategoryRecurrence = "RECORRENCIA"
	LookupCategoryType       = "TIPO"
)

// Lookup is one selectable value inside a tenant-scoped category list.
type Lookup struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	Category   string    `json:"category"`
	Value      string    `json:"value"`
	OrderIndex int       `json:"order"`
	CreatedAt  time.Time `json:"createdAt"`
}
