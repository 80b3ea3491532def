package domain

import "time"

// Tenant is the isolation boundary. Every task and user belongs to
// exactly one tenant; nothing is ever read or written across tenants.
type Tenant struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}
