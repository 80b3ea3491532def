package domain

import (
	"strings"
	"time"
)

// User is a directory record inside one tenant. Emails are stored
// lowercase and are unique per tenant, not globally.
type User struct {
	ID                 string    `json:"id"`
	TenantID           string    `json:"tenantId"`
	Email              string    `json:"email"`
	Name               string    `json:"nome"`
	Role               Role      `json:"role"`
	Area               string    `json:"area"`
	Active             bool      `json:"active"`
	CanDelete          bool      `json:"canDelete"`
	MustChangePassword bool      `json:"mustChangePassword"`
	PasswordHash       string    `json:"-"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Actor is the authenticated identity every policy decision consumes.
// It carries only what the policy needs, decoded from the auth token.
type Actor struct {
	Email     string `json:"email"`
	Name      string `json:"nome"`
	Role      Role   `json:"role"`
	Area      string `json:"area"`
	CanDelete bool   `json:"canDelete"`
	TenantID  string `json:"tenantId"`
}

// NormalizeEmail lowercases and trims an email for comparison and
// storage. All email equality in this codebase goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
