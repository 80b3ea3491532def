package transport

import "github.com/taskdeck/backend/domain"

// LoginRequest carries tenant-scoped credentials. The tenant itself
// comes from the resolution middleware, never from the body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// TaskCreateRequest mirrors the frontend form. Status is absent on
// purpose: it is derived server-side.
type TaskCreateRequest struct {
	CompetenceYM     string      `json:"competenciaYm"`
	Recurrence       string      `json:"recorrencia"`
	Type             string      `json:"tipo"`
	Activity         string      `json:"atividade"`
	ResponsibleEmail string      `json:"responsavelEmail"`
	Deadline         domain.Date `json:"prazo"`
	Completed        domain.Date `json:"realizado"`
	Notes            string      `json:"observacoes"`
}

type UserCreateRequest struct {
	Email     string `json:"email"`
	Name      string `json:"nome"`
	Role      string `json:"role"`
	Area      string `json:"area"`
	CanDelete bool   `json:"canDelete"`
	Password  string `json:"password"`
}

type UserUpdateRequest struct {
	Name      *string `json:"nome"`
	Role      *string `json:"role"`
	Area      *string `json:"area"`
	CanDelete *bool   `json:"canDelete"`
}

type UserActiveRequest struct {
	Active bool `json:"active"`
}

type PasswordResetRequest struct {
	Password string `json:"password"`
}

type RuleUpsertRequest struct {
	Area               string   `json:"area"`
	AllowedRecurrences []string `json:"allowedRecorrencias"`
}

type LookupAddRequest struct {
	Category string `json:"category"`
	Value    string `json:"value"`
	Order    int    `json:"order"`
}

type LookupRenameRequest struct {
	Category string `json:"category"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

type TenantProvisionRequest struct {
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	AdminEmail    string `json:"adminEmail"`
	AdminName     string `json:"adminNome"`
	AdminPassword string `json:"adminPassword"`
}

type TenantActiveRequest struct {
	Active bool `json:"active"`
}
