package tenant

import (
	"context"
	"crypto/subtle"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,38}[a-z0-9]$`)

// defaultLookups seeds every new tenant's dropdowns so the first login
// lands on a usable form.
var defaultLookups = map[string][]string{
	domain.LookupCategoryArea:       {"TI", "Financeiro", "RH", "Operações", "Comercial"},
	domain.LookupCategoryRecurrence: {"Diário", "Semanal", "Quinzenal", "Mensal", "Trimestral", "Semestral", "Anual", "Pontual"},
	domain.LookupCategoryType:       {"Rotina", "Projeto", "Reunião", "Auditoria", "Treinamento"},
}

// UseCase handles tenant provisioning and administration. These
// operations sit outside any tenant and are guarded by the platform
// key, not by user tokens.
type UseCase struct {
	tenants    repository.TenantRepository
	adminKey   []byte
	logger     *zap.Logger
	bcryptCost int
}

type Options struct {
	BcryptCost int
	Logger     *zap.Logger
}

func New(tenants repository.TenantRepository, adminKey string, opts Options) *UseCase {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.BcryptCost <= 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &UseCase{
		tenants:    tenants,
		adminKey:   []byte(adminKey),
		logger:     opts.Logger,
		bcryptCost: opts.BcryptCost,
	}
}

// Authorize checks the platform admin key in constant time. An empty
// configured key disables the surface entirely.
func (uc *UseCase) Authorize(key string) error {
	if len(uc.adminKey) == 0 {
		return domain.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(key), uc.adminKey) != 1 {
		return domain.ErrUnauthorized
	}
	return nil
}

// ResolveActiveBySlug is what the tenant middleware calls once it has
// extracted a candidate slug from the request.
func (uc *UseCase) ResolveActiveBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, domain.ErrNoTenant
	}
	return uc.tenants.GetActiveBySlug(ctx, slug)
}

type ProvisionInput struct {
	Slug          string
	Name          string
	AdminEmail    string
	AdminName     string
	AdminPassword string
}

// Provision creates a tenant with its first ADMIN and the default
// lookup lists in one transaction.
func (uc *UseCase) Provision(ctx context.Context, input ProvisionInput) (*domain.Tenant, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, domain.NewError(domain.ErrCodeValidation, "slug must be 3-40 lowercase letters, digits or hyphens")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "tenant name is required")
	}
	adminEmail := domain.NormalizeEmail(input.AdminEmail)
	if adminEmail == "" || !strings.Contains(adminEmail, "@") {
		return nil, domain.NewError(domain.ErrCodeValidation, "valid admin email is required")
	}
	adminName := strings.TrimSpace(input.AdminName)
	if adminName == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "admin name is required")
	}
	if len(input.AdminPassword) < 8 {
		return nil, domain.NewError(domain.ErrCodeValidation, "admin password must have at least 8 characters")
	}

	if _, err := uc.tenants.GetActiveBySlug(ctx, slug); err == nil {
		return nil, domain.NewErrorf(domain.ErrCodeConflict, "tenant %q already exists", slug)
	} else if !domain.IsDomainError(err, domain.ErrCodeTenantNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.AdminPassword), uc.bcryptCost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "could not hash password", err)
	}

	now := time.Now().UTC()
	tenant := &domain.Tenant{
		ID:        uuid.NewString(),
		Slug:      slug,
		Name:      name,
		Active:    true,
		CreatedAt: now,
	}
	admin := &domain.User{
		ID:                 uuid.NewString(),
		TenantID:           tenant.ID,
		Email:              adminEmail,
		Name:               adminName,
		Role:               domain.RoleAdmin,
		Area:               "TI",
		Active:             true,
		CanDelete:          true,
		MustChangePassword: true,
		PasswordHash:       string(hash),
		CreatedAt:          now,
	}
	lookups := buildDefaultLookups(tenant.ID, now)

	if err := uc.tenants.Provision(ctx, tenant, admin, lookups); err != nil {
		return nil, err
	}

	uc.logger.Info("tenant provisioned",
		zap.String("tenant_id", tenant.ID),
		zap.String("slug", slug),
		zap.String("admin_email", adminEmail))
	return tenant, nil
}

// List returns every tenant, active or not.
func (uc *UseCase) List(ctx context.Context) ([]domain.Tenant, error) {
	return uc.tenants.List(ctx)
}

// SetActive toggles a tenant. Deactivating cuts off every request for
// its slug at the middleware, including logins.
func (uc *UseCase) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := uc.tenants.GetByID(ctx, id); err != nil {
		return err
	}
	if err := uc.tenants.SetActive(ctx, id, active); err != nil {
		return err
	}
	uc.logger.Info("tenant activation changed",
		zap.String("tenant_id", id),
		zap.Bool("active", active))
	return nil
}

func buildDefaultLookups(tenantID string, now time.Time) []domain.Lookup {
	var out []domain.Lookup
	for _, category := range []string{domain.LookupCategoryArea, domain.LookupCategoryRecurrence, domain.LookupCategoryType} {
		for i, value := range defaultLookups[category] {
			out = append(out, domain.Lookup{
				ID:         uuid.NewString(),
				TenantID:   tenantID,
				Category:   category,
				Value:      value,
				OrderIndex: i,
				CreatedAt:  now,
			})
		}
	}
	return out
}
