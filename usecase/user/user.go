package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

const minPasswordLength = 8

// UseCase manages the tenant's user directory. Mutations are admin
// only; listing is open to every authenticated member because the task
// form needs assignee options.
type UseCase struct {
	users      repository.UserRepository
	logger     *zap.Logger
	bcryptCost int
}

type Options struct {
	BcryptCost int
	Logger     *zap.Logger
}

func New(users repository.UserRepository, opts Options) *UseCase {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.BcryptCost <= 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &UseCase{
		users:      users,
		logger:     opts.Logger,
		bcryptCost: opts.BcryptCost,
	}
}

type CreateInput struct {
	Email     string
	Name      string
	Role      domain.Role
	Area      string
	CanDelete bool
	Password  string
}

// UpdateInput is a partial update; nil means unchanged.
type UpdateInput struct {
	Name      *string
	Role      *domain.Role
	Area      *string
	CanDelete *bool
}

// ListUsers returns the active directory scoped to what the caller can
// assign to: admins see every active user, leaders their own area,
// regular users only themselves.
func (uc *UseCase) ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	active, err := uc.users.ListActive(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case domain.RoleAdmin:
		return active, nil
	case domain.RoleLeader:
		scoped := make([]domain.User, 0, len(active))
		for _, u := range active {
			if u.Area == actor.Area {
				scoped = append(scoped, u)
			}
		}
		return scoped, nil
	default:
		self := domain.NormalizeEmail(actor.Email)
		for _, u := range active {
			if domain.NormalizeEmail(u.Email) == self {
				return []domain.User{u}, nil
			}
		}
		return []domain.User{}, nil
	}
}

// ListAllUsers returns the full directory, deactivated accounts
// included. Admin only.
func (uc *UseCase) ListAllUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return uc.users.ListAll(ctx, actor.TenantID)
}

// CreateUser registers a directory entry with a first-login password
// that must be changed.
func (uc *UseCase) CreateUser(ctx context.Context, actor domain.Actor, input CreateInput) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	email := domain.NormalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewError(domain.ErrCodeValidation, "valid email is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "name is required")
	}
	area := strings.TrimSpace(input.Area)
	if area == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "area is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, domain.NewErrorf(domain.ErrCodeValidation, "password must have at least %d characters", minPasswordLength)
	}

	if _, err := uc.users.GetByEmail(ctx, actor.TenantID, email); err == nil {
		return nil, domain.NewErrorf(domain.ErrCodeConflict, "user %s already exists", email)
	} else if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), uc.bcryptCost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "could not hash password", err)
	}

	user := &domain.User{
		ID:                 uuid.NewString(),
		TenantID:           actor.TenantID,
		Email:              email,
		Name:               name,
		Role:               input.Role,
		Area:               area,
		Active:             true,
		CanDelete:          input.CanDelete,
		MustChangePassword: true,
		PasswordHash:       string(hash),
		CreatedAt:          time.Now().UTC(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user created",
		zap.String("tenant_id", actor.TenantID),
		zap.String("email", email),
		zap.String("role", user.Role.String()))
	return user, nil
}

// UpdateUser changes profile and permission fields. Email is
// immutable: it is the identity tasks reference.
func (uc *UseCase) UpdateUser(ctx context.Context, actor domain.Actor, id string, input UpdateInput) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	user, err := uc.users.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.NewError(domain.ErrCodeValidation, "name is required")
		}
		user.Name = name
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Area != nil {
		area := strings.TrimSpace(*input.Area)
		if area == "" {
			return nil, domain.NewError(domain.ErrCodeValidation, "area is required")
		}
		user.Area = area
	}
	if input.CanDelete != nil {
		user.CanDelete = *input.CanDelete
	}

	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive toggles an account. Admins cannot deactivate themselves;
// that is how a tenant ends up with nobody able to manage it.
func (uc *UseCase) SetActive(ctx context.Context, actor domain.Actor, id string, active bool) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	user, err := uc.users.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return err
	}
	if !active && domain.NormalizeEmail(user.Email) == domain.NormalizeEmail(actor.Email) {
		return domain.NewError(domain.ErrCodeValidation, "cannot deactivate your own account")
	}

	return uc.users.SetActive(ctx, actor.TenantID, id, active)
}

// ResetPassword sets a temporary password and forces a change on next
// login.
func (uc *UseCase) ResetPassword(ctx context.Context, actor domain.Actor, id, password string) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if len(password) < minPasswordLength {
		return domain.NewErrorf(domain.ErrCodeValidation, "password must have at least %d characters", minPasswordLength)
	}

	user, err := uc.users.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.bcryptCost)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "could not hash password", err)
	}
	if err := uc.users.SetPassword(ctx, actor.TenantID, user.Email, string(hash), true); err != nil {
		return err
	}

	uc.logger.Info("password reset",
		zap.String("tenant_id", actor.TenantID),
		zap.String("email", user.Email))
	return nil
}
