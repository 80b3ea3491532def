package user

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/backend/domain"
)

type fakeUserRepo struct {
	users map[string]*domain.User // keyed by id
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, tenantID, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.TenantID == tenantID && u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, tenantID, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok || u.TenantID != tenantID {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) ListActive(_ context.Context, tenantID string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.TenantID == tenantID && u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListAll(_ context.Context, tenantID string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.TenantID == tenantID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, tenantID, id string, active bool) error {
	u, ok := r.users[id]
	if !ok || u.TenantID != tenantID {
		return domain.ErrUserNotFound
	}
	u.Active = active
	return nil
}

func (r *fakeUserRepo) SetPassword(_ context.Context, tenantID, email, passwordHash string, mustChange bool) error {
	for _, u := range r.users {
		if u.TenantID == tenantID && u.Email == email {
			u.PasswordHash = passwordHash
			u.MustChangePassword = mustChange
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func directory() *fakeUserRepo {
	return newFakeUserRepo(
		domain.User{ID: "u1", TenantID: "t1", Email: "admin@acme.com", Name: "Admin", Role: domain.RoleAdmin, Area: "TI", Active: true},
		domain.User{ID: "u2", TenantID: "t1", Email: "lia@acme.com", Name: "Lia", Role: domain.RoleLeader, Area: "Financeiro", Active: true},
		domain.User{ID: "u3", TenantID: "t1", Email: "ana@acme.com", Name: "Ana", Role: domain.RoleUser, Area: "Financeiro", Active: true},
		domain.User{ID: "u4", TenantID: "t1", Email: "rui@acme.com", Name: "Rui", Role: domain.RoleUser, Area: "RH", Active: true},
		domain.User{ID: "u5", TenantID: "t1", Email: "ex@acme.com", Name: "Ex", Role: domain.RoleUser, Area: "RH", Active: false},
	)
}

func TestListUsersScopesByRole(t *testing.T) {
	uc := New(directory(), Options{BcryptCost: bcrypt.MinCost})
	ctx := context.Background()

	tests := []struct {
		name  string
		actor domain.Actor
		want  int
	}{
		{"admin sees all active", domain.Actor{TenantID: "t1", Email: "admin@acme.com", Role: domain.RoleAdmin, Area: "TI"}, 4},
		{"leader sees own area", domain.Actor{TenantID: "t1", Email: "lia@acme.com", Role: domain.RoleLeader, Area: "Financeiro"}, 2},
		{"user sees only self", domain.Actor{TenantID: "t1", Email: "ana@acme.com", Role: domain.RoleUser, Area: "Financeiro"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := uc.ListUsers(ctx, tt.actor)
			if err != nil {
				t.Fatalf("ListUsers: %v", err)
			}
			if len(users) != tt.want {
				t.Errorf("got %d users, want %d", len(users), tt.want)
			}
			for _, u := range users {
				if !u.Active {
					t.Errorf("inactive user %s in listing", u.Email)
				}
			}
		})
	}
}

func TestListAllUsersIsAdminOnly(t *testing.T) {
	uc := New(directory(), Options{BcryptCost: bcrypt.MinCost})
	ctx := context.Background()

	users, err := uc.ListAllUsers(ctx, domain.Actor{TenantID: "t1", Email: "admin@acme.com", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("ListAllUsers: %v", err)
	}
	if len(users) != 5 {
		t.Errorf("admin got %d users, want 5 including deactivated", len(users))
	}

	if _, err := uc.ListAllUsers(ctx, domain.Actor{TenantID: "t1", Email: "lia@acme.com", Role: domain.RoleLeader, Area: "Financeiro"}); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Errorf("leader ListAllUsers err = %v, want FORBIDDEN", err)
	}
}

func TestSetActiveRejectsSelfDeactivation(t *testing.T) {
	repo := directory()
	uc := New(repo, Options{BcryptCost: bcrypt.MinCost})
	ctx := context.Background()
	admin := domain.Actor{TenantID: "t1", Email: "admin@acme.com", Role: domain.RoleAdmin, Area: "TI"}

	err := uc.SetActive(ctx, admin, "u1", false)
	if !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.Fatalf("self-deactivation err = %v, want VALIDATION", err)
	}

	if err := uc.SetActive(ctx, admin, "u3", false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if repo.users["u3"].Active {
		t.Error("u3 still active after deactivation")
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	uc := New(directory(), Options{BcryptCost: bcrypt.MinCost})
	ctx := context.Background()
	admin := domain.Actor{TenantID: "t1", Email: "admin@acme.com", Role: domain.RoleAdmin, Area: "TI"}

	_, err := uc.CreateUser(ctx, admin, CreateInput{
		Email:    "Ana@acme.com",
		Name:     "Ana Again",
		Role:     domain.RoleUser,
		Area:     "Financeiro",
		Password: "segredo123",
	})
	if !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("duplicate email err = %v, want CONFLICT", err)
	}
}

func TestResetPasswordForcesChange(t *testing.T) {
	repo := directory()
	uc := New(repo, Options{BcryptCost: bcrypt.MinCost})
	ctx := context.Background()
	admin := domain.Actor{TenantID: "t1", Email: "admin@acme.com", Role: domain.RoleAdmin, Area: "TI"}

	if err := uc.ResetPassword(ctx, admin, "u3", "temporaria1"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	u := repo.users["u3"]
	if !u.MustChangePassword {
		t.Error("MustChangePassword not set after reset")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("temporaria1")) != nil {
		t.Error("stored hash does not match the temporary password")
	}
}
