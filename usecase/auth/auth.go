package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

const (
	DefaultTokenTTL   = 12 * time.Hour
	minPasswordLength = 8
)

// Claims is the token payload. The session id binds the token to a
// revocable server-side record: deleting the session invalidates every
// copy of the token before it expires.
type Claims struct {
	Email     string `json:"email"`
	Name      string `json:"nome"`
	Role      string `json:"role"`
	Area      string `json:"area"`
	CanDelete bool   `json:"canDelete"`
	TenantID  string `json:"tenantId"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type UseCase struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	logger     *zap.Logger
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
}

type Options struct {
	TokenTTL   time.Duration
	BcryptCost int
	Logger     *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, secret string, opts Options) *UseCase {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.BcryptCost <= 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &UseCase{
		users:      users,
		sessions:   sessions,
		logger:     opts.Logger,
		secret:     []byte(secret),
		tokenTTL:   opts.TokenTTL,
		bcryptCost: opts.BcryptCost,
	}
}

// LoginResult is what a successful login hands back to the transport
// layer.
type LoginResult struct {
	Token              string       `json:"token"`
	User               *domain.User `json:"user"`
	MustChangePassword bool         `json:"mustChangePassword"`
}

// Login checks the credentials against the tenant's directory and
// issues a token backed by a fresh session. Every failure mode reports
// the same UNAUTHORIZED so callers cannot probe which emails exist.
func (uc *UseCase) Login(ctx context.Context, tenantID, email, password string) (*LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "invalid credentials")
	}

	user, err := uc.users.GetByEmail(ctx, tenantID, email)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.NewError(domain.ErrCodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}
	if !user.Active || user.PasswordHash == "" {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "invalid credentials")
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		TenantID:  user.TenantID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.tokenTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "could not create session", err)
	}

	token, err := uc.issueToken(user, session, now)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "could not sign token", err)
	}

	uc.logger.Info("user logged in",
		zap.String("tenant_id", user.TenantID),
		zap.String("email", user.Email))

	return &LoginResult{
		Token:              token,
		User:               user,
		MustChangePassword: user.MustChangePassword,
	}, nil
}

// Verify parses the bearer token, confirms the backing session still
// exists and rebuilds the acting identity. It is the single entry point
// the auth middleware uses.
func (uc *UseCase) Verify(ctx context.Context, tokenString string) (*domain.Actor, error) {
	claims, err := uc.parseToken(tokenString)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	session, err := uc.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, claims.SessionID)
		return nil, domain.ErrUnauthorized
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	return &domain.Actor{
		Email:     domain.NormalizeEmail(claims.Email),
		Name:      claims.Name,
		Role:      role,
		Area:      claims.Area,
		CanDelete: claims.CanDelete,
		TenantID:  claims.TenantID,
	}, nil
}

// Logout revokes the session behind the token. An already-invalid
// token is not an error: the end state is the same.
func (uc *UseCase) Logout(ctx context.Context, tokenString string) error {
	claims, err := uc.parseToken(tokenString)
	if err != nil {
		return nil
	}
	if claims.SessionID == "" {
		return nil
	}
	return uc.sessions.Delete(ctx, claims.SessionID)
}

// Me returns the actor's current directory record, which may be fresher
// than the token claims.
func (uc *UseCase) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	user, err := uc.users.GetByEmail(ctx, actor.TenantID, actor.Email)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a new hash,
// clearing the forced-change flag.
func (uc *UseCase) ChangePassword(ctx context.Context, actor domain.Actor, current, next string) error {
	if len(next) < minPasswordLength {
		return domain.NewErrorf(domain.ErrCodeValidation, "password must have at least %d characters", minPasswordLength)
	}

	user, err := uc.users.GetByEmail(ctx, actor.TenantID, actor.Email)
	if err != nil {
		return err
	}
	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.NewError(domain.ErrCodeUnauthorized, "current password does not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), uc.bcryptCost)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "could not hash password", err)
	}
	if err := uc.users.SetPassword(ctx, actor.TenantID, user.Email, string(hash), false); err != nil {
		return err
	}

	uc.logger.Info("password changed",
		zap.String("tenant_id", actor.TenantID),
		zap.String("email", actor.Email))
	return nil
}

func (uc *UseCase) issueToken(user *domain.User, session *domain.Session, now time.Time) (string, error) {
	claims := Claims{
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role.String(),
		Area:      user.Area,
		CanDelete: user.CanDelete,
		TenantID:  user.TenantID,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
}

func (uc *UseCase) parseToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, domain.ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthorized
		}
		return uc.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
