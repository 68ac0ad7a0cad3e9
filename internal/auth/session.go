package auth

import (
	"context"
	"strings"
	"time"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

// UserLookup is the subset of the user repository the login flow needs.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id domain.ID, at time.Time) error
}

// PermissionResolver resolves the permission codes granted by a role,
// implemented by internal/rbac.
type PermissionResolver interface {
	ResolvePermissions(ctx context.Context, roleID domain.ID) ([]string, error)
}

// SessionService implements the login flow of SPEC_FULL §4.8: look up the
// user by email, verify it is active, verify the password hash, resolve
// its permission set, update last_login_at, and mint a token.
type SessionService struct {
	users    UserLookup
	perms    PermissionResolver
	tokens   *TokenManager
	now      func() time.Time
}

func NewSessionService(users UserLookup, perms PermissionResolver, tokens *TokenManager) *SessionService {
	return &SessionService{users: users, perms: perms, tokens: tokens, now: time.Now}
}

// Login authenticates an email/password pair and returns a signed token.
func (s *SessionService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", time.Time{}, nil, apierrors.Unauthorized("email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, nil, apierrors.Unauthorized("invalid credentials")
	}
	if !user.IsActive {
		return "", time.Time{}, nil, apierrors.Forbidden("account is deactivated")
	}
	if !CheckPassword(user.PasswordHash, password) {
		return "", time.Time{}, nil, apierrors.Unauthorized("invalid credentials")
	}

	perms, err := s.perms.ResolvePermissions(ctx, user.RoleID)
	if err != nil {
		return "", time.Time{}, nil, apierrors.Internal("resolve permissions", err)
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return "", time.Time{}, nil, apierrors.Internal("update last login", err)
	}
	user.LastLoginAt = &now

	var department string
	claims := domain.UserClaims{
		Subject:      user.ID,
		Email:        user.Email,
		Name:         user.FullName,
		RoleCode:     user.RoleCode,
		RoleLevel:    user.RoleLevel,
		Department:   department,
		Organization: user.OrganizationID,
		Permissions:  perms,
		IssuedAt:     now,
	}

	token, exp, err := s.tokens.Issue(claims)
	if err != nil {
		return "", time.Time{}, nil, apierrors.Internal("issue token", err)
	}
	return token, exp, user, nil
}
