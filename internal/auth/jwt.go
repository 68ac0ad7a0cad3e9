// Package auth issues and validates session tokens, and hashes passwords
// for the login flow described in SPEC_FULL §4.8.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/assetledger/backend/internal/domain"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload minted for an authenticated session, carrying
// enough identity to authorize requests without a database round trip.
type Claims struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	RoleCode    string   `json:"role"`
	RoleLevel   int      `json:"role_level"`
	Department  string   `json:"department,omitempty"`
	Org         string   `json:"org,omitempty"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 JWTs signed with a shared secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue mints a signed token for the given claims snapshot.
func (m *TokenManager) Issue(claims domain.UserClaims) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret not configured")
	}
	exp := time.Now().Add(m.ttl)
	now := time.Now()
	perms := make([]string, len(claims.Permissions))
	copy(perms, claims.Permissions)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:       claims.Email,
		Name:        claims.Name,
		RoleCode:    claims.RoleCode,
		RoleLevel:   int(claims.RoleLevel),
		Department:  claims.Department,
		Org:         claims.Organization,
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   claims.Subject.String(),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Validate parses and verifies a bearer token, returning its claims.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ToUserClaims converts validated token claims back into domain.UserClaims
// for use by RBAC and handler code.
func (c *Claims) ToUserClaims() (domain.UserClaims, error) {
	subject, err := domain.ParseID(c.Subject)
	if err != nil {
		return domain.UserClaims{}, fmt.Errorf("parse subject: %w", err)
	}
	exp := time.Time{}
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time
	}
	iat := time.Time{}
	if c.IssuedAt != nil {
		iat = c.IssuedAt.Time
	}
	return domain.UserClaims{
		Subject:      subject,
		Email:        c.Email,
		Name:         c.Name,
		RoleCode:     c.RoleCode,
		RoleLevel:    domain.RoleLevel(c.RoleLevel),
		Department:   c.Department,
		Organization: c.Org,
		Permissions:  c.Permissions,
		ExpiresAt:    exp,
		IssuedAt:     iat,
		JTI:          c.ID,
	}, nil
}
