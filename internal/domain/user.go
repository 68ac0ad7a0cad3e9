package domain

import "time"

// RoleLevel is the numeric privilege hierarchy from §4.4: lower is more
// privileged. 1=super_admin 2=admin 3=manager 4=supervisor/technician
// 5=staff/user.
type RoleLevel int

const (
	RoleLevelSuperAdmin RoleLevel = 1
	RoleLevelAdmin      RoleLevel = 2
	RoleLevelManager    RoleLevel = 3
	RoleLevelSupervisor RoleLevel = 4
	RoleLevelStaff      RoleLevel = 5
)

// DefaultRoleLevel is assigned at user creation when no role is supplied.
const DefaultRoleLevel = RoleLevelStaff

// Role names a position in the hierarchy and the permission codes it
// carries directly (before wildcard expansion).
type Role struct {
	ID          ID
	Code        string
	Name        string
	Level       RoleLevel
	Permissions []string
}

// Permission is a resource.action capability code, e.g. "assets.write" or
// the wildcard forms "*" / "assets.*".
type Permission struct {
	ID       ID
	Code     string
	Resource string
	Action   string
}

// User is an authenticated principal.
type User struct {
	ID                 ID
	OrganizationID     string
	Email              string
	PasswordHash       string
	FullName           string
	RoleID             ID
	RoleCode           string
	RoleLevel          RoleLevel
	SecondaryRoleCodes []string
	DepartmentID       *ID
	IsActive           bool
	CanApproveTimesheet bool
	LastLoginAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// UserClaims is the JWT payload shape from §3/§4.4/§4.8.
type UserClaims struct {
	Subject     ID        `json:"sub"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	RoleCode    string    `json:"role"`
	RoleLevel   RoleLevel `json:"role_level"`
	Department  string    `json:"department,omitempty"`
	Organization string   `json:"org,omitempty"`
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"exp"`
	IssuedAt    time.Time `json:"iat"`
	JTI         string    `json:"jti"`
}

// IsSuperAdmin reports whether the claims belong to the top of the
// hierarchy, which is exempt from organization scoping (§4.4).
func (c UserClaims) IsSuperAdmin() bool {
	return c.RoleLevel == RoleLevelSuperAdmin
}

// AtLeast reports whether the claims' role level is at least as privileged
// as required (lower numeric level = more privilege, so this is `<=`).
func (c UserClaims) AtLeast(required RoleLevel) bool {
	return c.RoleLevel <= required
}
