package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/assetledger/backend/internal/domain"
)

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

type userRow struct {
	ID                  string         `db:"id"`
	OrganizationID      string         `db:"organization_id"`
	Email               string         `db:"email"`
	PasswordHash        string         `db:"password_hash"`
	FullName            string         `db:"full_name"`
	RoleID              string         `db:"role_id"`
	RoleCode            string         `db:"role_code"`
	RoleLevel           int            `db:"role_level"`
	SecondaryRoleCodes  pq.StringArray `db:"secondary_role_codes"`
	DepartmentID        sql.NullString `db:"department_id"`
	IsActive            bool           `db:"is_active"`
	CanApproveTimesheet bool           `db:"can_approve_timesheet"`
	LastLoginAt         sql.NullTime   `db:"last_login_at"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

func (r userRow) toDomain() (*domain.User, error) {
	id, err := domain.ParseID(r.ID)
	if err != nil {
		return nil, err
	}
	roleID, err := domain.ParseID(r.RoleID)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:                  id,
		OrganizationID:      r.OrganizationID,
		Email:               r.Email,
		PasswordHash:        r.PasswordHash,
		FullName:            r.FullName,
		RoleID:              roleID,
		RoleCode:            r.RoleCode,
		RoleLevel:           domain.RoleLevel(r.RoleLevel),
		SecondaryRoleCodes:  []string(r.SecondaryRoleCodes),
		IsActive:            r.IsActive,
		CanApproveTimesheet: r.CanApproveTimesheet,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	if r.DepartmentID.Valid {
		did, err := domain.ParseID(r.DepartmentID.String)
		if err != nil {
			return nil, err
		}
		u.DepartmentID = &did
	}
	if r.LastLoginAt.Valid {
		t := r.LastLoginAt.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

// FindByEmail implements auth.UserLookup.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM users WHERE email = $1`, email); err != nil {
		return nil, translate("find_user_by_email", "user", err)
	}
	return row.toDomain()
}

func (r *UserRepo) GetByID(ctx context.Context, id domain.ID) (*domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		return nil, translate("get_user", "user", err)
	}
	return row.toDomain()
}

// TouchLastLogin implements auth.UserLookup.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id domain.ID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return translate("touch_last_login", "user", err)
	}
	return nil
}

// UserPermissions implements rbac.PermissionSource: it unions the primary
// role's permissions with every secondary role the user carries (§4.4).
func (r *UserRepo) UserPermissions(ctx context.Context, userID domain.ID) ([]string, error) {
	var row struct {
		RoleCode           string         `db:"role_code"`
		SecondaryRoleCodes pq.StringArray `db:"secondary_role_codes"`
	}
	if err := r.db.GetContext(ctx, &row, `SELECT role_code, secondary_role_codes FROM users WHERE id = $1`, userID); err != nil {
		return nil, translate("lookup_user_roles", "user", err)
	}
	codes := append([]string{row.RoleCode}, []string(row.SecondaryRoleCodes)...)

	var roles []pq.StringArray
	err := r.db.SelectContext(ctx, &roles, `SELECT permissions FROM roles WHERE code = ANY($1)`, pq.Array(codes))
	if err != nil {
		return nil, translate("lookup_role_permissions", "role", err)
	}
	seen := map[string]bool{}
	perms := make([]string, 0)
	for _, permSet := range roles {
		for _, p := range permSet {
			if !seen[p] {
				seen[p] = true
				perms = append(perms, p)
			}
		}
	}
	return perms, nil
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, organization_id, email, password_hash, full_name, role_id, role_code, role_level,
			secondary_role_codes, department_id, is_active, can_approve_timesheet, last_login_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, u.ID, u.OrganizationID, u.Email, u.PasswordHash, u.FullName, u.RoleID, u.RoleCode, u.RoleLevel,
		pqStringArray(u.SecondaryRoleCodes), u.DepartmentID, u.IsActive, u.CanApproveTimesheet, u.LastLoginAt,
		u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return translate("create_user", "user", err)
	}
	return nil
}
