package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/assetledger/backend/internal/domain"
)

// LookupRepo covers the simple reference tables that back asset metadata
// (§4.1) and billing counterparties (§4.3): categories, locations,
// departments, vendors, clients.
type LookupRepo struct {
	db *sqlx.DB
}

func NewLookupRepo(db *sqlx.DB) *LookupRepo { return &LookupRepo{db: db} }

type categoryRow struct {
	ID                 string         `db:"id"`
	Code               string         `db:"code"`
	Name               string         `db:"name"`
	ParentID           sql.NullString `db:"parent_id"`
	DepreciationMonths int            `db:"depreciation_months"`
}

func (r categoryRow) toDomain() (domain.Category, error) {
	id, err := domain.ParseID(r.ID)
	if err != nil {
		return domain.Category{}, err
	}
	c := domain.Category{ID: id, Code: r.Code, Name: r.Name, DepreciationMonths: r.DepreciationMonths}
	if r.ParentID.Valid {
		pid, err := domain.ParseID(r.ParentID.String)
		if err != nil {
			return domain.Category{}, err
		}
		c.ParentID = &pid
	}
	return c, nil
}

func (r *LookupRepo) GetCategory(ctx context.Context, id domain.ID) (*domain.Category, error) {
	var row categoryRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM categories WHERE id = $1`, id); err != nil {
		return nil, translate("get_category", "category", err)
	}
	c, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *LookupRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM categories ORDER BY name`); err != nil {
		return nil, translate("list_categories", "category", err)
	}
	out := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		c, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

type locationRow struct {
	ID       string `db:"id"`
	Code     string `db:"code"`
	Name     string `db:"name"`
	IsActive bool   `db:"is_active"`
}

func (r *LookupRepo) ListLocations(ctx context.Context) ([]domain.Location, error) {
	var rows []locationRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM locations ORDER BY name`); err != nil {
		return nil, translate("list_locations", "location", err)
	}
	out := make([]domain.Location, 0, len(rows))
	for _, row := range rows {
		id, err := domain.ParseID(row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Location{ID: id, Code: row.Code, Name: row.Name, IsActive: row.IsActive})
	}
	return out, nil
}

func (r *LookupRepo) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	var rows []locationRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM departments ORDER BY name`); err != nil {
		return nil, translate("list_departments", "department", err)
	}
	out := make([]domain.Department, 0, len(rows))
	for _, row := range rows {
		id, err := domain.ParseID(row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Department{ID: id, Code: row.Code, Name: row.Name, IsActive: row.IsActive})
	}
	return out, nil
}

type partyRow struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Contact  string `db:"contact"`
	IsActive bool   `db:"is_active"`
}

func (r *LookupRepo) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	var rows []partyRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM vendors ORDER BY name`); err != nil {
		return nil, translate("list_vendors", "vendor", err)
	}
	out := make([]domain.Vendor, 0, len(rows))
	for _, row := range rows {
		id, err := domain.ParseID(row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Vendor{ID: id, Name: row.Name, Contact: row.Contact, IsActive: row.IsActive})
	}
	return out, nil
}

// GetClient implements workflow.ClientStatusReader: the rental-creation
// guard needs a single client's is_active flag, not the whole list.
func (r *LookupRepo) GetClient(ctx context.Context, id domain.ID) (*domain.Client, error) {
	var row partyRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM clients WHERE id = $1`, id); err != nil {
		return nil, translate("get_client", "client", err)
	}
	return &domain.Client{ID: id, Name: row.Name, Contact: row.Contact, IsActive: row.IsActive}, nil
}

func (r *LookupRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	var rows []partyRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM clients ORDER BY name`); err != nil {
		return nil, translate("list_clients", "client", err)
	}
	out := make([]domain.Client, 0, len(rows))
	for _, row := range rows {
		id, err := domain.ParseID(row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Client{ID: id, Name: row.Name, Contact: row.Contact, IsActive: row.IsActive})
	}
	return out, nil
}
