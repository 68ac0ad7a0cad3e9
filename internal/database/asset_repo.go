package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

// AssetRepo implements lifecycle.AssetRepository and the broader asset CRUD
// surface, grounded on the teacher's raw-SQL PostgresStore pattern but
// using sqlx for struct scanning.
type AssetRepo struct {
	db *sqlx.DB
}

func NewAssetRepo(db *sqlx.DB) *AssetRepo { return &AssetRepo{db: db} }

type assetRow struct {
	ID             string          `db:"id"`
	OrganizationID string          `db:"organization_id"`
	Code           string          `db:"code"`
	Name           string          `db:"name"`
	CategoryID     string          `db:"category_id"`
	LocationID     string          `db:"location_id"`
	DepartmentID   string          `db:"department_id"`
	AssigneeID     sql.NullString  `db:"assignee_id"`
	VendorID       sql.NullString  `db:"vendor_id"`
	Status         string          `db:"status"`
	Condition      string          `db:"condition"`
	Serial         string          `db:"serial"`
	Brand          string          `db:"brand"`
	Model          string          `db:"model"`
	Year           int             `db:"year"`
	Specification  []byte          `db:"specification"`
	PurchaseDate   sql.NullTime    `db:"purchase_date"`
	PurchasePrice  decimal.Decimal `db:"purchase_price"`
	Currency       string          `db:"currency"`
	Quantity       int             `db:"quantity"`
	ResidualValue  decimal.Decimal `db:"residual_value"`
	UsefulLifeMo   int             `db:"useful_life_mo"`
	Notes          string          `db:"notes"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r assetRow) toDomain() (*domain.Asset, error) {
	id, err := domain.ParseID(r.ID)
	if err != nil {
		return nil, err
	}
	categoryID, err := domain.ParseID(r.CategoryID)
	if err != nil {
		return nil, err
	}
	locationID, err := domain.ParseID(r.LocationID)
	if err != nil {
		return nil, err
	}
	departmentID, err := domain.ParseID(r.DepartmentID)
	if err != nil {
		return nil, err
	}

	spec := map[string]any{}
	if len(r.Specification) > 0 {
		if err := json.Unmarshal(r.Specification, &spec); err != nil {
			return nil, err
		}
	}

	asset := &domain.Asset{
		ID:             id,
		OrganizationID: r.OrganizationID,
		Code:           r.Code,
		Name:           r.Name,
		CategoryID:     categoryID,
		LocationID:     locationID,
		DepartmentID:   departmentID,
		Status:         domain.AssetState(r.Status),
		Condition:      r.Condition,
		Serial:         r.Serial,
		Brand:          r.Brand,
		Model:          r.Model,
		Year:           r.Year,
		Specification:  spec,
		PurchasePrice:  r.PurchasePrice,
		Currency:       r.Currency,
		Quantity:       r.Quantity,
		ResidualValue:  r.ResidualValue,
		UsefulLifeMo:   r.UsefulLifeMo,
		Notes:          r.Notes,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.AssigneeID.Valid {
		aid, err := domain.ParseID(r.AssigneeID.String)
		if err != nil {
			return nil, err
		}
		asset.AssigneeID = &aid
	}
	if r.VendorID.Valid {
		vid, err := domain.ParseID(r.VendorID.String)
		if err != nil {
			return nil, err
		}
		asset.VendorID = &vid
	}
	if r.PurchaseDate.Valid {
		t := r.PurchaseDate.Time
		asset.PurchaseDate = &t
	}
	return asset, nil
}

func (r *AssetRepo) GetAsset(ctx context.Context, id domain.ID) (*domain.Asset, error) {
	var row assetRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM assets WHERE id = $1`, id)
	if err != nil {
		return nil, translate("get_asset", "asset", err)
	}
	return row.toDomain()
}

func (r *AssetRepo) GetByCode(ctx context.Context, organizationID, code string) (*domain.Asset, error) {
	var row assetRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM assets WHERE organization_id = $1 AND code = $2`, organizationID, code)
	if err != nil {
		return nil, translate("get_asset_by_code", "asset", err)
	}
	return row.toDomain()
}

func (r *AssetRepo) ListByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]*domain.Asset, error) {
	var rows []assetRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM assets WHERE organization_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, organizationID, limit, offset)
	if err != nil {
		return nil, translate("list_assets", "asset", err)
	}
	return rowsToAssets(rows)
}

func rowsToAssets(rows []assetRow) ([]*domain.Asset, error) {
	out := make([]*domain.Asset, 0, len(rows))
	for _, row := range rows {
		asset, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, asset)
	}
	return out, nil
}

func (r *AssetRepo) Create(ctx context.Context, asset *domain.Asset) error {
	spec, err := json.Marshal(asset.Specification)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO assets (
			id, organization_id, code, name, category_id, location_id, department_id,
			assignee_id, vendor_id, status, condition, serial, brand, model, year,
			specification, purchase_date, purchase_price, currency, quantity,
			residual_value, useful_life_mo, notes, created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25
		)
	`, asset.ID, asset.OrganizationID, asset.Code, asset.Name, asset.CategoryID, asset.LocationID,
		asset.DepartmentID, asset.AssigneeID, asset.VendorID, asset.Status, asset.Condition, asset.Serial,
		asset.Brand, asset.Model, asset.Year, spec, asset.PurchaseDate, asset.PurchasePrice, asset.Currency,
		asset.Quantity, asset.ResidualValue, asset.UsefulLifeMo, asset.Notes, asset.CreatedAt, asset.UpdatedAt)
	if err != nil {
		return translate("create_asset", "asset", err)
	}
	return nil
}

// TransitionAsset implements lifecycle.AssetRepository: it writes the new
// status and appends a lifecycle_history row inside one transaction, so a
// crash between the two is impossible.
func (r *AssetRepo) TransitionAsset(ctx context.Context, id domain.ID, to domain.AssetState, reason string, actorID domain.ID, metadata map[string]any) (*domain.Asset, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apierrors.Database("begin_transition_asset", err)
	}
	defer tx.Rollback()

	var row assetRow
	if err := tx.GetContext(ctx, &row, `SELECT * FROM assets WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, translate("lock_asset", "asset", err)
	}
	from := row.Status

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
		UPDATE assets SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4
	`, id, to, now, from)
	if err != nil {
		return nil, apierrors.Database("update_asset_status", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, apierrors.Conflict("asset status changed concurrently")
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO lifecycle_history (id, asset_id, from_state, to_state, reason, actor_id, metadata, timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, domain.NewID(), id, from, to, reason, actorID, metaJSON, now); err != nil {
		return nil, apierrors.Database("insert_lifecycle_history", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apierrors.Database("commit_transition_asset", err)
	}

	row.Status = string(to)
	row.UpdatedAt = now
	return row.toDomain()
}

// UpdateCategoryAndSpec implements workflow.ConversionAssetRepository: it
// applies the approved target category and merged specification atomically
// once a conversion request clears approval.
func (r *AssetRepo) UpdateCategoryAndSpec(ctx context.Context, assetID domain.ID, categoryID domain.ID, spec map[string]any) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE assets SET category_id = $2, specification = $3, updated_at = $4 WHERE id = $1
	`, assetID, categoryID, specJSON, time.Now().UTC())
	if err != nil {
		return translate("update_asset_category_spec", "asset", err)
	}
	return nil
}

// AddToPurchasePrice implements workflow.ConversionAssetRepository: it folds
// a merge/split delta into the existing purchase_price without a read-modify-
// write race by letting Postgres do the addition.
func (r *AssetRepo) AddToPurchasePrice(ctx context.Context, assetID domain.ID, delta decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE assets SET purchase_price = purchase_price + $2, updated_at = $3 WHERE id = $1
	`, assetID, delta, time.Now().UTC())
	if err != nil {
		return translate("add_asset_purchase_price", "asset", err)
	}
	return nil
}
