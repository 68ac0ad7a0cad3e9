package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/domain"
)

type WorkOrderRepo struct {
	db *sqlx.DB
}

func NewWorkOrderRepo(db *sqlx.DB) *WorkOrderRepo { return &WorkOrderRepo{db: db} }

type workOrderRow struct {
	ID                 string          `db:"id"`
	WONumber           string          `db:"wo_number"`
	AssetID            string          `db:"asset_id"`
	Type               string          `db:"type"`
	Priority           string          `db:"priority"`
	Status             string          `db:"status"`
	AssignedTechnician sql.NullString  `db:"assigned_technician"`
	ScheduledDate      sql.NullTime    `db:"scheduled_date"`
	DueDate            sql.NullTime    `db:"due_date"`
	ActualStart        sql.NullTime    `db:"actual_start"`
	ActualEnd          sql.NullTime    `db:"actual_end"`
	EstimatedCost      decimal.Decimal `db:"estimated_cost"`
	ActualCost         decimal.Decimal `db:"actual_cost"`
	EstimatedHours     decimal.Decimal `db:"estimated_hours"`
	ActualHours        decimal.Decimal `db:"actual_hours"`
	PartsCost          decimal.Decimal `db:"parts_cost"`
	LaborCost          decimal.Decimal `db:"labor_cost"`
	Problem            string          `db:"problem"`
	WorkPerformed      string          `db:"work_performed"`
	SafetyRequirements string          `db:"safety_requirements"`
	LockoutRequired    bool            `db:"lockout_required"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

func (r workOrderRow) toDomain() (*domain.WorkOrder, error) {
	id, err := domain.ParseID(r.ID)
	if err != nil {
		return nil, err
	}
	assetID, err := domain.ParseID(r.AssetID)
	if err != nil {
		return nil, err
	}
	wo := &domain.WorkOrder{
		ID:                 id,
		WONumber:           r.WONumber,
		AssetID:            assetID,
		Type:               r.Type,
		Priority:           domain.WorkOrderPriority(r.Priority),
		Status:             domain.WorkOrderStatus(r.Status),
		EstimatedCost:      r.EstimatedCost,
		ActualCost:         r.ActualCost,
		EstimatedHours:     r.EstimatedHours,
		ActualHours:        r.ActualHours,
		PartsCost:          r.PartsCost,
		LaborCost:          r.LaborCost,
		Problem:            r.Problem,
		WorkPerformed:      r.WorkPerformed,
		SafetyRequirements: r.SafetyRequirements,
		LockoutRequired:    r.LockoutRequired,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.AssignedTechnician.Valid {
		tid, err := domain.ParseID(r.AssignedTechnician.String)
		if err != nil {
			return nil, err
		}
		wo.AssignedTechnician = &tid
	}
	if r.ScheduledDate.Valid {
		t := r.ScheduledDate.Time
		wo.ScheduledDate = &t
	}
	if r.DueDate.Valid {
		t := r.DueDate.Time
		wo.DueDate = &t
	}
	if r.ActualStart.Valid {
		t := r.ActualStart.Time
		wo.ActualStart = &t
	}
	if r.ActualEnd.Valid {
		t := r.ActualEnd.Time
		wo.ActualEnd = &t
	}
	return wo, nil
}

func (r *WorkOrderRepo) GetWorkOrder(ctx context.Context, id domain.ID) (*domain.WorkOrder, error) {
	var row workOrderRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM work_orders WHERE id = $1`, id); err != nil {
		return nil, translate("get_work_order", "work_order", err)
	}
	return row.toDomain()
}

func (r *WorkOrderRepo) UpdateWorkOrder(ctx context.Context, wo *domain.WorkOrder) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE work_orders SET status = $2, assigned_technician = $3, actual_start = $4, actual_end = $5,
			actual_cost = $6, actual_hours = $7, parts_cost = $8, labor_cost = $9, work_performed = $10, updated_at = $11
		WHERE id = $1
	`, wo.ID, wo.Status, wo.AssignedTechnician, wo.ActualStart, wo.ActualEnd, wo.ActualCost, wo.ActualHours,
		wo.PartsCost, wo.LaborCost, wo.WorkPerformed, wo.UpdatedAt)
	if err != nil {
		return translate("update_work_order", "work_order", err)
	}
	return nil
}

func (r *WorkOrderRepo) ListParts(ctx context.Context, workOrderID domain.ID) ([]domain.WorkOrderPart, error) {
	type partRow struct {
		ID          string          `db:"id"`
		WorkOrderID string          `db:"work_order_id"`
		PartName    string          `db:"part_name"`
		Quantity    int             `db:"quantity"`
		UnitCost    decimal.Decimal `db:"unit_cost"`
	}
	var rows []partRow
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM work_order_parts WHERE work_order_id = $1`, workOrderID)
	if err != nil {
		return nil, translate("list_work_order_parts", "work_order_part", err)
	}
	out := make([]domain.WorkOrderPart, 0, len(rows))
	for _, row := range rows {
		id, err := domain.ParseID(row.ID)
		if err != nil {
			return nil, err
		}
		woID, err := domain.ParseID(row.WorkOrderID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.WorkOrderPart{ID: id, WorkOrderID: woID, PartName: row.PartName, Quantity: row.Quantity, UnitCost: row.UnitCost})
	}
	return out, nil
}
