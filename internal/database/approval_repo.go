package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/assetledger/backend/internal/domain"
)

type ApprovalRepo struct {
	db *sqlx.DB
}

func NewApprovalRepo(db *sqlx.DB) *ApprovalRepo { return &ApprovalRepo{db: db} }

type approvalRow struct {
	ID           string         `db:"id"`
	ResourceType string         `db:"resource_type"`
	ResourceID   string         `db:"resource_id"`
	Action       string         `db:"action"`
	RequesterID  string         `db:"requester_id"`
	Status       string         `db:"status"`
	CurrentLevel int            `db:"current_level"`
	L1ApproverID sql.NullString `db:"l1_approver_id"`
	L1At         sql.NullTime   `db:"l1_at"`
	L1Notes      string         `db:"l1_notes"`
	L2ApproverID sql.NullString `db:"l2_approver_id"`
	L2At         sql.NullTime   `db:"l2_at"`
	L2Notes      string         `db:"l2_notes"`
	Snapshot     []byte         `db:"snapshot"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r approvalRow) toDomain() (*domain.ApprovalRequest, error) {
	id, err := domain.ParseID(r.ID)
	if err != nil {
		return nil, err
	}
	resourceID, err := domain.ParseID(r.ResourceID)
	if err != nil {
		return nil, err
	}
	requesterID, err := domain.ParseID(r.RequesterID)
	if err != nil {
		return nil, err
	}
	snapshot := map[string]any{}
	if len(r.Snapshot) > 0 {
		if err := json.Unmarshal(r.Snapshot, &snapshot); err != nil {
			return nil, err
		}
	}
	req := &domain.ApprovalRequest{
		ID:           id,
		ResourceType: r.ResourceType,
		ResourceID:   resourceID,
		Action:       r.Action,
		RequesterID:  requesterID,
		Status:       domain.ApprovalStatus(r.Status),
		CurrentLevel: domain.ApprovalLevel(r.CurrentLevel),
		L1Notes:      r.L1Notes,
		L2Notes:      r.L2Notes,
		Snapshot:     snapshot,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.L1ApproverID.Valid {
		aid, err := domain.ParseID(r.L1ApproverID.String)
		if err != nil {
			return nil, err
		}
		req.L1ApproverID = &aid
	}
	if r.L1At.Valid {
		t := r.L1At.Time
		req.L1At = &t
	}
	if r.L2ApproverID.Valid {
		aid, err := domain.ParseID(r.L2ApproverID.String)
		if err != nil {
			return nil, err
		}
		req.L2ApproverID = &aid
	}
	if r.L2At.Valid {
		t := r.L2At.Time
		req.L2At = &t
	}
	return req, nil
}

func (r *ApprovalRepo) CreateApproval(ctx context.Context, req *domain.ApprovalRequest) error {
	snapshot, err := json.Marshal(req.Snapshot)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO approval_requests (id, resource_type, resource_id, action, requester_id, status, current_level,
			l1_approver_id, l1_at, l1_notes, l2_approver_id, l2_at, l2_notes, snapshot, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, req.ID, req.ResourceType, req.ResourceID, req.Action, req.RequesterID, req.Status, req.CurrentLevel,
		req.L1ApproverID, req.L1At, req.L1Notes, req.L2ApproverID, req.L2At, req.L2Notes, snapshot,
		req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return translate("create_approval", "approval_request", err)
	}
	return nil
}

func (r *ApprovalRepo) GetApproval(ctx context.Context, id domain.ID) (*domain.ApprovalRequest, error) {
	var row approvalRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM approval_requests WHERE id = $1`, id); err != nil {
		return nil, translate("get_approval", "approval_request", err)
	}
	return row.toDomain()
}

func (r *ApprovalRepo) UpdateApproval(ctx context.Context, req *domain.ApprovalRequest) error {
	snapshot, err := json.Marshal(req.Snapshot)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE approval_requests SET status = $2, current_level = $3, l1_approver_id = $4, l1_at = $5,
			l1_notes = $6, l2_approver_id = $7, l2_at = $8, l2_notes = $9, snapshot = $10, updated_at = $11
		WHERE id = $1
	`, req.ID, req.Status, req.CurrentLevel, req.L1ApproverID, req.L1At, req.L1Notes, req.L2ApproverID,
		req.L2At, req.L2Notes, snapshot, req.UpdatedAt)
	if err != nil {
		return translate("update_approval", "approval_request", err)
	}
	return nil
}
