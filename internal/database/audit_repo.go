package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/assetledger/backend/internal/domain"
)

// AuditRepo persists the whole-system audit trail (§4.15 expansion),
// written by internal/audit for each request whose handler calls
// audit.Recorder.Record.
type AuditRepo struct {
	db *sqlx.DB
}

func NewAuditRepo(db *sqlx.DB) *AuditRepo { return &AuditRepo{db: db} }

func (r *AuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	before, err := json.Marshal(log.Before)
	if err != nil {
		return err
	}
	after, err := json.Marshal(log.After)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_id, action, resource_type, resource_id, before, after, timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, log.ID, log.ActorID, log.Action, log.ResourceType, log.ResourceID, before, after, log.Timestamp)
	if err != nil {
		return translate("create_audit_log", "audit_log", err)
	}
	return nil
}

type auditRow struct {
	ID           string         `db:"id"`
	ActorID      sql.NullString `db:"actor_id"`
	Action       string         `db:"action"`
	ResourceType string         `db:"resource_type"`
	ResourceID   string         `db:"resource_id"`
	Before       []byte         `db:"before"`
	After        []byte         `db:"after"`
	Timestamp    time.Time      `db:"timestamp"`
}

func (r auditRow) toDomain() (*domain.AuditLog, error) {
	id, err := domain.ParseID(r.ID)
	if err != nil {
		return nil, err
	}
	resourceID, err := domain.ParseID(r.ResourceID)
	if err != nil {
		return nil, err
	}
	before := map[string]any{}
	if len(r.Before) > 0 {
		if err := json.Unmarshal(r.Before, &before); err != nil {
			return nil, err
		}
	}
	after := map[string]any{}
	if len(r.After) > 0 {
		if err := json.Unmarshal(r.After, &after); err != nil {
			return nil, err
		}
	}
	log := &domain.AuditLog{
		ID:           id,
		Action:       r.Action,
		ResourceType: r.ResourceType,
		ResourceID:   resourceID,
		Before:       before,
		After:        after,
		Timestamp:    r.Timestamp,
	}
	if r.ActorID.Valid {
		aid, err := domain.ParseID(r.ActorID.String)
		if err != nil {
			return nil, err
		}
		log.ActorID = &aid
	}
	return log, nil
}

func (r *AuditRepo) ListByResource(ctx context.Context, resourceType string, resourceID domain.ID, limit, offset int) ([]*domain.AuditLog, error) {
	var rows []auditRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM audit_logs WHERE resource_type = $1 AND resource_id = $2
		ORDER BY timestamp DESC LIMIT $3 OFFSET $4
	`, resourceType, resourceID, limit, offset)
	if err != nil {
		return nil, translate("list_audit_logs", "audit_log", err)
	}
	out := make([]*domain.AuditLog, 0, len(rows))
	for _, row := range rows {
		log, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, log)
	}
	return out, nil
}
