package domain

import "time"

// Notification is a persisted per-user in-app notification (§4.7, plane 1).
type Notification struct {
	ID             ID
	UserID         ID
	Title          string
	Message        string
	EntityType     string
	EntityID       *ID
	IsRead         bool
	CreatedAt      time.Time
}

// AuditLog is the whole-system append-only trail (SPEC_FULL §1
// expansion), distinct from the asset-scoped LifecycleHistory: it records
// every actor action across resource kinds, not just status changes.
type AuditLog struct {
	ID           ID
	ActorID      *ID
	Action       string
	ResourceType string
	ResourceID   ID
	Before       map[string]any
	After        map[string]any
	Timestamp    time.Time
}
