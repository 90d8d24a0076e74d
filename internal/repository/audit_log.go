package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"radmon/internal/domain"

	"go.uber.org/zap"
)

// AuditLogRepository audit_logs table access.
type AuditLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditLogRepository creates the audit log repository.
func NewAuditLogRepository(db *sql.DB, logger *zap.Logger) *AuditLogRepository {
	return &AuditLogRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores one audit entry.
func (r *AuditLogRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	if entry == nil {
		return fmt.Errorf("entry is required")
	}
	if entry.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	if entry.Action == "" {
		return fmt.Errorf("action is required")
	}

	query := `
		INSERT INTO audit_logs (
			id, actor_type, actor_id, action, resource, resource_id, details, ip, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	details := entry.Details
	if len(details) == 0 {
		details = json.RawMessage("{}")
	}

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.ActorType,
		entry.ActorID,
		entry.Action,
		entry.Resource,
		entry.ResourceID,
		[]byte(details),
		entry.IP,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}
