package domain

import (
	"encoding/json"
	"time"
)

// AuditLog administrative action record (audit_logs table).
type AuditLog struct {
	ID         string  `db:"id"`          // UUID, PRIMARY KEY
	ActorType  string  `db:"actor_type"`  // VARCHAR, e.g. "admin"
	ActorID    *string `db:"actor_id"`    // UUID, nullable
	Action     string  `db:"action"`      // VARCHAR, e.g. "compute_cumulative"
	Resource   string  `db:"resource"`    // VARCHAR, e.g. "computed_readings"
	ResourceID *string `db:"resource_id"` // UUID, nullable

	Details json.RawMessage `db:"details"` // JSONB
	IP      *string         `db:"ip"`      // VARCHAR, nullable

	CreatedAt time.Time `db:"created_at"`
}
