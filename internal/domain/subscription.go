package domain

import (
	"encoding/json"
	"time"
)

// Subscription notification subscription (subscriptions table).
// Read-only from the core's perspective; criteria is a small JSON predicate
// parsed by the alerting matcher.
type Subscription struct {
	ID      string `db:"id"`      // UUID, PRIMARY KEY
	UserID  string `db:"user_id"` // UUID, NOT NULL
	Channel string `db:"channel"` // VARCHAR, e.g. "email", "webhook"

	Criteria json.RawMessage `db:"criteria"` // JSONB, nullable
	Active   bool            `db:"active"`   // BOOLEAN, DEFAULT true

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
