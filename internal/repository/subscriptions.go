package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"radmon/internal/domain"

	"go.uber.org/zap"
)

// SubscriptionsRepository subscriptions table access. The alerting core only
// reads subscriptions; they are managed out of band.
type SubscriptionsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubscriptionsRepository creates the subscriptions repository.
func NewSubscriptionsRepository(db *sql.DB, logger *zap.Logger) *SubscriptionsRepository {
	return &SubscriptionsRepository{
		db:     db,
		logger: logger,
	}
}

// ListActiveByUser returns a user's active subscriptions.
func (r *SubscriptionsRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.Subscription, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `
		SELECT id, user_id, channel, criteria, active, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
		  AND active = true
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	subscriptions := []domain.Subscription{}
	for rows.Next() {
		var sub domain.Subscription
		var criteria []byte

		err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.Channel,
			&criteria,
			&sub.Active,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}

		if len(criteria) > 0 {
			sub.Criteria = json.RawMessage(criteria)
		}

		subscriptions = append(subscriptions, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}

	return subscriptions, nil
}
