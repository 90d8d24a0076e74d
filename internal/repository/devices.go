package repository

import (
	"context"
	"database/sql"
	"fmt"

	"radmon/internal/domain"

	"go.uber.org/zap"
)

// DevicesRepository devices table access.
type DevicesRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDevicesRepository creates the devices repository.
func NewDevicesRepository(db *sql.DB, logger *zap.Logger) *DevicesRepository {
	return &DevicesRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID returns a device by primary key.
func (r *DevicesRepository) GetByID(ctx context.Context, deviceID string) (*domain.Device, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}
	return r.getDevice(ctx, "id", deviceID)
}

// GetByToken returns a device by its ingest token.
func (r *DevicesRepository) GetByToken(ctx context.Context, token string) (*domain.Device, error) {
	if token == "" {
		return nil, fmt.Errorf("device_token is required")
	}
	return r.getDevice(ctx, "device_token", token)
}

func (r *DevicesRepository) getDevice(ctx context.Context, column, value string) (*domain.Device, error) {
	query := fmt.Sprintf(`
		SELECT id, name, device_token, is_active, owner_id, location_id, created_at, updated_at
		FROM devices
		WHERE %s = $1
	`, column)

	var device domain.Device
	var locationID sql.NullString

	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&device.ID,
		&device.Name,
		&device.DeviceToken,
		&device.IsActive,
		&device.OwnerID,
		&locationID,
		&device.CreatedAt,
		&device.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("device not found: %s=%s", column, value)
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	if locationID.Valid {
		device.LocationID = &locationID.String
	}

	return &device, nil
}
