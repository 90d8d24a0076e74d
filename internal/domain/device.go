package domain

import "time"

// Device registered sensor device (devices table).
type Device struct {
	ID          string  `db:"id"`           // UUID, PRIMARY KEY
	Name        string  `db:"name"`         // VARCHAR, NOT NULL
	DeviceToken string  `db:"device_token"` // VARCHAR, UNIQUE, ingest credential
	IsActive    bool    `db:"is_active"`    // BOOLEAN, DEFAULT true
	OwnerID     string  `db:"owner_id"`     // UUID, NOT NULL, REFERENCES users(id)
	LocationID  *string `db:"location_id"`  // UUID, nullable

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
