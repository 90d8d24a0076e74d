package domain

import "time"

// AlertLevel severity tier. The set is strictly ordered:
// warning < danger < critical.
type AlertLevel string

const (
	AlertLevelWarning  AlertLevel = "warning"
	AlertLevelDanger   AlertLevel = "danger"
	AlertLevelCritical AlertLevel = "critical"
)

// Rank returns the position of the level in the severity order
// (warning=1, danger=2, critical=3, unknown=0).
func (l AlertLevel) Rank() int {
	switch l {
	case AlertLevelWarning:
		return 1
	case AlertLevelDanger:
		return 2
	case AlertLevelCritical:
		return 3
	default:
		return 0
	}
}

// Alert threshold alert raised for a reading (alerts table).
// Created only by the alerting pipeline; mutated only by acknowledgment.
type Alert struct {
	ID       string  `db:"id"`         // UUID, PRIMARY KEY
	DeviceID string  `db:"device_id"`  // UUID, NOT NULL
	ReadingID *string `db:"reading_id"` // UUID, nullable

	Level   AlertLevel `db:"level"`   // VARCHAR, CHECK IN ('warning','danger','critical')
	Message string     `db:"message"` // TEXT, NOT NULL

	Acknowledged   bool       `db:"acknowledged"`    // BOOLEAN, DEFAULT false
	AcknowledgedAt *time.Time `db:"acknowledged_at"` // TIMESTAMPTZ, nullable

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
