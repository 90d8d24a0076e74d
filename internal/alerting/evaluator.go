package alerting

import (
	"fmt"

	"radmon/internal/config"
	"radmon/internal/domain"
)

// Evaluator classifies a normalized dose rate against the three
// severity thresholds. Checks run highest-first and are inclusive, so
// a value sitting exactly on a boundary takes the higher tier.
type Evaluator struct {
	warning  float64
	danger   float64
	critical float64
}

// NewEvaluator creates an evaluator from the configured thresholds.
func NewEvaluator(cfg *config.Config) *Evaluator {
	return &Evaluator{
		warning:  cfg.Alert.WarningThreshold,
		danger:   cfg.Alert.DangerThreshold,
		critical: cfg.Alert.CriticalThreshold,
	}
}

// Evaluate returns the severity tier for a µSv/h dose rate. ok is false
// when the value is below every threshold.
func (e *Evaluator) Evaluate(value float64) (level domain.AlertLevel, ok bool) {
	switch {
	case value >= e.critical:
		return domain.AlertLevelCritical, true
	case value >= e.danger:
		return domain.AlertLevelDanger, true
	case value >= e.warning:
		return domain.AlertLevelWarning, true
	default:
		return "", false
	}
}

// Message builds the alert message for a level and µSv/h value.
func Message(level domain.AlertLevel, value float64) string {
	switch level {
	case domain.AlertLevelCritical:
		return fmt.Sprintf("CRITICAL: Radiation level %v µSv/h detected", value)
	case domain.AlertLevelDanger:
		return fmt.Sprintf("DANGER: High radiation level %v µSv/h detected", value)
	default:
		return fmt.Sprintf("WARNING: Elevated radiation level %v µSv/h detected", value)
	}
}
