// Package units converts raw sensor values into the canonical dose-rate
// unit (µSv/h). Every threshold comparison and analytics computation in the
// service runs on canonical values.
package units

// Canonical and milli dose-rate unit names as reported by devices.
const (
	CanonicalUnit = "µSv/h"
	MilliUnit     = "mSv/h"
)

// Normalize converts (value, unit) into µSv/h. Only the milli unit is
// scaled; empty or unrecognized units pass through verbatim. The permissive
// pass-through is intentional: devices in the field report a handful of
// unit spellings and a wrong guess is worse than a raw value.
func Normalize(value float64, unit string) float64 {
	if unit == MilliUnit {
		return value * 1000
	}
	return value
}
