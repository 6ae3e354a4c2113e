package validation

import "firegate/internal/core/domain"

// California geographic bounds and plausible fire years for incident data.
const (
	caLatMin = 32.5
	caLatMax = 42.0
	caLonMin = -124.5
	caLonMax = -114.0

	fireYearMin = 1950
	fireYearMax = 2025
)

// DamageLevels are the accepted damage classification values.
var DamageLevels = []string{"MINOR", "MODERATE", "MAJOR", "DESTROYED", "UNKNOWN"}

// DefaultWildfireRules returns the standard rule set for wildfire-incident
// batches: coordinate bounds, plausible fire year, non-negative acreage,
// required fire name, and damage-level membership.
func DefaultWildfireRules() []*domain.Rule {
	latitude := domain.Between(
		"valid_latitude", "latitude", caLatMin, caLatMax,
		domain.SeverityHigh, domain.ActionQuarantine)
	latitude.Description = "Latitude must fall within California bounds"

	longitude := domain.Between(
		"valid_longitude", "longitude", caLonMin, caLonMax,
		domain.SeverityHigh, domain.ActionQuarantine)
	longitude.Description = "Longitude must fall within California bounds"

	fireYear := domain.Between(
		"valid_fire_year", "fire_year", fireYearMin, fireYearMax,
		domain.SeverityMedium, domain.ActionQuarantine)
	fireYear.Description = "Fire year must be reasonable"

	acres := domain.AtLeast(
		"valid_acres", "acres", 0,
		domain.SeverityMedium, domain.ActionQuarantine)
	acres.Description = "Burned acreage must be non-negative"

	fireName := domain.NotNull(
		"required_fire_name", "fire_name",
		domain.SeverityHigh, domain.ActionQuarantine)
	fireName.Description = "Fire name must not be null or empty"

	damage := domain.Membership(
		"valid_damage_level", "damage_level", DamageLevels,
		domain.SeverityLow, domain.ActionLog)
	damage.Description = "Damage level must be a known classification"

	return []*domain.Rule{latitude, longitude, fireYear, acres, fireName, damage}
}
