package domain

import "strings"

// Target industries for fit scoring. Values are normalized.
const (
	IndustryHomeImprovement = "home-improvement"
	IndustryHVAC            = "hvac"
	IndustryPlumbing        = "plumbing"
	IndustryElectrical      = "electrical"
	IndustryRoofing         = "roofing"
	IndustryLandscaping     = "landscaping"
)

var targetIndustries = map[string]struct{}{
	IndustryHomeImprovement: {},
	IndustryHVAC:            {},
	IndustryPlumbing:        {},
	IndustryElectrical:      {},
	IndustryRoofing:         {},
	IndustryLandscaping:     {},
}

// NormalizeIndustry lowercases and trims a free-text industry value.
func NormalizeIndustry(industry string) string {
	return strings.ToLower(strings.TrimSpace(industry))
}

// IsTargetIndustry is an exact match after normalization. "Home Improvement"
// with a space does not match.
func IsTargetIndustry(industry string) bool {
	_, ok := targetIndustries[NormalizeIndustry(industry)]
	return ok
}
