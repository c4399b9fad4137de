package retrieval

import "math"

// TopK band defaults; callers can override through config.
const (
	DefaultTopK = 20
	MinTopK     = 10
	MaxTopK     = 50

	// redundancyFactor over-requests against later filtering losses.
	redundancyFactor = 1.5
)

// DynamicTopK sizes a request from trip parameters: days x attractions
// per day x a redundancy factor, clamped to [minK, maxK]. Missing trip
// parameters fall back to the default.
func DynamicTopK(travelDays, poisPerDay, defaultK, minK, maxK int) int {
	if defaultK <= 0 {
		defaultK = DefaultTopK
	}
	if minK <= 0 {
		minK = MinTopK
	}
	if maxK <= 0 {
		maxK = MaxTopK
	}
	if travelDays <= 0 || poisPerDay <= 0 {
		return defaultK
	}
	k := int(math.Ceil(float64(travelDays) * float64(poisPerDay) * redundancyFactor))
	if k < minK {
		return minK
	}
	if k > maxK {
		return maxK
	}
	return k
}
