package quotes

import (
	"math"
	"time"

	"github.com/angelmondragon/garmentz-backend/pkg/enums"
)

const (
	highAgeDays    = 3
	highQuantity   = 1000
	mediumAgeDays  = 1
	mediumQuantity = 500
	hoursPerDay    = 24
)

// AgeDays returns the whole days elapsed between createdAt and now, floored.
func AgeDays(createdAt, now time.Time) int {
	return int(math.Floor(now.Sub(createdAt).Hours() / hoursPerDay))
}

// ClassifyUrgency applies the cascading age/quantity thresholds. Either signal
// alone is enough to escalate.
func ClassifyUrgency(ageDays, quantity int) enums.Urgency {
	switch {
	case ageDays > highAgeDays || quantity > highQuantity:
		return enums.UrgencyHigh
	case ageDays > mediumAgeDays || quantity > mediumQuantity:
		return enums.UrgencyMedium
	default:
		return enums.UrgencyLow
	}
}
