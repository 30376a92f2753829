package enums

import (
	"fmt"
	"strings"
)

// Urgency classifies how soon an unassigned quote needs a supplier.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// UrgencyBadge is the display metadata the admin table renders for an urgency.
type UrgencyBadge struct {
	Label  string `json:"label"`
	Tone   string `json:"tone"`
	Weight int    `json:"weight"`
}

var urgencyBadges = map[Urgency]UrgencyBadge{
	UrgencyHigh:   {Label: "High", Tone: "danger", Weight: 3},
	UrgencyMedium: {Label: "Medium", Tone: "warning", Weight: 2},
	UrgencyLow:    {Label: "Low", Tone: "neutral", Weight: 1},
}

var validUrgencies = []Urgency{
	UrgencyHigh,
	UrgencyMedium,
	UrgencyLow,
}

// String implements fmt.Stringer.
func (u Urgency) String() string {
	return string(u)
}

// IsValid reports whether the value is a known Urgency.
func (u Urgency) IsValid() bool {
	_, ok := urgencyBadges[u]
	return ok
}

// Badge returns the rendering metadata for the urgency.
func (u Urgency) Badge() UrgencyBadge {
	return urgencyBadges[u]
}

// Weight orders urgencies; higher is more urgent. Unknown values weigh zero.
func (u Urgency) Weight() int {
	return urgencyBadges[u].Weight
}

// ParseUrgency converts raw input into an Urgency.
func ParseUrgency(value string) (Urgency, error) {
	for _, candidate := range validUrgencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid urgency %q", value)
}

// UrgencyFilter narrows a quote listing to one urgency, or keeps all of them.
type UrgencyFilter struct {
	urgency Urgency
}

// UrgencyFilterAll matches every quote.
var UrgencyFilterAll = UrgencyFilter{}

// FilterByUrgency builds a filter for a single urgency.
func FilterByUrgency(u Urgency) UrgencyFilter {
	return UrgencyFilter{urgency: u}
}

// ParseUrgencyFilter accepts "", "all" or one of the urgency values.
func ParseUrgencyFilter(value string) (UrgencyFilter, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" || normalized == "all" {
		return UrgencyFilterAll, nil
	}
	u, err := ParseUrgency(normalized)
	if err != nil {
		return UrgencyFilter{}, err
	}
	return FilterByUrgency(u), nil
}

// Matches reports whether the urgency passes the filter.
func (f UrgencyFilter) Matches(u Urgency) bool {
	return f.urgency == "" || f.urgency == u
}

// String returns "all" or the filtered urgency.
func (f UrgencyFilter) String() string {
	if f.urgency == "" {
		return "all"
	}
	return string(f.urgency)
}
