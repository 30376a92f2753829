package enums

import "fmt"

// AssignmentMode records how a supplier was picked for a quote.
type AssignmentMode string

const (
	AssignmentModeManual AssignmentMode = "manual"
	AssignmentModeQuick  AssignmentMode = "quick"
	AssignmentModeAuto   AssignmentMode = "auto"
)

var validAssignmentModes = []AssignmentMode{
	AssignmentModeManual,
	AssignmentModeQuick,
	AssignmentModeAuto,
}

// String implements fmt.Stringer.
func (a AssignmentMode) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AssignmentMode.
func (a AssignmentMode) IsValid() bool {
	for _, candidate := range validAssignmentModes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAssignmentMode converts raw input into an AssignmentMode.
func ParseAssignmentMode(value string) (AssignmentMode, error) {
	for _, candidate := range validAssignmentModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment mode %q", value)
}
