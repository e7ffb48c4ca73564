package enums

import "fmt"

// DiscountStatus gates whether a discount code may be applied.
type DiscountStatus string

const (
	DiscountStatusEnabled  DiscountStatus = "enabled"
	DiscountStatusDisabled DiscountStatus = "disabled"
	DiscountStatusExpired  DiscountStatus = "expired"
)

var validDiscountStatuses = []DiscountStatus{
	DiscountStatusEnabled,
	DiscountStatusDisabled,
	DiscountStatusExpired,
}

// String implements fmt.Stringer.
func (d DiscountStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountStatus.
func (d DiscountStatus) IsValid() bool {
	for _, candidate := range validDiscountStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountStatus converts raw input into a DiscountStatus.
func ParseDiscountStatus(value string) (DiscountStatus, error) {
	for _, candidate := range validDiscountStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount status %q", value)
}
