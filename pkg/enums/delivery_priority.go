package enums

import "fmt"

// DeliveryPriority affects the delivery fee multiplier, fixed at creation.
type DeliveryPriority string

const (
	DeliveryPriorityStandard DeliveryPriority = "standard"
	DeliveryPriorityExpress  DeliveryPriority = "express"
	DeliveryPriorityUrgent   DeliveryPriority = "urgent"
)

var validDeliveryPriorities = []DeliveryPriority{
	DeliveryPriorityStandard,
	DeliveryPriorityExpress,
	DeliveryPriorityUrgent,
}

// String implements fmt.Stringer.
func (d DeliveryPriority) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryPriority.
func (d DeliveryPriority) IsValid() bool {
	for _, candidate := range validDeliveryPriorities {
		if candidate == d {
			return true
		}
	}
	return false
}

// Rank orders priorities for listing, urgent first.
func (d DeliveryPriority) Rank() int {
	switch d {
	case DeliveryPriorityUrgent:
		return 0
	case DeliveryPriorityExpress:
		return 1
	default:
		return 2
	}
}

// ParseDeliveryPriority converts raw input into a DeliveryPriority.
func ParseDeliveryPriority(value string) (DeliveryPriority, error) {
	for _, candidate := range validDeliveryPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery priority %q", value)
}
