package enums

import "fmt"

// DeliveryStatus tracks the courier lifecycle of a delivery.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusAccepted  DeliveryStatus = "accepted"
	DeliveryStatusPickedUp  DeliveryStatus = "picked_up"
	DeliveryStatusInTransit DeliveryStatus = "in_transit"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusAccepted,
	DeliveryStatusPickedUp,
	DeliveryStatusInTransit,
	DeliveryStatusDelivered,
	DeliveryStatusCancelled,
	DeliveryStatusFailed,
}

// forward transitions; CANCELLED/FAILED are reachable from any non-terminal state.
var deliveryForward = map[DeliveryStatus]DeliveryStatus{
	DeliveryStatusPending:   DeliveryStatusAccepted,
	DeliveryStatusAccepted:  DeliveryStatusPickedUp,
	DeliveryStatusPickedUp:  DeliveryStatusInTransit,
	DeliveryStatusInTransit: DeliveryStatusDelivered,
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from this state.
func (d DeliveryStatus) IsTerminal() bool {
	switch d {
	case DeliveryStatusDelivered, DeliveryStatusCancelled, DeliveryStatusFailed:
		return true
	}
	return false
}

// IsActive reports whether the delivery counts against a courier's capacity.
func (d DeliveryStatus) IsActive() bool {
	switch d {
	case DeliveryStatusAccepted, DeliveryStatusPickedUp, DeliveryStatusInTransit:
		return true
	}
	return false
}

// CanTransitionTo reports whether a move from d to next is legal. Status only
// moves forward one step at a time, or to a terminal failure state from any
// non-terminal state. Re-sending the current state is not a legal transition.
func (d DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	if d.IsTerminal() {
		return false
	}
	if next == DeliveryStatusCancelled || next == DeliveryStatusFailed {
		return true
	}
	return deliveryForward[d] == next
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
