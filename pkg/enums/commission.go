package enums

import "fmt"

// CommissionType classifies a commission ledger entry.
type CommissionType string

const (
	CommissionTypeEarning    CommissionType = "earning"
	CommissionTypeWithdrawal CommissionType = "withdrawal"
	CommissionTypeAdjustment CommissionType = "adjustment"
)

// CommissionStatus tracks settlement of a commission entry.
type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusCompleted CommissionStatus = "completed"
	CommissionStatusReversed  CommissionStatus = "reversed"
)

// CommissionReferenceType names the event family a commission reference belongs to.
type CommissionReferenceType string

const (
	CommissionReferenceOrder        CommissionReferenceType = "order"
	CommissionReferenceSubscription CommissionReferenceType = "subscription"
	CommissionReferenceReferral     CommissionReferenceType = "referral"
)

var validCommissionTypes = []CommissionType{
	CommissionTypeEarning,
	CommissionTypeWithdrawal,
	CommissionTypeAdjustment,
}

// String implements fmt.Stringer.
func (c CommissionType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CommissionType.
func (c CommissionType) IsValid() bool {
	for _, candidate := range validCommissionTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

var validCommissionReferenceTypes = []CommissionReferenceType{
	CommissionReferenceOrder,
	CommissionReferenceSubscription,
	CommissionReferenceReferral,
}

// String implements fmt.Stringer.
func (c CommissionReferenceType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CommissionReferenceType.
func (c CommissionReferenceType) IsValid() bool {
	for _, candidate := range validCommissionReferenceTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCommissionReferenceType converts raw input into a CommissionReferenceType.
func ParseCommissionReferenceType(value string) (CommissionReferenceType, error) {
	for _, candidate := range validCommissionReferenceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid commission reference type %q", value)
}
