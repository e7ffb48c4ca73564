package enums

// NotificationType classifies a user-facing notification.
type NotificationType string

const (
	NotificationTypeOrderPaid         NotificationType = "order_paid"
	NotificationTypeOrderCancelled    NotificationType = "order_cancelled"
	NotificationTypePaymentReceived   NotificationType = "payment_received"
	NotificationTypeDeliveryAccepted  NotificationType = "delivery_accepted"
	NotificationTypeDeliveryUpdate    NotificationType = "delivery_update"
	NotificationTypeCommissionEarned  NotificationType = "commission_earned"
	NotificationTypeReferralConverted NotificationType = "referral_converted"
)

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// SellerEventType classifies a seller dashboard event.
type SellerEventType string

const (
	SellerEventSale            SellerEventType = "sale"
	SellerEventPaymentReceived SellerEventType = "payment_received"
	SellerEventOrderCancelled  SellerEventType = "order_cancelled"
)

// SellerEventPriority ranks seller events for the dashboard.
type SellerEventPriority string

const (
	SellerEventPriorityLow    SellerEventPriority = "low"
	SellerEventPriorityMedium SellerEventPriority = "medium"
	SellerEventPriorityHigh   SellerEventPriority = "high"
)
