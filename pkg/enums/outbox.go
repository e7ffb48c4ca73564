package enums

// OutboxEventType names a domain event stored in the outbox.
type OutboxEventType string

const (
	EventPaymentSucceeded OutboxEventType = "payment.succeeded"
	EventPaymentFailed    OutboxEventType = "payment.failed"
	EventOrderSettled     OutboxEventType = "order.settled"
	EventOrderCancelled   OutboxEventType = "order.cancelled"
	EventDeliveryUpdated  OutboxEventType = "delivery.updated"
)

// String implements fmt.Stringer.
func (o OutboxEventType) String() string {
	return string(o)
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder    OutboxAggregateType = "order"
	AggregateDelivery OutboxAggregateType = "delivery"
)

// String implements fmt.Stringer.
func (o OutboxAggregateType) String() string {
	return string(o)
}

// OutboxStatus tracks delivery of an outbox row to the broker.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)
