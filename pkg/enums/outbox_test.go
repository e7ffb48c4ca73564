package enums

import (
	"fmt"
	"testing"
)

func TestOutboxEnumsImplementStringer(t *testing.T) {
	var event fmt.Stringer = EventOrderSettled
	if event.String() != "order.settled" {
		t.Errorf("event type = %q, want order.settled", event.String())
	}
	var aggregate fmt.Stringer = AggregateOrder
	if aggregate.String() != "order" {
		t.Errorf("aggregate type = %q, want order", aggregate.String())
	}
}
