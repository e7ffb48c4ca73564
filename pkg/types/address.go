package types

import (
	"strconv"
	"strings"
)

// Address is the structured shipping/pickup address stored as jsonb.
// Coordinates are kept as strings because they arrive from client payloads
// that sometimes carry empty values; Coordinates() tolerates both.
type Address struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	Region     string  `json:"region"`
	PostalCode string  `json:"postal_code,omitempty"`
	Country    string  `json:"country"`
	Phone      string  `json:"phone,omitempty"`
	Latitude   string  `json:"latitude,omitempty"`
	Longitude  string  `json:"longitude,omitempty"`

	// DeliveryRequest rides along as opaque metadata on an order's shipping
	// address and is read back at settlement time.
	DeliveryRequest *DeliveryRequest `json:"delivery_request,omitempty"`
}

// DeliveryRequest captures the buyer's courier preference at checkout.
type DeliveryRequest struct {
	Requested bool   `json:"requested"`
	Priority  string `json:"priority,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Coordinates parses the latitude/longitude pair. ok is false when either
// value is missing or not numeric.
func (a Address) Coordinates() (lat, lng float64, ok bool) {
	latRaw := strings.TrimSpace(a.Latitude)
	lngRaw := strings.TrimSpace(a.Longitude)
	if latRaw == "" || lngRaw == "" {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

// CourierRequested reports whether the embedded delivery metadata asks for a
// courier.
func (a Address) CourierRequested() bool {
	return a.DeliveryRequest != nil && a.DeliveryRequest.Requested
}
