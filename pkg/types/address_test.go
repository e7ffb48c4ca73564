package types

import "testing"

func TestAddressCoordinates(t *testing.T) {
	addr := Address{Latitude: "5.6037", Longitude: "-0.1870"}
	lat, lng, ok := addr.Coordinates()
	if !ok {
		t.Fatal("expected coordinates to parse")
	}
	if lat != 5.6037 || lng != -0.1870 {
		t.Fatalf("got (%v, %v)", lat, lng)
	}
}

func TestAddressCoordinatesMissingOrGarbage(t *testing.T) {
	cases := []Address{
		{},
		{Latitude: "5.6"},
		{Longitude: "-0.2"},
		{Latitude: "north", Longitude: "-0.2"},
		{Latitude: "5.6", Longitude: " "},
	}
	for _, addr := range cases {
		if _, _, ok := addr.Coordinates(); ok {
			t.Fatalf("expected parse failure for %+v", addr)
		}
	}
}

func TestCourierRequested(t *testing.T) {
	if (Address{}).CourierRequested() {
		t.Fatal("no metadata should mean no courier")
	}
	addr := Address{DeliveryRequest: &DeliveryRequest{Requested: true, Priority: "express"}}
	if !addr.CourierRequested() {
		t.Fatal("expected courier requested")
	}
}
