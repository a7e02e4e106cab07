package models

import "time"

// StopType says what happens at a stop
type StopType string

const (
	StopTypePickup            StopType = "PICKUP"
	StopTypeDelivery          StopType = "DELIVERY"
	StopTypePickupAndDelivery StopType = "PICKUP_AND_DELIVERY"
)

// Valid reports whether t is a known stop type
func (t StopType) Valid() bool {
	switch t {
	case StopTypePickup, StopTypeDelivery, StopTypePickupAndDelivery:
		return true
	}
	return false
}

// StopStatus is stored per stop; nothing in the route lifecycle drives it
type StopStatus string

const (
	StopStatusPending   StopStatus = "PENDING"
	StopStatusArrived   StopStatus = "ARRIVED"
	StopStatusCompleted StopStatus = "COMPLETED"
	StopStatusSkipped   StopStatus = "SKIPPED"
)

// RouteStop is a single pickup/delivery location within a route (route_stops table)
type RouteStop struct {
	ID                   string     `json:"id" db:"id"`
	RouteID              string     `json:"routeId" db:"route_id"`
	SequenceNumber       int        `json:"sequenceNumber" db:"sequence_number"`
	StopType             StopType   `json:"stopType" db:"stop_type"`
	Status               StopStatus `json:"status" db:"status"`
	Address              string     `json:"address" db:"address"`
	City                 string     `json:"city" db:"city"`
	State                *string    `json:"state" db:"state"`
	PostalCode           string     `json:"postalCode" db:"postal_code"`
	Country              string     `json:"country" db:"country"`
	Latitude             *float64   `json:"latitude" db:"latitude"`
	Longitude            *float64   `json:"longitude" db:"longitude"`
	PlannedArrivalTime   *time.Time `json:"plannedArrivalTime" db:"planned_arrival_time"`
	PlannedDepartureTime *time.Time `json:"plannedDepartureTime" db:"planned_departure_time"`
	ServiceTime          int        `json:"serviceTime" db:"service_time"` // Minutes
	ContactName          *string    `json:"contactName" db:"contact_name"`
	ContactPhone         *string    `json:"contactPhone" db:"contact_phone"`
	Notes                *string    `json:"notes" db:"notes"`
	CreatedAt            time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time  `json:"updatedAt" db:"updated_at"`
}

// NewRouteStop is a stop queued for insertion together with the shipments it serves
type NewRouteStop struct {
	RouteStop
	ShipmentIDs []string
}

// StopWithLoad is a stop with the shipments associated to it
type StopWithLoad struct {
	RouteStop
	Shipments []ShipmentSummary `json:"shipments"`
}

// RouteStopsResult is the response for GET /api/routes/:id/stops
type RouteStopsResult struct {
	RouteID string         `json:"routeId"`
	Stops   []StopWithLoad `json:"stops"`
	Count   int            `json:"count"`
}

// CreateRouteStopRequest is one stop in the POST /api/routes payload
type CreateRouteStopRequest struct {
	SequenceNumber       int        `json:"sequenceNumber"`
	StopType             StopType   `json:"stopType"`
	Address              string     `json:"address"`
	City                 string     `json:"city"`
	State                *string    `json:"state"`
	PostalCode           string     `json:"postalCode"`
	Country              string     `json:"country"`
	Latitude             *float64   `json:"latitude"`
	Longitude            *float64   `json:"longitude"`
	PlannedArrivalTime   *time.Time `json:"plannedArrivalTime"`
	PlannedDepartureTime *time.Time `json:"plannedDepartureTime"`
	ServiceTime          int        `json:"serviceTime"`
	ContactName          *string    `json:"contactName"`
	ContactPhone         *string    `json:"contactPhone"`
	Notes                *string    `json:"notes"`
	ShipmentIDs          []string   `json:"shipmentIds"`
	PackageIDs           []string   `json:"packageIds"` // Accepted, not linked to the stop
}
