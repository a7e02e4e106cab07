package models

import "time"

// Shipment is a customer order moving from origin to destination
type Shipment struct {
	ID              string    `json:"id" db:"id"`
	TrackingNumber  string    `json:"trackingNumber" db:"tracking_number"`
	Status          string    `json:"status" db:"status"`
	OriginCity      string    `json:"originCity" db:"origin_city"`
	DestinationCity string    `json:"destinationCity" db:"destination_city"`
	Weight          float64   `json:"weight" db:"weight"`
	Volume          float64   `json:"volume" db:"volume"`
	WeightUnit      string    `json:"weightUnit" db:"weight_unit"`
	VolumeUnit      string    `json:"volumeUnit" db:"volume_unit"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// ShipmentSummary is the shipment projection nested under stops
type ShipmentSummary struct {
	ID             string  `json:"id" db:"id"`
	TrackingNumber string  `json:"trackingNumber" db:"tracking_number"`
	Status         string  `json:"status" db:"status"`
	Weight         float64 `json:"weight" db:"weight"`
	Volume         float64 `json:"volume" db:"volume"`
	WeightUnit     string  `json:"weightUnit" db:"weight_unit"`
	VolumeUnit     string  `json:"volumeUnit" db:"volume_unit"`
}

// StopShipment is one row of the route_stop_shipments join with shipment fields
type StopShipment struct {
	StopID string `db:"stop_id"`
	ShipmentSummary
}
