package models

import "time"

// VehicleStatus represents the availability of a vehicle
type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "AVAILABLE"
	VehicleStatusInUse       VehicleStatus = "IN_USE"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
	VehicleStatusRetired     VehicleStatus = "RETIRED"
)

// Vehicle is a carrier-owned truck or van with rated load capacity
type Vehicle struct {
	ID          string        `json:"id" db:"id"`
	CarrierID   *string       `json:"carrierId" db:"carrier_id"`
	PlateNumber string        `json:"plateNumber" db:"plate_number"`
	VehicleType string        `json:"vehicleType" db:"vehicle_type"`
	Make        *string       `json:"make" db:"make"`
	Model       *string       `json:"model" db:"model"`
	MaxWeight   float64       `json:"maxWeight" db:"max_weight"` // Same unit as route total_weight
	MaxVolume   float64       `json:"maxVolume" db:"max_volume"` // Same unit as route total_volume
	Status      VehicleStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`
}

// CanCarry reports whether the vehicle's rated capacity covers the given load.
// Equal capacity is enough.
func (v *Vehicle) CanCarry(weight, volume float64) bool {
	return v.MaxWeight >= weight && v.MaxVolume >= volume
}

// VehicleSummary is the vehicle part of a route list row
type VehicleSummary struct {
	ID          string `json:"id" db:"id"`
	PlateNumber string `json:"plateNumber" db:"plate_number"`
	VehicleType string `json:"vehicleType" db:"vehicle_type"`
}

// DriverStatus represents whether a driver can take work
type DriverStatus string

const (
	DriverStatusActive   DriverStatus = "ACTIVE"
	DriverStatusOffDuty  DriverStatus = "OFF_DUTY"
	DriverStatusInactive DriverStatus = "INACTIVE"
)

// Driver links a user account to driving credentials
type Driver struct {
	ID            string       `json:"id" db:"id"`
	UserID        string       `json:"userId" db:"user_id"`
	LicenseNumber string       `json:"licenseNumber" db:"license_number"`
	Phone         *string      `json:"phone" db:"phone"`
	Status        DriverStatus `json:"status" db:"status"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time    `json:"updatedAt" db:"updated_at"`
}

// DriverDetail is a driver joined with its user account
type DriverDetail struct {
	Driver
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Email     string `json:"email" db:"email"`
}

// FullName is the display name copied onto routes at assignment time
func (d *DriverDetail) FullName() string {
	return d.FirstName + " " + d.LastName
}

// DriverSummary is the driver part of a route list row
type DriverSummary struct {
	ID        string  `json:"id" db:"id"`
	FirstName string  `json:"firstName" db:"first_name"`
	LastName  string  `json:"lastName" db:"last_name"`
	Phone     *string `json:"phone" db:"phone"`
}
