package models

import "time"

// RouteStatus is the dispatch lifecycle position of a route
type RouteStatus string

const (
	RouteStatusPlanned    RouteStatus = "PLANNED"
	RouteStatusAssigned   RouteStatus = "ASSIGNED"
	RouteStatusInProgress RouteStatus = "IN_PROGRESS"
	RouteStatusCompleted  RouteStatus = "COMPLETED"
	RouteStatusCancelled  RouteStatus = "CANCELLED"
)

// RouteStatuses lists every accepted route status
var RouteStatuses = []RouteStatus{
	RouteStatusPlanned,
	RouteStatusAssigned,
	RouteStatusInProgress,
	RouteStatusCompleted,
	RouteStatusCancelled,
}

// ParseRouteStatus returns the status matching s exactly (case-sensitive)
func ParseRouteStatus(s string) (RouteStatus, bool) {
	for _, status := range RouteStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}

const DefaultDistanceUnit = "km"

// Route is a planned sequence of stops served by one vehicle/driver
type Route struct {
	ID                string      `json:"id" db:"id"`
	RouteNumber       string      `json:"routeNumber" db:"route_number"`
	Status            RouteStatus `json:"status" db:"status"`
	VehicleID         *string     `json:"vehicleId" db:"vehicle_id"`
	VehicleType       *string     `json:"vehicleType" db:"vehicle_type"`
	DriverID          *string     `json:"driverId" db:"driver_id"`
	DriverName        *string     `json:"driverName" db:"driver_name"` // Snapshot taken at assignment time
	TotalDistance     float64     `json:"totalDistance" db:"total_distance"`
	TotalDuration     int         `json:"totalDuration" db:"total_duration"` // Minutes
	DistanceUnit      string      `json:"distanceUnit" db:"distance_unit"`
	PlannedStartTime  *time.Time  `json:"plannedStartTime" db:"planned_start_time"`
	PlannedEndTime    *time.Time  `json:"plannedEndTime" db:"planned_end_time"`
	ActualStartTime   *time.Time  `json:"actualStartTime" db:"actual_start_time"`
	ActualEndTime     *time.Time  `json:"actualEndTime" db:"actual_end_time"`
	TotalWeight       float64     `json:"totalWeight" db:"total_weight"`
	TotalVolume       float64     `json:"totalVolume" db:"total_volume"`
	TotalPackages     int         `json:"totalPackages" db:"total_packages"`
	IsOptimized       bool        `json:"isOptimized" db:"is_optimized"`
	OptimizedAt       *time.Time  `json:"optimizedAt" db:"optimized_at"`
	OptimizationScore *float64    `json:"optimizationScore" db:"optimization_score"`
	CreatedAt         time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time   `json:"updatedAt" db:"updated_at"`
}

// RouteChanges carries the route columns touched by a partial update.
// Nil fields are left as stored.
type RouteChanges struct {
	Status           *RouteStatus
	VehicleID        *string
	VehicleType      *string
	DriverID         *string
	DriverName       *string
	TotalDistance    *float64
	TotalDuration    *int
	DistanceUnit     *string
	PlannedStartTime *time.Time
	PlannedEndTime   *time.Time
	ActualStartTime  *time.Time
	ActualEndTime    *time.Time
	TotalWeight      *float64
	TotalVolume      *float64
	TotalPackages    *int
}

// RouteFilter narrows GET /api/routes
type RouteFilter struct {
	Status    *RouteStatus
	DriverID  *string
	VehicleID *string
	StartFrom *time.Time // Inclusive lower bound on planned_start_time
	StartTo   *time.Time // Inclusive upper bound on planned_start_time
	Limit     int
	Offset    int
}

// RouteSummary is a list row: the route plus display fields of its vehicle and driver
type RouteSummary struct {
	Route
	Vehicle   *VehicleSummary `json:"vehicle"`
	Driver    *DriverSummary  `json:"driver"`
	StopCount int             `json:"stopCount"`
}

// RouteListResult is the paginated response for GET /api/routes
type RouteListResult struct {
	Data       []RouteSummary `json:"data"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// RouteDetail is the full nested projection of a route
type RouteDetail struct {
	Route
	Vehicle *Vehicle       `json:"vehicle"`
	Driver  *DriverDetail  `json:"driver"`
	Stops   []StopWithLoad `json:"stops"`
}

// CreateRouteRequest is the request body for POST /api/routes
type CreateRouteRequest struct {
	RouteNumber      string                   `json:"routeNumber"`
	VehicleType      string                   `json:"vehicleType"`
	VehicleID        *string                  `json:"vehicleId"`
	DriverID         *string                  `json:"driverId"`
	TotalDistance    float64                  `json:"totalDistance"`
	TotalDuration    int                      `json:"totalDuration"`
	DistanceUnit     string                   `json:"distanceUnit"`
	PlannedStartTime *time.Time               `json:"plannedStartTime"`
	PlannedEndTime   *time.Time               `json:"plannedEndTime"`
	TotalWeight      float64                  `json:"totalWeight"`
	TotalVolume      float64                  `json:"totalVolume"`
	TotalPackages    int                      `json:"totalPackages"`
	Stops            []CreateRouteStopRequest `json:"stops"`
}

// UpdateRouteRequest is the request body for PATCH /api/routes/:id.
// Planned times arrive as RFC3339 text.
type UpdateRouteRequest struct {
	VehicleType      *string  `json:"vehicleType,omitempty"`
	VehicleID        *string  `json:"vehicleId,omitempty"`
	DriverID         *string  `json:"driverId,omitempty"`
	TotalDistance    *float64 `json:"totalDistance,omitempty"`
	TotalDuration    *int     `json:"totalDuration,omitempty"`
	DistanceUnit     *string  `json:"distanceUnit,omitempty"`
	PlannedStartTime *string  `json:"plannedStartTime,omitempty"`
	PlannedEndTime   *string  `json:"plannedEndTime,omitempty"`
	TotalWeight      *float64 `json:"totalWeight,omitempty"`
	TotalVolume      *float64 `json:"totalVolume,omitempty"`
	TotalPackages    *int     `json:"totalPackages,omitempty"`
}

// UpdateRouteStatusRequest is the request body for PATCH /api/routes/:id/status
type UpdateRouteStatusRequest struct {
	Status string `json:"status"`
}

// AssignDriverRequest is the request body for POST /api/routes/:id/assign-driver
type AssignDriverRequest struct {
	DriverID string `json:"driverId"`
}

// AssignVehicleRequest is the request body for POST /api/routes/:id/assign-vehicle
type AssignVehicleRequest struct {
	VehicleID string `json:"vehicleId"`
}
