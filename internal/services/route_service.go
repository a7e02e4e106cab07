package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"tms-backend/internal/database"
	"tms-backend/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// RouteStore is the persistence the route service depends on.
// Lookups return database.ErrNotFound (possibly wrapped) for missing rows.
type RouteStore interface {
	RouteNumberExists(ctx context.Context, routeNumber string) (bool, error)
	CountRoutesCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	VehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	DriverByID(ctx context.Context, id string) (*models.DriverDetail, error)
	CreateRouteWithStops(ctx context.Context, route *models.Route, stops []models.NewRouteStop) error
	ListRoutes(ctx context.Context, filter models.RouteFilter) ([]models.RouteSummary, int, error)
	RouteByID(ctx context.Context, id string) (*models.Route, error)
	StopsForRoute(ctx context.Context, routeID string) ([]models.RouteStop, error)
	ShipmentsForStops(ctx context.Context, stopIDs []string) ([]models.StopShipment, error)
	UpdateRouteFields(ctx context.Context, id string, changes models.RouteChanges, now time.Time) error
	DeleteRoute(ctx context.Context, id string) error
}

// Notifier is told about dispatch changes after they are stored
type Notifier interface {
	RouteChanged(ctx context.Context, event RouteEvent) error
}

type RouteEventType string

const (
	RouteEventStatusChanged   RouteEventType = "route_status_changed"
	RouteEventDriverAssigned  RouteEventType = "route_driver_assigned"
	RouteEventVehicleAssigned RouteEventType = "route_vehicle_assigned"
)

// RouteEvent describes a stored change to a route
type RouteEvent struct {
	Type         RouteEventType `json:"type"`
	Route        models.Route   `json:"route"`
	StopCount    int            `json:"stopCount"`
	DriverUserID string         `json:"-"` // Recipient for driver-facing notifications, empty if unassigned
	OccurredAt   time.Time      `json:"occurredAt"`
}

// RouteService implements route creation, lookup, lifecycle and assignment rules
type RouteService struct {
	store    RouteStore
	notifier Notifier
	log      logrus.FieldLogger
	now      func() time.Time
}

type Option func(*RouteService)

func WithNotifier(n Notifier) Option {
	return func(s *RouteService) { s.notifier = n }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *RouteService) { s.log = l }
}

// WithClock overrides time.Now, used for route numbering and lifecycle timestamps
func WithClock(now func() time.Time) Option {
	return func(s *RouteService) { s.now = now }
}

func NewRouteService(store RouteStore, opts ...Option) *RouteService {
	s := &RouteService{
		store: store,
		log:   logrus.StandardLogger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates references, numbers the route if needed and stores it with its stops
func (s *RouteService) Create(ctx context.Context, req models.CreateRouteRequest) (*models.RouteDetail, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	now := s.now().UTC()

	routeNumber := strings.TrimSpace(req.RouteNumber)
	if routeNumber == "" {
		generated, err := s.nextRouteNumber(ctx, now)
		if err != nil {
			return nil, err
		}
		routeNumber = generated
	}

	exists, err := s.store.RouteNumberExists(ctx, routeNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, Conflict("route number %s already exists", routeNumber)
	}

	route := &models.Route{
		ID:               uuid.New().String(),
		RouteNumber:      routeNumber,
		Status:           models.RouteStatusPlanned,
		TotalDistance:    req.TotalDistance,
		TotalDuration:    req.TotalDuration,
		DistanceUnit:     req.DistanceUnit,
		PlannedStartTime: req.PlannedStartTime,
		PlannedEndTime:   req.PlannedEndTime,
		TotalWeight:      req.TotalWeight,
		TotalVolume:      req.TotalVolume,
		TotalPackages:    req.TotalPackages,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if route.DistanceUnit == "" {
		route.DistanceUnit = models.DefaultDistanceUnit
	}
	if req.VehicleType != "" {
		vehicleType := req.VehicleType
		route.VehicleType = &vehicleType
	}

	if req.VehicleID != nil {
		vehicle, err := s.vehicle(ctx, *req.VehicleID)
		if err != nil {
			return nil, err
		}
		if err := checkCapacity(vehicle, route.TotalWeight, route.TotalVolume); err != nil {
			return nil, err
		}
		route.VehicleID = &vehicle.ID
		if route.VehicleType == nil {
			route.VehicleType = &vehicle.VehicleType
		}
	}

	if req.DriverID != nil {
		driver, err := s.driver(ctx, *req.DriverID)
		if err != nil {
			return nil, err
		}
		name := driver.FullName()
		route.DriverID = &driver.ID
		route.DriverName = &name
	}

	stops := make([]models.NewRouteStop, len(req.Stops))
	for i, in := range req.Stops {
		stops[i] = models.NewRouteStop{
			RouteStop: models.RouteStop{
				ID:                   uuid.New().String(),
				RouteID:              route.ID,
				SequenceNumber:       in.SequenceNumber,
				StopType:             in.StopType,
				Status:               models.StopStatusPending,
				Address:              in.Address,
				City:                 in.City,
				State:                in.State,
				PostalCode:           in.PostalCode,
				Country:              in.Country,
				Latitude:             in.Latitude,
				Longitude:            in.Longitude,
				PlannedArrivalTime:   in.PlannedArrivalTime,
				PlannedDepartureTime: in.PlannedDepartureTime,
				ServiceTime:          in.ServiceTime,
				ContactName:          in.ContactName,
				ContactPhone:         in.ContactPhone,
				Notes:                in.Notes,
				CreatedAt:            now,
				UpdatedAt:            now,
			},
			ShipmentIDs: in.ShipmentIDs,
		}
	}

	if err := s.store.CreateRouteWithStops(ctx, route, stops); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			return nil, Conflict("route number %s already exists", routeNumber)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"route_id":     route.ID,
		"route_number": route.RouteNumber,
		"stops":        len(stops),
	}).Info("route created")

	return s.Get(ctx, route.ID)
}

func validateCreate(req models.CreateRouteRequest) error {
	if req.PlannedStartTime == nil {
		return BadRequest("plannedStartTime is required")
	}
	if req.TotalWeight < 0 || req.TotalVolume < 0 || req.TotalDistance < 0 {
		return BadRequest("totals must not be negative")
	}
	for i, stop := range req.Stops {
		if stop.SequenceNumber < 1 {
			return BadRequest("stops[%d]: sequenceNumber must be at least 1", i)
		}
		if !stop.StopType.Valid() {
			return BadRequest("stops[%d]: invalid stopType %q", i, stop.StopType)
		}
		if strings.TrimSpace(stop.Address) == "" {
			return BadRequest("stops[%d]: address is required", i)
		}
		if stop.ServiceTime < 0 {
			return BadRequest("stops[%d]: serviceTime must not be negative", i)
		}
	}
	return nil
}

// nextRouteNumber is RTE-<today>-<routes created today + 1>
func (s *RouteService) nextRouteNumber(ctx context.Context, now time.Time) (string, error) {
	from, to := dayBounds(now)
	count, err := s.store.CountRoutesCreatedBetween(ctx, from, to)
	if err != nil {
		return "", err
	}
	return FormatRouteNumber(from, count+1), nil
}

// ListRoutesQuery holds the list filters as received, before paging defaults
type ListRoutesQuery struct {
	Page      int
	PageSize  int
	Status    string
	DriverID  string
	VehicleID string
	StartFrom *time.Time
	StartTo   *time.Time
}

// List returns one page of routes, newest planned start first
func (s *RouteService) List(ctx context.Context, q ListRoutesQuery) (*models.RouteListResult, error) {
	page := q.Page
	if page < 1 {
		page = DefaultPage
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	filter := models.RouteFilter{
		StartFrom: q.StartFrom,
		StartTo:   q.StartTo,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	}
	if q.Status != "" {
		status, ok := models.ParseRouteStatus(q.Status)
		if !ok {
			return nil, BadRequest("invalid status %q", q.Status)
		}
		filter.Status = &status
	}
	if q.DriverID != "" {
		filter.DriverID = &q.DriverID
	}
	if q.VehicleID != "" {
		filter.VehicleID = &q.VehicleID
	}

	routes, total, err := s.store.ListRoutes(ctx, filter)
	if err != nil {
		return nil, err
	}
	if routes == nil {
		routes = []models.RouteSummary{}
	}

	return &models.RouteListResult{
		Data:       routes,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Get returns the route with vehicle, driver and stops (with shipments) nested
func (s *RouteService) Get(ctx context.Context, id string) (*models.RouteDetail, error) {
	route, err := s.route(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.RouteDetail{Route: *route}

	// References are validated on write only; a vanished vehicle or driver reads as nil
	if route.VehicleID != nil {
		vehicle, err := s.store.VehicleByID(ctx, *route.VehicleID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		detail.Vehicle = vehicle
	}
	if route.DriverID != nil {
		driver, err := s.store.DriverByID(ctx, *route.DriverID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		detail.Driver = driver
	}

	stops, err := s.stopsWithLoad(ctx, route.ID)
	if err != nil {
		return nil, err
	}
	detail.Stops = stops
	return detail, nil
}

// Update applies a partial change to route-level fields; stops are not touched
func (s *RouteService) Update(ctx context.Context, id string, req models.UpdateRouteRequest) (*models.RouteDetail, error) {
	current, err := s.route(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := models.RouteChanges{
		VehicleType:   req.VehicleType,
		TotalDistance: req.TotalDistance,
		TotalDuration: req.TotalDuration,
		DistanceUnit:  req.DistanceUnit,
		TotalWeight:   req.TotalWeight,
		TotalVolume:   req.TotalVolume,
		TotalPackages: req.TotalPackages,
	}

	weight, volume := current.TotalWeight, current.TotalVolume
	if req.TotalWeight != nil {
		weight = *req.TotalWeight
	}
	if req.TotalVolume != nil {
		volume = *req.TotalVolume
	}

	switch {
	case req.VehicleID != nil:
		vehicle, err := s.vehicle(ctx, *req.VehicleID)
		if err != nil {
			return nil, err
		}
		if err := checkCapacity(vehicle, weight, volume); err != nil {
			return nil, err
		}
		changes.VehicleID = &vehicle.ID
	case current.VehicleID != nil && (req.TotalWeight != nil || req.TotalVolume != nil):
		// A load change must still fit the vehicle already on the route
		vehicle, err := s.vehicle(ctx, *current.VehicleID)
		if err != nil && !IsKind(err, KindNotFound) {
			return nil, err
		}
		if vehicle != nil {
			if err := checkCapacity(vehicle, weight, volume); err != nil {
				return nil, err
			}
		}
	}

	if req.DriverID != nil {
		driver, err := s.driver(ctx, *req.DriverID)
		if err != nil {
			return nil, err
		}
		name := driver.FullName()
		changes.DriverID = &driver.ID
		changes.DriverName = &name
	}

	if req.PlannedStartTime != nil {
		t, _, err := ParseInstant(*req.PlannedStartTime)
		if err != nil {
			return nil, BadRequest("invalid plannedStartTime %q", *req.PlannedStartTime)
		}
		changes.PlannedStartTime = &t
	}
	if req.PlannedEndTime != nil {
		t, _, err := ParseInstant(*req.PlannedEndTime)
		if err != nil {
			return nil, BadRequest("invalid plannedEndTime %q", *req.PlannedEndTime)
		}
		changes.PlannedEndTime = &t
	}

	if err := s.updateFields(ctx, id, changes); err != nil {
		return nil, err
	}

	s.log.WithField("route_id", id).Info("route updated")
	return s.Get(ctx, id)
}

// UpdateStatus moves the route to any status in the enum. Entering IN_PROGRESS or
// COMPLETED stamps the matching actual time once.
func (s *RouteService) UpdateStatus(ctx context.Context, id string, status string) (*models.RouteDetail, error) {
	target, ok := models.ParseRouteStatus(status)
	if !ok {
		return nil, BadRequest("invalid status %q", status)
	}

	route, err := s.route(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	changes := models.RouteChanges{Status: &target}
	switch target {
	case models.RouteStatusInProgress:
		if route.ActualStartTime == nil {
			changes.ActualStartTime = &now
		}
	case models.RouteStatusCompleted:
		if route.ActualEndTime == nil {
			changes.ActualEndTime = &now
		}
	}

	if err := s.updateFields(ctx, id, changes); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"route_id": id,
		"from":     route.Status,
		"to":       target,
	}).Info("route status changed")

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, RouteEventStatusChanged, detail, driverUserID(detail))
	return detail, nil
}

// AssignDriver sets the driver, snapshots the driver's name and forces ASSIGNED
// whatever the current status is.
func (s *RouteService) AssignDriver(ctx context.Context, id string, driverID string) (*models.RouteDetail, error) {
	if _, err := s.route(ctx, id); err != nil {
		return nil, err
	}
	driver, err := s.driver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	name := driver.FullName()
	assigned := models.RouteStatusAssigned
	changes := models.RouteChanges{
		DriverID:   &driver.ID,
		DriverName: &name,
		Status:     &assigned,
	}
	if err := s.updateFields(ctx, id, changes); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"route_id":  id,
		"driver_id": driver.ID,
	}).Info("driver assigned to route")

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, RouteEventDriverAssigned, detail, driver.UserID)
	return detail, nil
}

// AssignVehicle sets the vehicle when its rated capacity covers the route's declared load
func (s *RouteService) AssignVehicle(ctx context.Context, id string, vehicleID string) (*models.RouteDetail, error) {
	route, err := s.route(ctx, id)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.vehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if err := checkCapacity(vehicle, route.TotalWeight, route.TotalVolume); err != nil {
		return nil, err
	}

	changes := models.RouteChanges{
		VehicleID:   &vehicle.ID,
		VehicleType: &vehicle.VehicleType,
	}
	if err := s.updateFields(ctx, id, changes); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"route_id":   id,
		"vehicle_id": vehicle.ID,
	}).Info("vehicle assigned to route")

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, RouteEventVehicleAssigned, detail, driverUserID(detail))
	return detail, nil
}

// ListStops returns the route's stops in sequence order with their shipments
func (s *RouteService) ListStops(ctx context.Context, id string) (*models.RouteStopsResult, error) {
	route, err := s.route(ctx, id)
	if err != nil {
		return nil, err
	}

	stops, err := s.stopsWithLoad(ctx, route.ID)
	if err != nil {
		return nil, err
	}

	return &models.RouteStopsResult{
		RouteID: route.ID,
		Stops:   stops,
		Count:   len(stops),
	}, nil
}

// Delete removes the route and, through the store, its stops
func (s *RouteService) Delete(ctx context.Context, id string) error {
	if _, err := s.route(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteRoute(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return NotFound("route %s not found", id)
		}
		return err
	}

	s.log.WithField("route_id", id).Info("route deleted")
	return nil
}

func checkCapacity(vehicle *models.Vehicle, weight, volume float64) error {
	if vehicle.CanCarry(weight, volume) {
		return nil
	}
	return BadRequest("vehicle capacity (weight %.2f, volume %.2f) is below route load (weight %.2f, volume %.2f)",
		vehicle.MaxWeight, vehicle.MaxVolume, weight, volume)
}

func (s *RouteService) route(ctx context.Context, id string) (*models.Route, error) {
	route, err := s.store.RouteByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFound("route %s not found", id)
	}
	return route, err
}

func (s *RouteService) vehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	vehicle, err := s.store.VehicleByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFound("vehicle %s not found", id)
	}
	return vehicle, err
}

func (s *RouteService) driver(ctx context.Context, id string) (*models.DriverDetail, error) {
	driver, err := s.store.DriverByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFound("driver %s not found", id)
	}
	return driver, err
}

func (s *RouteService) updateFields(ctx context.Context, id string, changes models.RouteChanges) error {
	err := s.store.UpdateRouteFields(ctx, id, changes, s.now().UTC())
	if errors.Is(err, database.ErrNotFound) {
		return NotFound("route %s not found", id)
	}
	return err
}

func (s *RouteService) stopsWithLoad(ctx context.Context, routeID string) ([]models.StopWithLoad, error) {
	stops, err := s.store.StopsForRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	// Stores order by sequence already; keep the guarantee independent of the backend
	sortStops(stops)

	ids := make([]string, len(stops))
	for i, stop := range stops {
		ids[i] = stop.ID
	}
	links, err := s.store.ShipmentsForStops(ctx, ids)
	if err != nil {
		return nil, err
	}

	byStop := make(map[string][]models.ShipmentSummary, len(stops))
	for _, link := range links {
		byStop[link.StopID] = append(byStop[link.StopID], link.ShipmentSummary)
	}

	result := make([]models.StopWithLoad, len(stops))
	for i, stop := range stops {
		shipments := byStop[stop.ID]
		if shipments == nil {
			shipments = []models.ShipmentSummary{}
		}
		result[i] = models.StopWithLoad{RouteStop: stop, Shipments: shipments}
	}
	return result, nil
}

func driverUserID(detail *models.RouteDetail) string {
	if detail.Driver != nil {
		return detail.Driver.UserID
	}
	return ""
}

func (s *RouteService) notify(ctx context.Context, eventType RouteEventType, detail *models.RouteDetail, driverUserID string) {
	if s.notifier == nil {
		return
	}
	event := RouteEvent{
		Type:         eventType,
		Route:        detail.Route,
		StopCount:    len(detail.Stops),
		DriverUserID: driverUserID,
		OccurredAt:   s.now().UTC(),
	}
	if err := s.notifier.RouteChanged(ctx, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"route_id": detail.ID,
			"event":    eventType,
		}).Warn("route notification failed")
	}
}

func sortStops(stops []models.RouteStop) {
	sort.SliceStable(stops, func(i, j int) bool {
		return stops[i].SequenceNumber < stops[j].SequenceNumber
	})
}

// ParseInstant accepts RFC3339 timestamps or YYYY-MM-DD dates (midnight UTC).
// dateOnly reports which form matched.
func ParseInstant(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), false, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("parse instant %q: expected RFC3339 or YYYY-MM-DD", s)
}
