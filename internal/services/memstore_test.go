package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tms-backend/internal/database"
	"tms-backend/internal/models"
)

// memStore is an in-memory RouteStore with the same contract as the sqlx repository
type memStore struct {
	mu        sync.Mutex
	routes    map[string]models.Route
	stops     map[string][]models.RouteStop // by route id, insertion order
	links     map[string][]string           // stop id -> shipment ids
	shipments map[string]models.ShipmentSummary
	vehicles  map[string]models.Vehicle
	drivers   map[string]models.DriverDetail

	createErr error
	creates   int
}

func newMemStore() *memStore {
	return &memStore{
		routes:    map[string]models.Route{},
		stops:     map[string][]models.RouteStop{},
		links:     map[string][]string{},
		shipments: map[string]models.ShipmentSummary{},
		vehicles:  map[string]models.Vehicle{},
		drivers:   map[string]models.DriverDetail{},
	}
}

func (m *memStore) RouteNumberExists(_ context.Context, routeNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, route := range m.routes {
		if route.RouteNumber == routeNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CountRoutesCreatedBetween(_ context.Context, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, route := range m.routes {
		if !route.CreatedAt.Before(from) && route.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) VehicleByID(_ context.Context, id string) (*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("get vehicle %s: %w", id, database.ErrNotFound)
	}
	return &vehicle, nil
}

func (m *memStore) DriverByID(_ context.Context, id string) (*models.DriverDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, fmt.Errorf("get driver %s: %w", id, database.ErrNotFound)
	}
	return &driver, nil
}

func (m *memStore) CreateRouteWithStops(_ context.Context, route *models.Route, stops []models.NewRouteStop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.routes {
		if existing.RouteNumber == route.RouteNumber {
			return fmt.Errorf("insert route: %w", database.ErrDuplicateKey)
		}
	}

	m.routes[route.ID] = *route
	for _, stop := range stops {
		m.stops[route.ID] = append(m.stops[route.ID], stop.RouteStop)
		for _, shipmentID := range stop.ShipmentIDs {
			if _, ok := m.shipments[shipmentID]; ok {
				m.links[stop.ID] = append(m.links[stop.ID], shipmentID)
			}
		}
	}
	return nil
}

func (m *memStore) ListRoutes(_ context.Context, f models.RouteFilter) ([]models.RouteSummary, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []models.Route
	for _, route := range m.routes {
		if f.Status != nil && route.Status != *f.Status {
			continue
		}
		if f.DriverID != nil && (route.DriverID == nil || *route.DriverID != *f.DriverID) {
			continue
		}
		if f.VehicleID != nil && (route.VehicleID == nil || *route.VehicleID != *f.VehicleID) {
			continue
		}
		if f.StartFrom != nil && (route.PlannedStartTime == nil || route.PlannedStartTime.Before(*f.StartFrom)) {
			continue
		}
		if f.StartTo != nil && (route.PlannedStartTime == nil || route.PlannedStartTime.After(*f.StartTo)) {
			continue
		}
		matched = append(matched, route)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].PlannedStartTime, matched[j].PlannedStartTime
		switch {
		case a == nil && b == nil:
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := min(f.Offset, total)
	end := min(start+f.Limit, total)

	summaries := make([]models.RouteSummary, 0, end-start)
	for _, route := range matched[start:end] {
		summaries = append(summaries, models.RouteSummary{
			Route:     route,
			StopCount: len(m.stops[route.ID]),
		})
	}
	return summaries, total, nil
}

func (m *memStore) RouteByID(_ context.Context, id string) (*models.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	route, ok := m.routes[id]
	if !ok {
		return nil, fmt.Errorf("get route %s: %w", id, database.ErrNotFound)
	}
	return &route, nil
}

func (m *memStore) StopsForRoute(_ context.Context, routeID string) ([]models.RouteStop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stops := make([]models.RouteStop, len(m.stops[routeID]))
	copy(stops, m.stops[routeID])
	return stops, nil
}

func (m *memStore) ShipmentsForStops(_ context.Context, stopIDs []string) ([]models.StopShipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StopShipment
	for _, stopID := range stopIDs {
		for _, shipmentID := range m.links[stopID] {
			out = append(out, models.StopShipment{StopID: stopID, ShipmentSummary: m.shipments[shipmentID]})
		}
	}
	return out, nil
}

func (m *memStore) UpdateRouteFields(_ context.Context, id string, c models.RouteChanges, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	route, ok := m.routes[id]
	if !ok {
		return fmt.Errorf("update route %s: %w", id, database.ErrNotFound)
	}

	if c.Status != nil {
		route.Status = *c.Status
	}
	if c.VehicleID != nil {
		route.VehicleID = c.VehicleID
	}
	if c.VehicleType != nil {
		route.VehicleType = c.VehicleType
	}
	if c.DriverID != nil {
		route.DriverID = c.DriverID
	}
	if c.DriverName != nil {
		route.DriverName = c.DriverName
	}
	if c.TotalDistance != nil {
		route.TotalDistance = *c.TotalDistance
	}
	if c.TotalDuration != nil {
		route.TotalDuration = *c.TotalDuration
	}
	if c.DistanceUnit != nil {
		route.DistanceUnit = *c.DistanceUnit
	}
	if c.PlannedStartTime != nil {
		route.PlannedStartTime = c.PlannedStartTime
	}
	if c.PlannedEndTime != nil {
		route.PlannedEndTime = c.PlannedEndTime
	}
	if c.ActualStartTime != nil {
		route.ActualStartTime = c.ActualStartTime
	}
	if c.ActualEndTime != nil {
		route.ActualEndTime = c.ActualEndTime
	}
	if c.TotalWeight != nil {
		route.TotalWeight = *c.TotalWeight
	}
	if c.TotalVolume != nil {
		route.TotalVolume = *c.TotalVolume
	}
	if c.TotalPackages != nil {
		route.TotalPackages = *c.TotalPackages
	}
	route.UpdatedAt = now

	m.routes[id] = route
	return nil
}

func (m *memStore) DeleteRoute(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[id]; !ok {
		return fmt.Errorf("delete route %s: %w", id, database.ErrNotFound)
	}
	for _, stop := range m.stops[id] {
		delete(m.links, stop.ID)
	}
	delete(m.stops, id)
	delete(m.routes, id)
	return nil
}

func (m *memStore) routeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.routes)
}

func (m *memStore) stopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, stops := range m.stops {
		n += len(stops)
	}
	return n
}
