package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tms-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

const routeColumns = `r.id, r.route_number, r.status, r.vehicle_id, r.vehicle_type,
	r.driver_id, r.driver_name, r.total_distance, r.total_duration, r.distance_unit,
	r.planned_start_time, r.planned_end_time, r.actual_start_time, r.actual_end_time,
	r.total_weight, r.total_volume, r.total_packages, r.is_optimized, r.optimized_at,
	r.optimization_score, r.created_at, r.updated_at`

const stopColumns = `id, route_id, sequence_number, stop_type, status, address, city,
	state, postal_code, country, latitude, longitude, planned_arrival_time,
	planned_departure_time, service_time, contact_name, contact_phone, notes,
	created_at, updated_at`

// RouteRepository is the sqlx-backed store for routes and their stops
type RouteRepository struct {
	db *sqlx.DB
}

func NewRouteRepository(db *sqlx.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// placeholders collects positional args and hands out $n markers
type placeholders struct {
	args []interface{}
}

func (p *placeholders) bind(v interface{}) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}

// RouteNumberExists reports whether a route with this number is already stored
func (r *RouteRepository) RouteNumberExists(ctx context.Context, routeNumber string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM routes WHERE route_number = $1)`, routeNumber)
	if err != nil {
		return false, fmt.Errorf("check route number: %w", err)
	}
	return exists, nil
}

// CountRoutesCreatedBetween counts routes with from <= created_at < to
func (r *RouteRepository) CountRoutesCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM routes WHERE created_at >= $1 AND created_at < $2`, from, to)
	if err != nil {
		return 0, fmt.Errorf("count routes created: %w", err)
	}
	return count, nil
}

// VehicleByID returns ErrNotFound when the vehicle does not exist
func (r *RouteRepository) VehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.GetContext(ctx, &vehicle, `
		SELECT id, carrier_id, plate_number, vehicle_type, make, model,
		       max_weight, max_volume, status, created_at, updated_at
		FROM vehicles
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get vehicle %s: %w", id, translateError(err))
	}
	return &vehicle, nil
}

// DriverByID returns the driver joined with its user; ErrNotFound when missing
func (r *RouteRepository) DriverByID(ctx context.Context, id string) (*models.DriverDetail, error) {
	var driver models.DriverDetail
	err := r.db.GetContext(ctx, &driver, `
		SELECT d.id, d.user_id, d.license_number, d.phone, d.status,
		       d.created_at, d.updated_at, u.first_name, u.last_name, u.email
		FROM drivers d
		INNER JOIN users u ON u.id = d.user_id
		WHERE d.id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get driver %s: %w", id, translateError(err))
	}
	return &driver, nil
}

// CreateRouteWithStops inserts the route, its stops and their shipment links in one transaction.
// Shipment IDs that do not match a stored shipment are skipped.
func (r *RouteRepository) CreateRouteWithStops(ctx context.Context, route *models.Route, stops []models.NewRouteStop) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create route: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO routes (
			id, route_number, status, vehicle_id, vehicle_type, driver_id, driver_name,
			total_distance, total_duration, distance_unit, planned_start_time, planned_end_time,
			actual_start_time, actual_end_time, total_weight, total_volume, total_packages,
			is_optimized, optimized_at, optimization_score, created_at, updated_at
		) VALUES (
			:id, :route_number, :status, :vehicle_id, :vehicle_type, :driver_id, :driver_name,
			:total_distance, :total_duration, :distance_unit, :planned_start_time, :planned_end_time,
			:actual_start_time, :actual_end_time, :total_weight, :total_volume, :total_packages,
			:is_optimized, :optimized_at, :optimization_score, :created_at, :updated_at
		)
	`, route)
	if err != nil {
		return fmt.Errorf("insert route: %w", translateError(err))
	}

	for _, stop := range stops {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO route_stops (
				id, route_id, sequence_number, stop_type, status, address, city, state,
				postal_code, country, latitude, longitude, planned_arrival_time,
				planned_departure_time, service_time, contact_name, contact_phone, notes,
				created_at, updated_at
			) VALUES (
				:id, :route_id, :sequence_number, :stop_type, :status, :address, :city, :state,
				:postal_code, :country, :latitude, :longitude, :planned_arrival_time,
				:planned_departure_time, :service_time, :contact_name, :contact_phone, :notes,
				:created_at, :updated_at
			)
		`, stop.RouteStop)
		if err != nil {
			return fmt.Errorf("insert stop %d: %w", stop.SequenceNumber, translateError(err))
		}

		if err := linkShipments(ctx, tx, stop.ID, stop.ShipmentIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create route: %w", err)
	}
	return nil
}

func linkShipments(ctx context.Context, tx *sqlx.Tx, stopID string, shipmentIDs []string) error {
	if len(shipmentIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`SELECT id FROM shipments WHERE id IN (?)`, shipmentIDs)
	if err != nil {
		return fmt.Errorf("build shipment lookup: %w", err)
	}
	var existing []string
	if err := tx.SelectContext(ctx, &existing, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("resolve shipments for stop %s: %w", stopID, err)
	}

	for _, shipmentID := range existing {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO route_stop_shipments (stop_id, shipment_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, stopID, shipmentID)
		if err != nil {
			return fmt.Errorf("link shipment %s to stop %s: %w", shipmentID, stopID, err)
		}
	}
	return nil
}

// routeListRow is a route joined with the display columns of its vehicle and driver
type routeListRow struct {
	models.Route
	VehiclePlateNumber sql.NullString `db:"vehicle_plate_number"`
	VehicleKind        sql.NullString `db:"vehicle_kind"`
	DriverFirstName    sql.NullString `db:"driver_first_name"`
	DriverLastName     sql.NullString `db:"driver_last_name"`
	DriverPhone        sql.NullString `db:"driver_phone"`
	StopCount          int            `db:"stop_count"`
}

func (row routeListRow) summary() models.RouteSummary {
	s := models.RouteSummary{Route: row.Route, StopCount: row.StopCount}
	if row.VehicleID != nil && row.VehiclePlateNumber.Valid {
		s.Vehicle = &models.VehicleSummary{
			ID:          *row.VehicleID,
			PlateNumber: row.VehiclePlateNumber.String,
			VehicleType: row.VehicleKind.String,
		}
	}
	if row.DriverID != nil && row.DriverFirstName.Valid {
		s.Driver = &models.DriverSummary{
			ID:        *row.DriverID,
			FirstName: row.DriverFirstName.String,
			LastName:  row.DriverLastName.String,
		}
		if row.DriverPhone.Valid {
			phone := row.DriverPhone.String
			s.Driver.Phone = &phone
		}
	}
	return s
}

// ListRoutes returns one page of routes matching the filter plus the total match count
func (r *RouteRepository) ListRoutes(ctx context.Context, f models.RouteFilter) ([]models.RouteSummary, int, error) {
	var p placeholders
	conditions := []string{}

	if f.Status != nil {
		conditions = append(conditions, "r.status = "+p.bind(string(*f.Status)))
	}
	if f.DriverID != nil {
		conditions = append(conditions, "r.driver_id = "+p.bind(*f.DriverID))
	}
	if f.VehicleID != nil {
		conditions = append(conditions, "r.vehicle_id = "+p.bind(*f.VehicleID))
	}
	if f.StartFrom != nil {
		conditions = append(conditions, "r.planned_start_time >= "+p.bind(*f.StartFrom))
	}
	if f.StartTo != nil {
		conditions = append(conditions, "r.planned_start_time <= "+p.bind(*f.StartTo))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM routes r "+where, p.args...); err != nil {
		return nil, 0, fmt.Errorf("count routes: %w", err)
	}

	limit := p.bind(f.Limit)
	offset := p.bind(f.Offset)
	query := `
		SELECT ` + routeColumns + `,
		       v.plate_number AS vehicle_plate_number,
		       v.vehicle_type AS vehicle_kind,
		       u.first_name AS driver_first_name,
		       u.last_name AS driver_last_name,
		       d.phone AS driver_phone,
		       (SELECT COUNT(*) FROM route_stops s WHERE s.route_id = r.id) AS stop_count
		FROM routes r
		LEFT JOIN vehicles v ON v.id = r.vehicle_id
		LEFT JOIN drivers d ON d.id = r.driver_id
		LEFT JOIN users u ON u.id = d.user_id
		` + where + `
		ORDER BY r.planned_start_time DESC NULLS LAST, r.created_at DESC
		LIMIT ` + limit + ` OFFSET ` + offset

	var rows []routeListRow
	if err := r.db.SelectContext(ctx, &rows, query, p.args...); err != nil {
		return nil, 0, fmt.Errorf("list routes: %w", err)
	}

	summaries := make([]models.RouteSummary, len(rows))
	for i, row := range rows {
		summaries[i] = row.summary()
	}
	return summaries, total, nil
}

// RouteByID returns ErrNotFound when the route does not exist
func (r *RouteRepository) RouteByID(ctx context.Context, id string) (*models.Route, error) {
	var route models.Route
	err := r.db.GetContext(ctx, &route, `SELECT `+routeColumns+` FROM routes r WHERE r.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get route %s: %w", id, translateError(err))
	}
	return &route, nil
}

// StopsForRoute returns the route's stops by ascending sequence number
func (r *RouteRepository) StopsForRoute(ctx context.Context, routeID string) ([]models.RouteStop, error) {
	stops := []models.RouteStop{}
	err := r.db.SelectContext(ctx, &stops, `
		SELECT `+stopColumns+`
		FROM route_stops
		WHERE route_id = $1
		ORDER BY sequence_number ASC, created_at ASC
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("list stops for route %s: %w", routeID, err)
	}
	return stops, nil
}

// ShipmentsForStops returns the shipments linked to any of the given stops
func (r *RouteRepository) ShipmentsForStops(ctx context.Context, stopIDs []string) ([]models.StopShipment, error) {
	if len(stopIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT rss.stop_id, s.id, s.tracking_number, s.status, s.weight, s.volume,
		       s.weight_unit, s.volume_unit
		FROM route_stop_shipments rss
		INNER JOIN shipments s ON s.id = rss.shipment_id
		WHERE rss.stop_id IN (?)
		ORDER BY s.tracking_number ASC
	`, stopIDs)
	if err != nil {
		return nil, fmt.Errorf("build stop shipments query: %w", err)
	}

	var rows []models.StopShipment
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list stop shipments: %w", err)
	}
	return rows, nil
}

// UpdateRouteFields writes the non-nil fields of c and bumps updated_at.
// Returns ErrNotFound when no route has this id.
func (r *RouteRepository) UpdateRouteFields(ctx context.Context, id string, c models.RouteChanges, now time.Time) error {
	var p placeholders
	sets := []string{}
	set := func(column string, v interface{}) {
		sets = append(sets, column+" = "+p.bind(v))
	}

	if c.Status != nil {
		set("status", string(*c.Status))
	}
	if c.VehicleID != nil {
		set("vehicle_id", *c.VehicleID)
	}
	if c.VehicleType != nil {
		set("vehicle_type", *c.VehicleType)
	}
	if c.DriverID != nil {
		set("driver_id", *c.DriverID)
	}
	if c.DriverName != nil {
		set("driver_name", *c.DriverName)
	}
	if c.TotalDistance != nil {
		set("total_distance", *c.TotalDistance)
	}
	if c.TotalDuration != nil {
		set("total_duration", *c.TotalDuration)
	}
	if c.DistanceUnit != nil {
		set("distance_unit", *c.DistanceUnit)
	}
	if c.PlannedStartTime != nil {
		set("planned_start_time", *c.PlannedStartTime)
	}
	if c.PlannedEndTime != nil {
		set("planned_end_time", *c.PlannedEndTime)
	}
	if c.ActualStartTime != nil {
		set("actual_start_time", *c.ActualStartTime)
	}
	if c.ActualEndTime != nil {
		set("actual_end_time", *c.ActualEndTime)
	}
	if c.TotalWeight != nil {
		set("total_weight", *c.TotalWeight)
	}
	if c.TotalVolume != nil {
		set("total_volume", *c.TotalVolume)
	}
	if c.TotalPackages != nil {
		set("total_packages", *c.TotalPackages)
	}

	// Always update updated_at
	set("updated_at", now)

	query := "UPDATE routes SET " + strings.Join(sets, ", ") + " WHERE id = " + p.bind(id)
	result, err := r.db.ExecContext(ctx, query, p.args...)
	if err != nil {
		return fmt.Errorf("update route %s: %w", id, translateError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update route %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("update route %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteRoute removes the route; its stops go with it through ON DELETE CASCADE
func (r *RouteRepository) DeleteRoute(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM routes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete route %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete route %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("delete route %s: %w", id, ErrNotFound)
	}
	return nil
}
