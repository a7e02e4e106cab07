package database

import (
	"context"
	"fmt"

	"tms-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// ListVehicles returns all vehicles ordered by plate number
func ListVehicles(ctx context.Context, db *sqlx.DB) ([]models.Vehicle, error) {
	vehicles := []models.Vehicle{}
	err := db.SelectContext(ctx, &vehicles, `
		SELECT id, carrier_id, plate_number, vehicle_type, make, model,
		       max_weight, max_volume, status, created_at, updated_at
		FROM vehicles
		ORDER BY plate_number ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return vehicles, nil
}

// ListDrivers returns all drivers with their account names
func ListDrivers(ctx context.Context, db *sqlx.DB) ([]models.DriverDetail, error) {
	drivers := []models.DriverDetail{}
	err := db.SelectContext(ctx, &drivers, `
		SELECT d.id, d.user_id, d.license_number, d.phone, d.status,
		       d.created_at, d.updated_at, u.first_name, u.last_name, u.email
		FROM drivers d
		INNER JOIN users u ON u.id = d.user_id
		ORDER BY u.last_name ASC, u.first_name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	return drivers, nil
}
