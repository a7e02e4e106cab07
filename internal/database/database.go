package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when an insert or update hits a unique constraint
	ErrDuplicateKey = errors.New("duplicate key violation")
)

// PostgreSQL error code for unique_violation
const uniqueViolation = "23505"

// translateError maps driver errors onto the package sentinels
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, pqErr.Constraint)
	}
	return err
}

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🔌 DATABASE CONNECTION ATTEMPT")
	log.Printf("   📍 Database URL length: %d characters", len(dbURL))
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	db, err := sqlx.Open("postgres", dbURL)
	if err != nil {
		log.Printf("❌ DATABASE CONNECTION FAILED AT sqlx.Open(): %v", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Printf("❌ DATABASE CONNECTION FAILED AT Ping(): %T %v", err, err)
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ DATABASE CONNECTION SUCCESSFUL")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Accounts
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL CHECK(role IN ('admin', 'dispatcher', 'driver')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Fleet
		`CREATE TABLE IF NOT EXISTS companies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS carriers (
			id TEXT PRIMARY KEY,
			company_id TEXT,
			name TEXT NOT NULL,
			code TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE SET NULL
		)`,

		`CREATE TABLE IF NOT EXISTS vehicles (
			id TEXT PRIMARY KEY,
			carrier_id TEXT,
			plate_number TEXT NOT NULL UNIQUE,
			vehicle_type TEXT NOT NULL,
			make TEXT,
			model TEXT,
			max_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
			max_volume DOUBLE PRECISION NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'AVAILABLE' CHECK(status IN ('AVAILABLE', 'IN_USE', 'MAINTENANCE', 'RETIRED')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			FOREIGN KEY (carrier_id) REFERENCES carriers(id) ON DELETE SET NULL,
			CHECK (max_weight >= 0),
			CHECK (max_volume >= 0)
		)`,

		`CREATE TABLE IF NOT EXISTS drivers (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			license_number TEXT NOT NULL,
			phone TEXT,
			status TEXT NOT NULL DEFAULT 'ACTIVE' CHECK(status IN ('ACTIVE', 'OFF_DUTY', 'INACTIVE')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS shipments (
			id TEXT PRIMARY KEY,
			tracking_number TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'PENDING',
			origin_city TEXT NOT NULL DEFAULT '',
			destination_city TEXT NOT NULL DEFAULT '',
			weight DOUBLE PRECISION NOT NULL DEFAULT 0,
			volume DOUBLE PRECISION NOT NULL DEFAULT 0,
			weight_unit TEXT NOT NULL DEFAULT 'kg',
			volume_unit TEXT NOT NULL DEFAULT 'm3',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// Dispatch
		`CREATE TABLE IF NOT EXISTS routes (
			id TEXT PRIMARY KEY,
			route_number TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'PLANNED' CHECK(status IN ('PLANNED', 'ASSIGNED', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED')),
			vehicle_id TEXT,
			vehicle_type TEXT,
			driver_id TEXT,
			driver_name TEXT,
			total_distance DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_duration INT NOT NULL DEFAULT 0,
			distance_unit TEXT NOT NULL DEFAULT 'km',
			planned_start_time TIMESTAMPTZ,
			planned_end_time TIMESTAMPTZ,
			actual_start_time TIMESTAMPTZ,
			actual_end_time TIMESTAMPTZ,
			total_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_volume DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_packages INT NOT NULL DEFAULT 0,
			is_optimized BOOLEAN NOT NULL DEFAULT FALSE,
			optimized_at TIMESTAMPTZ,
			optimization_score DOUBLE PRECISION,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE SET NULL,
			FOREIGN KEY (driver_id) REFERENCES drivers(id) ON DELETE SET NULL
		)`,

		`CREATE TABLE IF NOT EXISTS route_stops (
			id TEXT PRIMARY KEY,
			route_id TEXT NOT NULL,
			sequence_number INT NOT NULL CHECK(sequence_number >= 1),
			stop_type TEXT NOT NULL CHECK(stop_type IN ('PICKUP', 'DELIVERY', 'PICKUP_AND_DELIVERY')),
			status TEXT NOT NULL DEFAULT 'PENDING',
			address TEXT NOT NULL,
			city TEXT NOT NULL DEFAULT '',
			state TEXT,
			postal_code TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			planned_arrival_time TIMESTAMPTZ,
			planned_departure_time TIMESTAMPTZ,
			service_time INT NOT NULL DEFAULT 0 CHECK(service_time >= 0),
			contact_name TEXT,
			contact_phone TEXT,
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS route_stop_shipments (
			stop_id TEXT NOT NULL,
			shipment_id TEXT NOT NULL,
			PRIMARY KEY (stop_id, shipment_id),
			FOREIGN KEY (stop_id) REFERENCES route_stops(id) ON DELETE CASCADE,
			FOREIGN KEY (shipment_id) REFERENCES shipments(id) ON DELETE CASCADE
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user_id ON fcm_tokens(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_status ON routes(status)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_driver_id ON routes(driver_id)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_vehicle_id ON routes(vehicle_id)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_planned_start_time ON routes(planned_start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_created_at ON routes(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_route_stops_route_seq ON route_stops(route_id, sequence_number)`,
		`CREATE INDEX IF NOT EXISTS idx_route_stop_shipments_shipment_id ON route_stop_shipments(shipment_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("✓ Database migrations completed")
	return nil
}

// TableCounts returns row counts for the core tables, used by cmd/migrate's summary
func TableCounts(db *sqlx.DB) (map[string]int, error) {
	tables := []string{"users", "drivers", "vehicles", "shipments", "routes", "route_stops"}
	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		// Table names come from the fixed list above
		if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
