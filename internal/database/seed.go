package database

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// SeedAccount describes a login created by SeedUsers or cmd/seed-users
type SeedAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	License   string // Driver accounts only
}

// DefaultAccounts are created on an empty users table
var DefaultAccounts = []SeedAccount{
	{Email: "admin@tms.local", Password: "admin123", FirstName: "Admin", LastName: "User", Role: "admin"},
	{Email: "dispatch@tms.local", Password: "dispatch123", FirstName: "Dana", LastName: "Dispatcher", Role: "dispatcher"},
	{Email: "driver@tms.local", Password: "driver123", FirstName: "John", LastName: "Driver", Role: "driver", License: "DL-0001"},
}

// EnsureUser creates the account (and its driver row for drivers) unless the email exists.
// Returns true when a new account was created.
func EnsureUser(db *sqlx.DB, account SeedAccount) (bool, error) {
	var exists bool
	if err := db.Get(&exists, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", account.Email); err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	tx, err := db.Beginx()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	userID := uuid.New().String()
	_, err = tx.NamedExec(`
		INSERT INTO users (id, email, password, first_name, last_name, role)
		VALUES (:id, :email, :password, :first_name, :last_name, :role)
	`, map[string]interface{}{
		"id":         userID,
		"email":      account.Email,
		"password":   string(hashed),
		"first_name": account.FirstName,
		"last_name":  account.LastName,
		"role":       account.Role,
	})
	if err != nil {
		return false, err
	}

	if account.Role == "driver" {
		_, err = tx.Exec(`
			INSERT INTO drivers (id, user_id, license_number, status)
			VALUES ($1, $2, $3, 'ACTIVE')
		`, uuid.New().String(), userID, account.License)
		if err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func SeedUsers(db *sqlx.DB) error {
	// Check if users already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding test users...")
	for _, account := range DefaultAccounts {
		if _, err := EnsureUser(db, account); err != nil {
			return err
		}
		log.Printf("  ✓ Created user: %s (%s)", account.Email, account.Role)
	}

	log.Println("✓ Successfully seeded test users")
	return nil
}

// SeedDemoData adds a carrier, vehicles and shipments when the fleet is empty
func SeedDemoData(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM vehicles"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Demo fleet already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding demo fleet and shipments...")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	companyID := uuid.New().String()
	carrierID := uuid.New().String()
	if _, err := tx.Exec(`INSERT INTO companies (id, name) VALUES ($1, $2)`, companyID, "Demo Logistics"); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO carriers (id, company_id, name, code) VALUES ($1, $2, $3, $4)`,
		carrierID, companyID, "Demo Freight", "DEMO"); err != nil {
		return err
	}

	vehicles := []map[string]interface{}{
		{"plate_number": "TRK-1001", "vehicle_type": "BOX_TRUCK", "max_weight": 4500.0, "max_volume": 30.0},
		{"plate_number": "VAN-2001", "vehicle_type": "VAN", "max_weight": 1200.0, "max_volume": 10.0},
	}
	for _, v := range vehicles {
		_, err := tx.Exec(`
			INSERT INTO vehicles (id, carrier_id, plate_number, vehicle_type, max_weight, max_volume)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New().String(), carrierID, v["plate_number"], v["vehicle_type"], v["max_weight"], v["max_volume"])
		if err != nil {
			return err
		}
	}

	shipments := []map[string]interface{}{
		{"tracking_number": "SHP-0001", "origin_city": "Dallas", "destination_city": "Austin", "weight": 320.0, "volume": 2.5},
		{"tracking_number": "SHP-0002", "origin_city": "Dallas", "destination_city": "Waco", "weight": 150.0, "volume": 1.2},
		{"tracking_number": "SHP-0003", "origin_city": "Fort Worth", "destination_city": "Austin", "weight": 780.0, "volume": 5.0},
	}
	for _, s := range shipments {
		_, err := tx.Exec(`
			INSERT INTO shipments (id, tracking_number, origin_city, destination_city, weight, volume)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New().String(), s["tracking_number"], s["origin_city"], s["destination_city"], s["weight"], s["volume"])
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("✓ Seeded %d vehicles and %d shipments", len(vehicles), len(shipments))
	return nil
}
