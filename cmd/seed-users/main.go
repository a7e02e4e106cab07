package main

import (
	"tms-backend/internal/config"
	"tms-backend/internal/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("🔌 Connected to database")

	for _, account := range database.DefaultAccounts {
		created, err := database.EnsureUser(db, account)
		if err != nil {
			log.Printf("❌ Failed to create user %s: %v", account.Email, err)
			continue
		}
		if !created {
			log.Printf("⚠️  User already exists: %s", account.Email)
			continue
		}
		log.Printf("✅ Created %s user: %s", account.Role, account.Email)
	}

	log.Println("\n📧 Login credentials:")
	for _, account := range database.DefaultAccounts {
		log.Printf("  %s / %s (%s)", account.Email, account.Password, account.Role)
	}
}
