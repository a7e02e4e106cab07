package main

import (
	"flag"
	"fmt"
	"sort"

	"tms-backend/internal/config"
	"tms-backend/internal/database"
	"tms-backend/internal/logging"

	log "github.com/sirupsen/logrus"
)

func main() {
	seed := flag.Bool("seed", false, "seed default accounts and demo fleet after migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logging.Configure(log.StandardLogger(), cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration completed successfully!")

	if *seed || cfg.SeedDemoData {
		if err := database.SeedUsers(db); err != nil {
			log.Fatalf("User seeding failed: %v", err)
		}
		if err := database.SeedDemoData(db); err != nil {
			log.Fatalf("Demo data seeding failed: %v", err)
		}
	}

	counts, err := database.TableCounts(db)
	if err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	tables := make([]string, 0, len(counts))
	for table := range counts {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	for _, table := range tables {
		fmt.Printf("%-24s %d\n", table+":", counts[table])
	}
	fmt.Println("============================================================")
}
