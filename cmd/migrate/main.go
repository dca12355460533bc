package main

import (
	"flag"                          // Command line flags
	"krishna_store/internal/config" // Custom import path (Config)
	"krishna_store/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Structured logging
)

// Main entry point for migration
func main() {
	adminName := flag.String("admin-name", "Admin", "name of the admin account to bootstrap")
	adminPhone := flag.String("admin-phone", "", "phone of the admin account to bootstrap")
	flag.Parse()

	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	gdb, err := db.Open(cfg.DSN(), cfg.IsProd)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	if *adminPhone == "" {
		return
	}
	admin, err := db.SeedAdmin(gdb, *adminName, *adminPhone)
	if err != nil {
		logrus.Fatalf("admin bootstrap failed: %v", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": admin.ID, "slug": admin.Slug}).Info("Admin account ready")
}
