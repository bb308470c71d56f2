package main

import (
	"ambulance-route-service/internal/adapters/repositories"
	"ambulance-route-service/internal/config"
	"ambulance-route-service/internal/platform/db"
	"context"
	"database/sql"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	driver := config.Get("DB_DRIVER", db.DriverPostgres)
	dsn := os.Getenv("DATABASE_URL")
	if driver == db.DriverSQLite {
		dsn = config.Get("DB_PATH", "data/app.db")
	}
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(driver, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/problems.json")
	initAndSeed(conn, driver, seedPath)
}

func initAndSeed(conn *sql.DB, driver, seedPath string) {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	repo := repositories.NewSQLProblemRepository(conn, driver)
	if err := repositories.SeedFromJSON(context.Background(), repo, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
