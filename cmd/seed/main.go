package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/seeds"
	_ "github.com/lib/pq"
)

var (
	dbHost     = getEnv("DB_HOST", "localhost")
	dbPort     = getEnv("DB_PORT", "5432")
	dbUser     = getEnv("DB_USER", "postgres")
	dbPassword = getEnv("DB_PASSWORD", "postgres")
	dbName     = getEnv("DB_NAME", "outreach")
	dbSSLMode  = getEnv("DB_SSL_MODE", "disable")
)

func main() {
	// Parse command line flags
	var (
		verifyOnly = flag.Bool("verify", false, "Only verify existing demo data, don't seed")
		statsOnly  = flag.Bool("stats", false, "Only show table statistics")
	)
	flag.Parse()

	// Setup logging
	log.SetFlags(log.LstdFlags)
	log.SetPrefix("[Demo Seed] ")

	// Connect to database
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	log.Println("Connecting to database...")
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}
	defer db.Close()

	// Set connection pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	// Ping database to verify connection
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Database connection established")

	// Create seeder
	seeder := seeds.NewDemoSeeder(db)

	switch {
	case *statsOnly:
		if err := seeder.Stats(ctx); err != nil {
			log.Fatalf("Failed to get statistics: %v", err)
		}

	case *verifyOnly:
		log.Println("Verification mode")
		if err := seeder.Verify(ctx); err != nil {
			log.Fatalf("Verification failed: %v", err)
		}
		log.Println("Demo data verified successfully")

	default:
		log.Println("Seeding demo data (existing rows are preserved)")
		if err := seeder.SeedAll(ctx); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}

		if err := seeder.Stats(ctx); err != nil {
			log.Printf("Warning: Failed to get statistics: %v", err)
		}

		log.Println("Running post-seed verification...")
		if err := seeder.Verify(ctx); err != nil {
			log.Fatalf("Post-seed verification failed: %v", err)
		}

		log.Println("Demo seeding completed successfully")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
