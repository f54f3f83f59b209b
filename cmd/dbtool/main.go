package main

import (
	"context"
	"delivery-insertion-planner/internal/config"
	"delivery-insertion-planner/internal/platform/db"
	"flag"
	"log"
	"strings"

	"github.com/joho/godotenv"
)

// dbtool prepares the address cache database ahead of the first server start.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	driver := flag.String("driver", config.Get("DB_DRIVER", db.DriverSQLite), "database driver: sqlite or pgx")
	purge := flag.Bool("purge", false, "delete all cached addresses after initializing")
	flag.Parse()

	dsn := config.Get("DB_PATH", "data/app.db")
	if *driver == db.DriverPostgres {
		dsn = config.Get("DATABASE_URL", "")
		if strings.TrimSpace(dsn) == "" {
			log.Fatal("DATABASE_URL is required")
		}
	}

	conn, err := db.Open(*driver, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx := context.Background()

	log.Println("Initializing database schema...")
	if err := db.InitSchema(ctx, conn, *driver); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if *purge {
		res, err := conn.ExecContext(ctx, `DELETE FROM reverse_geocode_cache;`)
		if err != nil {
			log.Fatalf("purge failed: %v", err)
		}
		n, _ := res.RowsAffected()
		log.Printf("Purged cached addresses rows=%d", n)
	}
}
