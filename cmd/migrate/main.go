package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-orders/internal/config"
	orderdb "ms-orders/internal/order/db"
)

func main() {
	seed := flag.Bool("seed", false, "load the development dataset after migrating")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	db := bun.NewDB(sqldb, pgdialect.New())

	log.Println("Creating tables...")
	if err := orderdb.Migrate(ctx, db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if *seed {
		log.Println("Seeding sample data...")
		if err := orderdb.Seed(ctx, db); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
	}

	log.Println("Done.")
}
