// Command seeder loads a YAML catalog into the storefront database.
package main

import (
	"context"
	"flag"
	"os"

	"storefront-api/configs"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm/logger"
)

func main() {
	file := flag.String("file", "catalog.yaml", "seed file to load")
	flag.Parse()

	cfg := configs.Load()
	db, err := configs.ConnectDB(cfg.DBDriver, cfg.DatabaseURL, logger.Silent)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}

	fh, err := os.Open(*file)
	if err != nil {
		log.Fatalw("failed to open seed file", "file", *file, "error", err)
	}
	defer fh.Close()

	seed, err := Parse(fh)
	if err != nil {
		log.Fatalw("invalid seed file", "error", err)
	}
	stats, err := Apply(context.Background(), db, seed)
	if err != nil {
		log.Fatalw("seeding failed", "error", err, "created", stats.Created, "updated", stats.Updated)
	}
	log.Infow("catalog seeded", "created", stats.Created, "updated", stats.Updated)
}
