// Migrate applies the embedded schema migrations up or down.
//
// Usage:
//
//	migrate up
//	migrate down
package main

import (
	"log"
	"os"

	"gui-replay/backend/internal/config"
	"gui-replay/backend/internal/db/migrate"
)

func main() {
	if len(os.Args) != 2 || (os.Args[1] != "up" && os.Args[1] != "down") {
		log.Fatalf("usage: %s up|down", os.Args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := migrate.Run(cfg.DatabaseURL, os.Args[1]); err != nil {
		log.Fatalf("migrate %s: %v", os.Args[1], err)
	}
	log.Printf("migrate %s: done", os.Args[1])
}
