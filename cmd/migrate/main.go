package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate"
	_ "github.com/golang-migrate/migrate/database/sqlite3"
	_ "github.com/golang-migrate/migrate/source/file"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/config"
)

// Operational migration runner for environments where migrations are applied
// out of band instead of at server start. Reads the same SQL files the server
// embeds.
func main() {
	var (
		source = flag.String("source", "file://internal/database/migrations", "migration source URL")
		dbPath = flag.String("db", "", "SQLite database path (defaults to DATABASE_PATH)")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	path := *dbPath
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		path = cfg.Database.Path
	}

	m, err := migrate.New(*source, "sqlite3://"+path)
	if err != nil {
		log.Fatalf("Failed to initialize migrator: %v", err)
	}
	defer m.Close()

	switch flag.Arg(0) {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Migration up failed: %v", err)
		}
		fmt.Println("Migrations applied")
	case "down":
		if err := m.Steps(-1); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		fmt.Println("Rolled back one migration")
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("Failed to read version: %v", err)
		}
		fmt.Printf("Version %d (dirty: %v)\n", version, dirty)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate [-source URL] [-db PATH] up|down|version")
}
