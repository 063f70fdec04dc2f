package main

import (
	"log"
	"os"
	"strings"

	"homesentry-data/internal/config"
	"homesentry-data/internal/database"
)

// Applies sql/schema.sql (or the file named on the command line) to
// the configured database. Statements are idempotent so rerunning is
// safe.
func main() {
	schemaFile := "sql/schema.sql"
	if len(os.Args) > 1 {
		schemaFile = os.Args[1]
	}

	sqlContent, err := os.ReadFile(schemaFile)
	if err != nil {
		log.Fatalf("Failed to read schema file: %v", err)
	}

	cfg := config.Load()
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to %s, applying %s", cfg.Database.Database, schemaFile)

	statements := strings.Split(string(sqlContent), ";")
	applied := 0
	for i, stmt := range statements {
		stmt = stripComments(stmt)
		if stmt == "" {
			continue
		}

		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("Failed to execute statement %d: %v", i+1, err)
		}
		applied++
	}

	log.Printf("Schema applied: %d statements", applied)
}

// stripComments drops full-line SQL comments so a commented header does
// not hide the statement that follows it.
func stripComments(stmt string) string {
	lines := strings.Split(stmt, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
