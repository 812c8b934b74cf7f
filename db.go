package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"partsdesk/internal/schema"
)

var db *sql.DB

func initDB(path string) error {
	// Close previous connection if any (prevents goroutine leaks in tests)
	if db != nil {
		db.Close()
	}
	var err error
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err = sql.Open("sqlite", path+sep+"_journal_mode=WAL&_busy_timeout=10000&_foreign_keys=1")
	if err != nil {
		return err
	}

	// SQLite handles 1 writer + multiple readers with WAL mode
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	// Some drivers don't parse connection string params, set pragmas explicitly
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000"); err != nil {
		return fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	return runMigrations()
}

func runMigrations() error {
	if err := schema.Apply(db); err != nil {
		return err
	}
	return migrateSchema()
}

// migrateSchema upgrades databases created under earlier DDL: the per-part
// deposit/balance columns are dropped (deposits are entered on the document,
// not stored on parts) and timestamp/actor columns added later are created.
func migrateSchema() error {
	for _, col := range []string{"deposit", "balance"} {
		if !columnExists("parts", col) {
			continue
		}
		if _, err := db.Exec("ALTER TABLE parts DROP COLUMN " + col); err != nil {
			return fmt.Errorf("drop parts.%s: %w", col, err)
		}
		log.Printf("migrated: dropped legacy parts.%s column", col)
	}

	added := map[string][]string{
		"clients":        {"created_date", "last_updated", "created_by", "last_updated_by"},
		"vins":           {"created_date", "last_updated", "created_by", "last_updated_by"},
		"parts":          {"created_date", "last_updated", "created_by", "last_updated_by"},
		"part_suppliers": {"created_date", "last_updated", "created_by", "last_updated_by"},
		"users":          {"last_login"},
	}
	for table, cols := range added {
		for _, col := range cols {
			if columnExists(table, col) {
				continue
			}
			if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT", table, col)); err != nil {
				return fmt.Errorf("add %s.%s: %w", table, col, err)
			}
			log.Printf("migrated: added %s.%s column", table, col)
		}
	}
	return nil
}

func columnExists(table, column string) bool {
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return false
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if rows.Scan(&name) == nil && name == column {
			return true
		}
	}
	return false
}

// seedDB creates the default admin account on first run.
func seedDB() {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		log.Printf("seed check failed: %v", err)
		return
	}
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("seed hash failed: %v", err)
		return
	}
	_, err = db.Exec(`INSERT INTO users (username, password_hash, role, created_date)
		VALUES ('admin', ?, 'admin', datetime('now'))`, string(hash))
	if err != nil {
		log.Printf("seed admin failed: %v", err)
		return
	}
	log.Println("seeded default admin user (change the password)")
}

// MaintenanceReport is the result of a manual maintenance run.
type MaintenanceReport struct {
	IntegrityCheck string `json:"integrity_check"`
	Vacuumed       bool   `json:"vacuumed"`
	Analyzed       bool   `json:"analyzed"`
}

func runMaintenance() (*MaintenanceReport, error) {
	rep := &MaintenanceReport{}
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&rep.IntegrityCheck); err != nil {
		return nil, fmt.Errorf("integrity_check: %w", err)
	}
	if _, err := db.Exec("VACUUM"); err != nil {
		return nil, fmt.Errorf("vacuum: %w", err)
	}
	rep.Vacuumed = true
	if _, err := db.Exec("ANALYZE"); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	rep.Analyzed = true
	return rep, nil
}
