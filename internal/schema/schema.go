// Package schema owns the SQLite DDL. The server migrations and the package
// test fixtures both apply it, so tests always run against the schema the
// server ships.
package schema

import (
	"database/sql"
	"fmt"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user' CHECK(role IN ('admin','user')),
		created_date TEXT DEFAULT CURRENT_TIMESTAMP,
		last_login TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		phone TEXT PRIMARY KEY,
		client_name TEXT,
		created_date TEXT DEFAULT CURRENT_TIMESTAMP,
		last_updated TEXT DEFAULT CURRENT_TIMESTAMP,
		created_by TEXT,
		last_updated_by TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS vins (
		vin_number TEXT PRIMARY KEY,
		client_phone TEXT NOT NULL REFERENCES clients(phone) ON DELETE CASCADE ON UPDATE CASCADE,
		model TEXT,
		prod_yr TEXT,
		body TEXT,
		engine TEXT,
		code TEXT,
		transmission TEXT,
		created_date TEXT DEFAULT CURRENT_TIMESTAMP,
		last_updated TEXT DEFAULT CURRENT_TIMESTAMP,
		created_by TEXT,
		last_updated_by TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS parts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vin_number TEXT REFERENCES vins(vin_number) ON DELETE CASCADE ON UPDATE CASCADE,
		client_phone TEXT NOT NULL REFERENCES clients(phone) ON DELETE CASCADE ON UPDATE CASCADE,
		part_name TEXT,
		part_number TEXT,
		quantity INTEGER NOT NULL DEFAULT 1 CHECK(quantity >= 1),
		notes TEXT,
		date_added TEXT,
		created_date TEXT DEFAULT CURRENT_TIMESTAMP,
		last_updated TEXT DEFAULT CURRENT_TIMESTAMP,
		created_by TEXT,
		last_updated_by TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS part_suppliers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		part_id INTEGER NOT NULL REFERENCES parts(id) ON DELETE CASCADE,
		supplier_name TEXT,
		buying_price REAL CHECK(buying_price >= 0),
		selling_price REAL CHECK(selling_price >= 0),
		delivery_time TEXT,
		created_date TEXT DEFAULT CURRENT_TIMESTAMP,
		last_updated TEXT DEFAULT CURRENT_TIMESTAMP,
		created_by TEXT,
		last_updated_by TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS activity_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		username TEXT,
		action TEXT,
		details TEXT,
		table_name TEXT,
		record_id TEXT,
		old_values TEXT,
		new_values TEXT
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_vins_client ON vins(client_phone)`,
	`CREATE INDEX IF NOT EXISTS idx_parts_client ON parts(client_phone)`,
	`CREATE INDEX IF NOT EXISTS idx_parts_vin ON parts(vin_number)`,
	`CREATE INDEX IF NOT EXISTS idx_suppliers_part ON part_suppliers(part_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_timestamp ON activity_log(timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_username ON activity_log(username)`,
}

// Apply creates every table and index if it does not already exist.
func Apply(db *sql.DB) error {
	for _, t := range tables {
		if _, err := db.Exec(t); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
