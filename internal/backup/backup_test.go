package backup

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"partsdesk/internal/schema"
)

func setupBackupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("pragma: %v", err)
	}

	if err := schema.Apply(db); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return db
}

func seedBackupData(t *testing.T, db *sql.DB) {
	t.Helper()
	seed := []string{
		`INSERT INTO clients (phone, client_name) VALUES ('8687775555', 'John')`,
		`INSERT INTO vins (vin_number, client_phone, model) VALUES ('1234567', '8687775555', 'Civic')`,
		`INSERT INTO parts (id, vin_number, client_phone, part_name, quantity) VALUES (1, '1234567', '8687775555', 'Brake Pad', 4)`,
		`INSERT INTO part_suppliers (part_id, supplier_name, buying_price, selling_price) VALUES (1, 'AutoZone', 10.0, 15.5)`,
		`INSERT INTO activity_log (timestamp, username, action, details) VALUES ('2026-01-01 00:00:00', 'admin', 'add_client', 'John')`,
	}
	for _, stmt := range seed {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestDumpIncludesAllTables(t *testing.T) {
	db := setupBackupTestDB(t)
	seedBackupData(t, db)
	m := New(db, t.TempDir())

	snap, err := m.Dump()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if snap.Version != FormatVersion {
		t.Errorf("version = %d, want %d", snap.Version, FormatVersion)
	}
	for _, table := range tableOrder {
		if _, ok := snap.Tables[table]; !ok {
			t.Errorf("table %q missing from snapshot", table)
		}
	}
	if got := len(snap.Tables["parts"].Rows); got != 1 {
		t.Errorf("parts rows = %d, want 1", got)
	}
	row := snap.Tables["clients"].Rows[0]
	if row["phone"] != "8687775555" {
		t.Errorf("client phone = %v", row["phone"])
	}
}

func TestCreateWritesFile(t *testing.T) {
	db := setupBackupTestDB(t)
	seedBackupData(t, db)
	dir := t.TempDir()
	m := New(db, dir)

	info, err := m.Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, info.Name))
	if err != nil {
		t.Fatalf("read backup file: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("backup file is not valid JSON: %v", err)
	}
	if len(snap.Tables["vins"].Rows) != 1 {
		t.Errorf("vins rows = %d, want 1", len(snap.Tables["vins"].Rows))
	}
}

func TestRestoreReplacesCurrentData(t *testing.T) {
	db := setupBackupTestDB(t)
	seedBackupData(t, db)
	m := New(db, t.TempDir())

	snap, err := m.Dump()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}

	// Mutate after the snapshot: a new client, a deleted part.
	if _, err := db.Exec(`INSERT INTO clients (phone, client_name) VALUES ('8680000000', 'Ghost')`); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM parts WHERE id = 1`); err != nil {
		t.Fatalf("mutate: %v", err)
	}

	if err := m.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}

	var clients int
	if err := db.QueryRow("SELECT COUNT(*) FROM clients").Scan(&clients); err != nil {
		t.Fatalf("count: %v", err)
	}
	if clients != 1 {
		t.Errorf("clients after restore = %d, want 1", clients)
	}
	var name string
	if err := db.QueryRow("SELECT part_name FROM parts WHERE id = 1").Scan(&name); err != nil {
		t.Fatalf("part not restored: %v", err)
	}
	if name != "Brake Pad" {
		t.Errorf("part_name = %q", name)
	}
	var suppliers int
	if err := db.QueryRow("SELECT COUNT(*) FROM part_suppliers").Scan(&suppliers); err != nil {
		t.Fatalf("count: %v", err)
	}
	if suppliers != 1 {
		t.Errorf("suppliers after restore = %d, want 1", suppliers)
	}
}

func TestRoundTripPreservesActorColumns(t *testing.T) {
	db := setupBackupTestDB(t)
	seed := []string{
		`INSERT INTO users (username, password_hash, role, created_date, last_login)
			VALUES ('admin', 'x', 'admin', '2026-01-01 00:00:00', '2026-02-01 09:30:00')`,
		`INSERT INTO clients (phone, client_name, created_by, last_updated_by) VALUES ('8687775555', 'John', 'admin', 'admin')`,
		`INSERT INTO vins (vin_number, client_phone, model, created_by, last_updated_by)
			VALUES ('1234567', '8687775555', 'Civic', 'admin', 'clerk')`,
		`INSERT INTO parts (id, vin_number, client_phone, part_name, quantity, created_by, last_updated_by)
			VALUES (1, '1234567', '8687775555', 'Brake Pad', 4, 'admin', 'admin')`,
		`INSERT INTO part_suppliers (part_id, supplier_name, buying_price, selling_price, created_by)
			VALUES (1, 'AutoZone', 10.0, 15.5, 'admin')`,
	}
	for _, stmt := range seed {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	m := New(db, t.TempDir())

	snap, err := m.Dump()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if _, err := db.Exec("DELETE FROM clients"); err != nil {
		t.Fatalf("wipe: %v", err)
	}
	if _, err := db.Exec("DELETE FROM users"); err != nil {
		t.Fatalf("wipe: %v", err)
	}

	if err := m.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}

	var createdBy, lastUpdatedBy string
	if err := db.QueryRow("SELECT created_by, last_updated_by FROM vins WHERE vin_number = '1234567'").
		Scan(&createdBy, &lastUpdatedBy); err != nil {
		t.Fatalf("vin not restored: %v", err)
	}
	if createdBy != "admin" || lastUpdatedBy != "clerk" {
		t.Errorf("vin actors = %q/%q, want admin/clerk", createdBy, lastUpdatedBy)
	}
	var lastLogin string
	if err := db.QueryRow("SELECT last_login FROM users WHERE username = 'admin'").Scan(&lastLogin); err != nil {
		t.Fatalf("user not restored: %v", err)
	}
	if lastLogin != "2026-02-01 09:30:00" {
		t.Errorf("last_login = %q", lastLogin)
	}
	var supplierCreatedBy string
	if err := db.QueryRow("SELECT created_by FROM part_suppliers WHERE part_id = 1").Scan(&supplierCreatedBy); err != nil {
		t.Fatalf("supplier not restored: %v", err)
	}
	if supplierCreatedBy != "admin" {
		t.Errorf("supplier created_by = %q", supplierCreatedBy)
	}
}

func TestRestoreRejectsNewerVersion(t *testing.T) {
	db := setupBackupTestDB(t)
	m := New(db, t.TempDir())

	err := m.Restore(&Snapshot{Version: FormatVersion + 1})
	if err == nil {
		t.Fatal("expected error for newer snapshot version")
	}
}

func TestRestoreFileRejectsPathTraversal(t *testing.T) {
	db := setupBackupTestDB(t)
	m := New(db, t.TempDir())

	for _, name := range []string{"../evil.json", "/etc/passwd", "backup.txt"} {
		if err := m.RestoreFile(name); err == nil {
			t.Errorf("RestoreFile(%q) accepted invalid name", name)
		}
	}
}

func TestListNewestFirst(t *testing.T) {
	db := setupBackupTestDB(t)
	dir := t.TempDir()
	m := New(db, dir)

	for _, name := range []string{"db_backup_20260101_000000.json", "db_backup_20260301_000000.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	infos, err := m.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d backups, want 2", len(infos))
	}
	if infos[0].Name != "db_backup_20260301_000000.json" {
		t.Errorf("newest first violated: %v", infos)
	}
}

func TestListMissingDir(t *testing.T) {
	db := setupBackupTestDB(t)
	m := New(db, filepath.Join(t.TempDir(), "does-not-exist"))

	infos, err := m.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("got %d backups, want 0", len(infos))
	}
}
