// Package backup writes full database snapshots to versioned JSON files and
// restores them atomically. A restore replaces the current contents of every
// table in the snapshot, deleting children before parents and inserting
// parents before children so foreign keys hold throughout.
package backup

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FormatVersion is bumped whenever the snapshot layout changes.
const FormatVersion = 2

// tableOrder lists every backed-up table parent-first. Restores insert in
// this order and delete in reverse.
var tableOrder = []string{"users", "sessions", "clients", "vins", "parts", "part_suppliers", "activity_log"}

// tableColumns whitelists the columns read and written per table. Snapshot
// rows carrying unknown keys are ignored on restore.
var tableColumns = map[string][]string{
	"users":          {"id", "username", "password_hash", "role", "created_date", "last_login"},
	"sessions":       {"token", "user_id", "expires_at"},
	"clients":        {"phone", "client_name", "created_date", "last_updated", "created_by", "last_updated_by"},
	"vins":           {"vin_number", "client_phone", "model", "prod_yr", "body", "engine", "code", "transmission", "created_date", "last_updated", "created_by", "last_updated_by"},
	"parts":          {"id", "vin_number", "client_phone", "part_name", "part_number", "quantity", "notes", "date_added", "created_date", "last_updated", "created_by", "last_updated_by"},
	"part_suppliers": {"id", "part_id", "supplier_name", "buying_price", "selling_price", "delivery_time", "created_date", "last_updated", "created_by", "last_updated_by"},
	"activity_log":   {"id", "timestamp", "username", "action", "details", "table_name", "record_id", "old_values", "new_values"},
}

// Snapshot is the on-disk backup document.
type Snapshot struct {
	Version   int                  `json:"version"`
	CreatedAt string               `json:"created_at"`
	Tables    map[string]TableDump `json:"tables"`
}

// TableDump holds one table's rows keyed by column name.
type TableDump struct {
	Rows []map[string]interface{} `json:"rows"`
}

// Info describes a backup file on disk.
type Info struct {
	Name      string `json:"name"`
	Path      string `json:"-"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
}

// Manager reads and writes backups under Dir.
type Manager struct {
	DB  *sql.DB
	Dir string
}

func New(db *sql.DB, dir string) *Manager {
	return &Manager{DB: db, Dir: dir}
}

// Create dumps every table to a timestamped JSON file and returns its info.
func (m *Manager) Create() (Info, error) {
	snap, err := m.Dump()
	if err != nil {
		return Info{}, err
	}
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return Info{}, fmt.Errorf("backup dir: %w", err)
	}

	name := "db_backup_" + time.Now().Format("20060102_150405") + ".json"
	path := filepath.Join(m.Dir, name)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Info{}, fmt.Errorf("encode backup: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Info{}, fmt.Errorf("write backup: %w", err)
	}
	return Info{Name: name, Path: path, Size: int64(len(data)), CreatedAt: snap.CreatedAt}, nil
}

// Dump reads every table into an in-memory snapshot.
func (m *Manager) Dump() (*Snapshot, error) {
	snap := &Snapshot{
		Version:   FormatVersion,
		CreatedAt: time.Now().Format("2006-01-02 15:04:05"),
		Tables:    make(map[string]TableDump),
	}
	for _, table := range tableOrder {
		rows, err := m.dumpTable(table)
		if err != nil {
			return nil, err
		}
		snap.Tables[table] = TableDump{Rows: rows}
	}
	return snap, nil
}

func (m *Manager) dumpTable(table string) ([]map[string]interface{}, error) {
	cols := tableColumns[table]
	query := "SELECT " + strings.Join(cols, ", ") + " FROM " + table
	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("dump %s: %w", table, err)
	}
	defer rows.Close()

	var out []map[string]interface{}
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("dump %s: %w", table, err)
		}
		row := make(map[string]interface{}, len(cols))
		for i, c := range cols {
			if b, ok := raw[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = raw[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// List returns the backup files in Dir, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	var infos []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "db_backup_") || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:      e.Name(),
			Path:      filepath.Join(m.Dir, e.Name()),
			Size:      fi.Size(),
			CreatedAt: fi.ModTime().Format("2006-01-02 15:04:05"),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name > infos[j].Name })
	return infos, nil
}

// RestoreFile loads a named backup from Dir and restores it. The name must
// not contain path separators.
func (m *Manager) RestoreFile(name string) error {
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".json") {
		return fmt.Errorf("invalid backup name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(m.Dir, name))
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode backup: %w", err)
	}
	return m.Restore(&snap)
}

// Restore replaces the contents of every table present in the snapshot
// inside a single transaction. Tables absent from the snapshot are left
// untouched.
func (m *Manager) Restore(snap *Snapshot) error {
	if snap.Version > FormatVersion {
		return fmt.Errorf("backup version %d is newer than supported %d", snap.Version, FormatVersion)
	}

	tx, err := m.DB.Begin()
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	defer tx.Rollback()

	// Delete children before parents.
	for i := len(tableOrder) - 1; i >= 0; i-- {
		table := tableOrder[i]
		if _, ok := snap.Tables[table]; !ok {
			continue
		}
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("restore clear %s: %w", table, err)
		}
	}

	// Insert parents before children.
	for _, table := range tableOrder {
		dump, ok := snap.Tables[table]
		if !ok {
			continue
		}
		if err := insertRows(tx, table, dump.Rows); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertRows(tx *sql.Tx, table string, rows []map[string]interface{}) error {
	cols := tableColumns[table]
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	query := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders + ")"
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("restore %s: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		args := make([]interface{}, len(cols))
		for i, c := range cols {
			args[i] = normalize(row[c])
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("restore %s row: %w", table, err)
		}
	}
	return nil
}

// normalize flattens JSON decode artifacts into driver-friendly values.
func normalize(v interface{}) interface{} {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return int64(f)
	}
	return v
}
