package audit

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"partsdesk/internal/websocket"
)

// Action names recorded in the activity log.
const (
	ActionAddClient    = "add_client"
	ActionAddVIN       = "add_vin"
	ActionAddPart      = "add_part"
	ActionAddSupplier  = "add_supplier"
	ActionUpdateClient = "update_client"
	ActionUpdatePart   = "update_part"
	ActionDeleteClient = "delete_client"
	ActionDeleteVIN    = "delete_vin"
	ActionDeletePart   = "delete_part"
	ActionLogin        = "login"
	ActionLoginFailed  = "login_failed"
	ActionLogout       = "logout"
	ActionExport       = "export"
	ActionBackup       = "backup"
	ActionRestore      = "restore"
	ActionAddUser      = "add_user"
	ActionUpdateUser   = "update_user"
	ActionDeleteUser   = "delete_user"
)

// Entry is one immutable activity log row.
type Entry struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	Username  string `json:"username"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	TableName string `json:"table_name,omitempty"`
	RecordID  string `json:"record_id,omitempty"`
	OldValues string `json:"old_values,omitempty"`
	NewValues string `json:"new_values,omitempty"`
}

// Logger appends to the activity log. Appends are best-effort: a logging
// failure never propagates to the caller, so a business write is never rolled
// back because the audit insert failed.
type Logger struct {
	DB  *sql.DB
	Hub *websocket.Hub
}

// Record appends a simple activity entry with no table/record context.
func (l *Logger) Record(actor, action, details string) {
	l.RecordChange(actor, action, details, "", "", nil, nil)
}

// RecordChange appends an activity entry with before/after snapshots of the
// affected record. Snapshots are serialized to JSON; nil means no snapshot.
func (l *Logger) RecordChange(actor, action, details, table, recordID string, before, after interface{}) {
	if l == nil || l.DB == nil {
		return
	}

	var oldJSON, newJSON sql.NullString
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			oldJSON = sql.NullString{String: string(b), Valid: true}
		}
	}
	if after != nil {
		if b, err := json.Marshal(after); err == nil {
			newJSON = sql.NullString{String: string(b), Valid: true}
		}
	}

	ts := time.Now().Format("2006-01-02 15:04:05")
	_, err := l.DB.Exec(`INSERT INTO activity_log
		(timestamp, username, action, details, table_name, record_id, old_values, new_values)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ts, actor, action, details, nullable(table), nullable(recordID), oldJSON, newJSON)
	if err != nil {
		log.Printf("audit: log error: %v", err)
		return
	}

	if l.Hub != nil {
		l.Hub.Broadcast(websocket.Event{
			Type:     "activity",
			Table:    table,
			RecordID: recordID,
			Action:   action,
			Actor:    actor,
		})
	}
}

// Recent returns the newest entries in descending timestamp order,
// optionally filtered by actor.
func (l *Logger) Recent(actor string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := "SELECT id, timestamp, username, action, details, COALESCE(table_name,''), COALESCE(record_id,''), COALESCE(old_values,''), COALESCE(new_values,'') FROM activity_log"
	var args []interface{}
	if actor != "" {
		query += " WHERE username = ?"
		args = append(args, actor)
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := l.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Username, &e.Action, &e.Details,
			&e.TableName, &e.RecordID, &e.OldValues, &e.NewValues); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
