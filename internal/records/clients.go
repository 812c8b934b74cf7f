package records

import (
	"database/sql"
	"errors"
	"fmt"

	"partsdesk/internal/audit"
	"partsdesk/internal/validation"
)

// AddClient registers a new client keyed by phone.
func (s *Service) AddClient(phone, name, actor string) (string, error) {
	db, err := s.conn()
	if err != nil {
		return "", err
	}

	if phone == "" {
		return "", &InvalidInputError{Field: "phone", Reason: "is required"}
	}
	if !validation.ValidPhone(phone) {
		return "", &InvalidInputError{Field: "phone", Reason: "must be 7-15 digits, spaces, +, -, or parentheses"}
	}
	phone = validation.SanitizeText(phone)
	name = validation.SanitizeText(name)

	var existing string
	err = db.QueryRow("SELECT phone FROM clients WHERE phone = ?", phone).Scan(&existing)
	if err == nil {
		return "", &DuplicateKeyError{Table: "clients", Key: phone}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", &StorageError{Op: "add_client", Err: err}
	}

	err = s.writeRetry(func() error {
		_, err := db.Exec("INSERT INTO clients (phone, client_name, created_by, last_updated_by) VALUES (?, ?, ?, ?)",
			phone, name, actor, actor)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrBusy) {
			return "", err
		}
		return "", &StorageError{Op: "add_client", Err: err}
	}

	s.log(actor, audit.ActionAddClient, fmt.Sprintf("Added client: %s - %s", phone, name),
		"clients", phone, nil, map[string]string{"phone": phone, "client_name": name})
	return phone, nil
}

// GetClient returns one client by phone.
func (s *Service) GetClient(phone string) (*Client, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var c Client
	err = db.QueryRow(`SELECT phone, COALESCE(client_name,''), COALESCE(created_date,''), COALESCE(last_updated,''),
		COALESCE(created_by,''), COALESCE(last_updated_by,'')
		FROM clients WHERE phone = ?`, phone).
		Scan(&c.Phone, &c.Name, &c.CreatedDate, &c.LastUpdated, &c.CreatedBy, &c.LastUpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "get_client", Err: err}
	}
	return &c, nil
}

// ListClients returns one page of clients ordered by last update, plus the
// total row count for pagination.
func (s *Service) ListClients(page, pageSize int) ([]Client, int, error) {
	db, err := s.conn()
	if err != nil {
		return nil, 0, err
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if page < 0 {
		page = 0
	}

	var total int
	if err := db.QueryRow("SELECT COUNT(*) FROM clients").Scan(&total); err != nil {
		return nil, 0, &StorageError{Op: "list_clients", Err: err}
	}

	rows, err := db.Query(`SELECT phone, COALESCE(client_name,''), COALESCE(created_date,''), COALESCE(last_updated,''),
		COALESCE(created_by,''), COALESCE(last_updated_by,'')
		FROM clients ORDER BY last_updated DESC LIMIT ? OFFSET ?`, pageSize, page*pageSize)
	if err != nil {
		return nil, 0, &StorageError{Op: "list_clients", Err: err}
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.Phone, &c.Name, &c.CreatedDate, &c.LastUpdated, &c.CreatedBy, &c.LastUpdatedBy); err != nil {
			return nil, 0, &StorageError{Op: "list_clients", Err: err}
		}
		clients = append(clients, c)
	}
	return clients, total, rows.Err()
}

// UpdateClient renames a client's key and/or display name. The new phone
// value fans out to all dependent VIN and part rows in the same atomic unit
// via the ON UPDATE CASCADE foreign keys.
func (s *Service) UpdateClient(oldPhone, newPhone, newName, actor string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	if oldPhone == "" {
		return &InvalidInputError{Field: "old_phone", Reason: "is required"}
	}
	if newPhone == "" {
		return &InvalidInputError{Field: "new_phone", Reason: "is required"}
	}
	if !validation.ValidPhone(newPhone) {
		return &InvalidInputError{Field: "new_phone", Reason: "must be 7-15 digits, spaces, +, -, or parentheses"}
	}
	newPhone = validation.SanitizeText(newPhone)
	newName = validation.SanitizeText(newName)

	old, err := s.GetClient(oldPhone)
	if err != nil {
		return err
	}

	if newPhone != oldPhone {
		var existing string
		err = db.QueryRow("SELECT phone FROM clients WHERE phone = ?", newPhone).Scan(&existing)
		if err == nil {
			return &DuplicateKeyError{Table: "clients", Key: newPhone}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return &StorageError{Op: "update_client", Err: err}
		}
	}

	err = s.writeRetry(func() error {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		_, err = tx.Exec(`UPDATE clients SET phone = ?, client_name = ?, last_updated = ?, last_updated_by = ?
			WHERE phone = ?`, newPhone, newName, now(), actor, oldPhone)
		if err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		if errors.Is(err, ErrBusy) {
			return err
		}
		return &StorageError{Op: "update_client", Err: err}
	}

	s.log(actor, audit.ActionUpdateClient,
		fmt.Sprintf("Updated client: %s -> %s, name: %s", oldPhone, newPhone, newName),
		"clients", newPhone,
		map[string]string{"phone": old.Phone, "client_name": old.Name},
		map[string]string{"phone": newPhone, "client_name": newName})
	return nil
}

// DeleteClient permanently removes a client. All of the client's VINs, parts,
// and supplier offers go with it via cascade. The audit entry captures a
// pre-delete snapshot of the client row only, not of cascaded rows.
func (s *Service) DeleteClient(phone, actor string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if phone == "" {
		return &InvalidInputError{Field: "phone", Reason: "is required"}
	}

	old, err := s.GetClient(phone)
	if err != nil {
		return err
	}

	err = s.writeRetry(func() error {
		_, err := db.Exec("DELETE FROM clients WHERE phone = ?", phone)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrBusy) {
			return err
		}
		return &StorageError{Op: "delete_client", Err: err}
	}

	s.log(actor, audit.ActionDeleteClient, fmt.Sprintf("Deleted client: %s - %s", phone, old.Name),
		"clients", phone, map[string]string{"phone": old.Phone, "client_name": old.Name}, nil)
	return nil
}
