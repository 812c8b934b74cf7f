package records

import (
	"database/sql"
	"errors"
	"fmt"

	"partsdesk/internal/audit"
	"partsdesk/internal/validation"
)

// AddVIN attaches a VIN record to an existing client. The VIN is normalized
// before insert. Duplicate VIN keys use insert-or-ignore semantics: the first
// writer wins and no error is surfaced; the returned bool reports whether the
// row was actually inserted so callers can warn about an existing VIN.
func (s *Service) AddVIN(in VINInput, actor string) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}

	if in.ClientPhone == "" {
		return false, &InvalidInputError{Field: "client_phone", Reason: "is required"}
	}
	if !validation.ValidPhone(in.ClientPhone) {
		return false, &InvalidInputError{Field: "client_phone", Reason: "must be 7-15 digits, spaces, +, -, or parentheses"}
	}

	vin := validation.NormalizeVIN(in.VIN)
	if !validation.ValidVIN(vin) {
		return false, &InvalidInputError{Field: "vin_number", Reason: "must be 7, 13, or 17 alphanumeric characters (no I, O, Q), or empty"}
	}

	clientPhone := validation.SanitizeText(in.ClientPhone)
	model := validation.SanitizeText(in.Model)
	prodYear := validation.SanitizeText(in.ProdYear)
	body := validation.SanitizeText(in.Body)
	engine := validation.SanitizeText(in.Engine)
	code := validation.SanitizeText(in.Code)
	transmission := validation.SanitizeText(in.Transmission)

	var existing string
	err = db.QueryRow("SELECT phone FROM clients WHERE phone = ?", clientPhone).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, &StorageError{Op: "add_vin", Err: err}
	}

	// Empty VIN is stored as NULL: a vehicle record with no VIN assigned.
	// NULL keys never collide, so only real VINs get ignore-on-duplicate.
	var inserted bool
	err = s.writeRetry(func() error {
		res, err := db.Exec(`INSERT OR IGNORE INTO vins
			(vin_number, client_phone, model, prod_yr, body, engine, code, transmission,
			 created_date, last_updated, created_by, last_updated_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			nullIfEmpty(vin), clientPhone, model, prodYear, body, engine, code, transmission,
			now(), now(), actor, actor)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		inserted = n > 0
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBusy) {
			return false, err
		}
		return false, &StorageError{Op: "add_vin", Err: err}
	}

	s.log(actor, audit.ActionAddVIN, fmt.Sprintf("Added VIN: %s for client: %s", vin, clientPhone),
		"vins", vin, nil, map[string]string{"vin_number": vin, "client_phone": clientPhone})
	return inserted, nil
}

// GetVIN returns one VIN record.
func (s *Service) GetVIN(vin string) (*VIN, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	vin = validation.NormalizeVIN(vin)

	var v VIN
	err = db.QueryRow(`SELECT COALESCE(vin_number,''), client_phone, COALESCE(model,''), COALESCE(prod_yr,''),
		COALESCE(body,''), COALESCE(engine,''), COALESCE(code,''), COALESCE(transmission,''),
		COALESCE(created_date,''), COALESCE(last_updated,''), COALESCE(created_by,''), COALESCE(last_updated_by,'')
		FROM vins WHERE vin_number = ?`, vin).
		Scan(&v.VIN, &v.ClientPhone, &v.Model, &v.ProdYear, &v.Body, &v.Engine, &v.Code,
			&v.Transmission, &v.CreatedDate, &v.LastUpdated, &v.CreatedBy, &v.LastUpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "get_vin", Err: err}
	}
	return &v, nil
}

// VINsForClient returns all VINs owned by a client.
func (s *Service) VINsForClient(phone string) ([]VIN, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT COALESCE(vin_number,''), client_phone, COALESCE(model,''), COALESCE(prod_yr,''),
		COALESCE(body,''), COALESCE(engine,''), COALESCE(code,''), COALESCE(transmission,''),
		COALESCE(created_date,''), COALESCE(last_updated,''), COALESCE(created_by,''), COALESCE(last_updated_by,'')
		FROM vins WHERE client_phone = ? ORDER BY created_date`, phone)
	if err != nil {
		return nil, &StorageError{Op: "vins_for_client", Err: err}
	}
	defer rows.Close()

	var vins []VIN
	for rows.Next() {
		var v VIN
		if err := rows.Scan(&v.VIN, &v.ClientPhone, &v.Model, &v.ProdYear, &v.Body, &v.Engine,
			&v.Code, &v.Transmission, &v.CreatedDate, &v.LastUpdated, &v.CreatedBy, &v.LastUpdatedBy); err != nil {
			return nil, &StorageError{Op: "vins_for_client", Err: err}
		}
		vins = append(vins, v)
	}
	return vins, rows.Err()
}

// DeleteVIN permanently removes a VIN and, via cascade, all parts attached to
// it and their supplier offers.
func (s *Service) DeleteVIN(vin, actor string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if vin == "" {
		return &InvalidInputError{Field: "vin_number", Reason: "is required"}
	}
	vin = validation.NormalizeVIN(vin)

	old, err := s.GetVIN(vin)
	if err != nil {
		return err
	}

	err = s.writeRetry(func() error {
		_, err := db.Exec("DELETE FROM vins WHERE vin_number = ?", vin)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrBusy) {
			return err
		}
		return &StorageError{Op: "delete_vin", Err: err}
	}

	s.log(actor, audit.ActionDeleteVIN, fmt.Sprintf("Deleted VIN: %s", vin),
		"vins", vin, map[string]string{"vin_number": old.VIN, "client_phone": old.ClientPhone, "model": old.Model}, nil)
	return nil
}
