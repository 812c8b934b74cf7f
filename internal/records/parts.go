package records

import (
	"database/sql"
	"errors"
	"fmt"

	"partsdesk/internal/audit"
	"partsdesk/internal/validation"
)

// AddPart inserts a part plus zero or more supplier offers in one atomic
// unit. A failure partway rolls back both the part and any inserted supplier
// rows. The owning client (and the VIN, when given) must already exist.
func (s *Service) AddPart(in PartInput, actor string) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	name := validation.SanitizeText(in.Name)
	number := validation.SanitizeText(in.Number)
	if name == "" && number == "" {
		return 0, &InvalidInputError{Field: "part_name", Reason: "part name or part number is required"}
	}
	if in.Quantity < 1 {
		return 0, &InvalidInputError{Field: "quantity", Reason: "must be at least 1"}
	}

	vin := validation.NormalizeVIN(in.VIN)
	clientPhone := validation.SanitizeText(in.ClientPhone)
	notes := validation.SanitizeText(in.Notes)

	var exists string
	err = db.QueryRow("SELECT phone FROM clients WHERE phone = ?", clientPhone).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, &StorageError{Op: "add_part", Err: err}
	}
	if vin != "" {
		err = db.QueryRow("SELECT vin_number FROM vins WHERE vin_number = ?", vin).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		if err != nil {
			return 0, &StorageError{Op: "add_part", Err: err}
		}
	}

	var partID int64
	err = s.writeRetry(func() error {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		res, err := tx.Exec(`INSERT INTO parts
			(vin_number, client_phone, part_name, part_number, quantity, notes, date_added, created_by, last_updated_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			nullIfEmpty(vin), clientPhone, name, number, in.Quantity, notes, now(), actor, actor)
		if err != nil {
			tx.Rollback()
			return err
		}
		partID, err = res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return err
		}
		for _, sup := range in.Suppliers {
			_, err = tx.Exec(`INSERT INTO part_suppliers
				(part_id, supplier_name, buying_price, selling_price, delivery_time, created_by, last_updated_by)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				partID, validation.SanitizeText(sup.Name), sup.BuyingPrice, sup.SellingPrice,
				validation.SanitizeText(sup.DeliveryTime), actor, actor)
			if err != nil {
				tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		if errors.Is(err, ErrBusy) {
			return 0, err
		}
		return 0, &StorageError{Op: "add_part", Err: err}
	}

	detail := fmt.Sprintf("Added part: %s (%s) for client: %s", name, number, clientPhone)
	if vin != "" {
		detail = fmt.Sprintf("Added part: %s (%s) to VIN: %s", name, number, vin)
	}
	s.log(actor, audit.ActionAddPart, detail, "parts", fmt.Sprint(partID),
		nil, map[string]interface{}{"part_name": name, "part_number": number, "quantity": in.Quantity})
	return partID, nil
}

// AddSupplierOffer attaches one supplier offer to an existing part.
func (s *Service) AddSupplierOffer(partID int64, in SupplierInput, actor string) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	if partID < 1 {
		return 0, &InvalidInputError{Field: "part_id", Reason: "is required"}
	}
	name := validation.SanitizeText(in.Name)
	if name == "" {
		return 0, &InvalidInputError{Field: "supplier_name", Reason: "is required"}
	}
	if in.BuyingPrice < 0 {
		return 0, &InvalidInputError{Field: "buying_price", Reason: "must be non-negative"}
	}
	if in.SellingPrice < 0 {
		return 0, &InvalidInputError{Field: "selling_price", Reason: "must be non-negative"}
	}
	delivery := validation.SanitizeText(in.DeliveryTime)

	var exists int64
	err = db.QueryRow("SELECT id FROM parts WHERE id = ?", partID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, &StorageError{Op: "add_supplier", Err: err}
	}

	var offerID int64
	err = s.writeRetry(func() error {
		res, err := db.Exec(`INSERT INTO part_suppliers
			(part_id, supplier_name, buying_price, selling_price, delivery_time, created_by, last_updated_by)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			partID, name, in.BuyingPrice, in.SellingPrice, delivery, actor, actor)
		if err != nil {
			return err
		}
		offerID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		if errors.Is(err, ErrBusy) {
			return 0, err
		}
		return 0, &StorageError{Op: "add_supplier", Err: err}
	}

	s.log(actor, audit.ActionAddSupplier, fmt.Sprintf("Added supplier: %s for part: %d", name, partID),
		"part_suppliers", fmt.Sprint(partID), nil,
		map[string]interface{}{"part_id": partID, "supplier_name": name})
	return offerID, nil
}

// UpdatePart replaces a part's scalar fields and its entire supplier set.
// The supplier replacement is delete-all-then-reinsert, not a diff: callers
// must resend unmodified supplier rows or they are lost.
func (s *Service) UpdatePart(partID int64, in PartUpdate, actor string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	if partID < 1 {
		return &InvalidInputError{Field: "part_id", Reason: "is required"}
	}
	name := validation.SanitizeText(in.Name)
	number := validation.SanitizeText(in.Number)
	if name == "" && number == "" {
		return &InvalidInputError{Field: "part_name", Reason: "part name or part number is required"}
	}
	if in.Quantity < 1 {
		return &InvalidInputError{Field: "quantity", Reason: "must be at least 1"}
	}
	notes := validation.SanitizeText(in.Notes)

	old, err := s.GetPart(partID)
	if err != nil {
		return err
	}

	err = s.writeRetry(func() error {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		_, err = tx.Exec(`UPDATE parts SET part_name = ?, part_number = ?, quantity = ?, notes = ?,
			last_updated = ?, last_updated_by = ? WHERE id = ?`,
			name, number, in.Quantity, notes, now(), actor, partID)
		if err != nil {
			tx.Rollback()
			return err
		}
		_, err = tx.Exec("DELETE FROM part_suppliers WHERE part_id = ?", partID)
		if err != nil {
			tx.Rollback()
			return err
		}
		for _, sup := range in.Suppliers {
			_, err = tx.Exec(`INSERT INTO part_suppliers
				(part_id, supplier_name, buying_price, selling_price, delivery_time, created_by, last_updated_by)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				partID, validation.SanitizeText(sup.Name), sup.BuyingPrice, sup.SellingPrice,
				validation.SanitizeText(sup.DeliveryTime), actor, actor)
			if err != nil {
				tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		if errors.Is(err, ErrBusy) {
			return err
		}
		return &StorageError{Op: "update_part", Err: err}
	}

	s.log(actor, audit.ActionUpdatePart, fmt.Sprintf("Updated part: %s (%s) - ID: %d", name, number, partID),
		"parts", fmt.Sprint(partID),
		map[string]interface{}{"part_name": old.Name, "part_number": old.Number, "quantity": old.Quantity},
		map[string]interface{}{"part_name": name, "part_number": number, "quantity": in.Quantity})
	return nil
}

// DeletePart permanently removes a part and, via cascade, its supplier offers.
func (s *Service) DeletePart(partID int64, actor string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if partID < 1 {
		return &InvalidInputError{Field: "part_id", Reason: "is required"}
	}

	old, err := s.GetPart(partID)
	if err != nil {
		return err
	}

	err = s.writeRetry(func() error {
		_, err := db.Exec("DELETE FROM parts WHERE id = ?", partID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrBusy) {
			return err
		}
		return &StorageError{Op: "delete_part", Err: err}
	}

	s.log(actor, audit.ActionDeletePart,
		fmt.Sprintf("Deleted part: %s (%s) - ID: %d", old.Name, old.Number, partID),
		"parts", fmt.Sprint(partID),
		map[string]interface{}{"part_name": old.Name, "part_number": old.Number}, nil)
	return nil
}

// GetPart returns one part together with its supplier offers.
func (s *Service) GetPart(partID int64) (*Part, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var p Part
	var vin sql.NullString
	err = db.QueryRow(`SELECT id, vin_number, client_phone, COALESCE(part_name,''), COALESCE(part_number,''),
		quantity, COALESCE(notes,''), COALESCE(date_added,'')
		FROM parts WHERE id = ?`, partID).
		Scan(&p.ID, &vin, &p.ClientPhone, &p.Name, &p.Number, &p.Quantity, &p.Notes, &p.DateAdded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "get_part", Err: err}
	}
	if vin.Valid {
		p.VIN = vin.String
	}

	p.Suppliers, err = s.SuppliersForPart(partID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SuppliersForPart returns all offers for a part, oldest first. The first
// offer is the default when composing documents.
func (s *Service) SuppliersForPart(partID int64) ([]SupplierOffer, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT id, part_id, COALESCE(supplier_name,''), COALESCE(buying_price,0),
		COALESCE(selling_price,0), COALESCE(delivery_time,'')
		FROM part_suppliers WHERE part_id = ? ORDER BY id`, partID)
	if err != nil {
		return nil, &StorageError{Op: "suppliers_for_part", Err: err}
	}
	defer rows.Close()

	var offers []SupplierOffer
	for rows.Next() {
		var o SupplierOffer
		if err := rows.Scan(&o.ID, &o.PartID, &o.Name, &o.BuyingPrice, &o.SellingPrice, &o.DeliveryTime); err != nil {
			return nil, &StorageError{Op: "suppliers_for_part", Err: err}
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// PartsForVIN returns all parts attached to a VIN.
func (s *Service) PartsForVIN(vin string) ([]Part, error) {
	return s.queryParts("SELECT id, vin_number, client_phone, COALESCE(part_name,''), COALESCE(part_number,''), quantity, COALESCE(notes,''), COALESCE(date_added,'') FROM parts WHERE vin_number = ? ORDER BY id", validation.NormalizeVIN(vin))
}

// PartsForClient returns every part owned by a client, with or without a VIN.
func (s *Service) PartsForClient(phone string) ([]Part, error) {
	return s.queryParts("SELECT id, vin_number, client_phone, COALESCE(part_name,''), COALESCE(part_number,''), quantity, COALESCE(notes,''), COALESCE(date_added,'') FROM parts WHERE client_phone = ? ORDER BY id", phone)
}

// PartsWithoutVIN returns a client's unassigned parts.
func (s *Service) PartsWithoutVIN(phone string) ([]Part, error) {
	return s.queryParts("SELECT id, vin_number, client_phone, COALESCE(part_name,''), COALESCE(part_number,''), quantity, COALESCE(notes,''), COALESCE(date_added,'') FROM parts WHERE vin_number IS NULL AND client_phone = ? ORDER BY id", phone)
}

// ListParts returns one page of parts ordered by last update, plus the total
// row count.
func (s *Service) ListParts(page, pageSize int) ([]Part, int, error) {
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
	if err := db.QueryRow("SELECT COUNT(*) FROM parts").Scan(&total); err != nil {
		return nil, 0, &StorageError{Op: "list_parts", Err: err}
	}

	parts, err := s.queryParts(`SELECT id, vin_number, client_phone, COALESCE(part_name,''), COALESCE(part_number,''),
		quantity, COALESCE(notes,''), COALESCE(date_added,'')
		FROM parts ORDER BY last_updated DESC LIMIT ? OFFSET ?`, pageSize, page*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return parts, total, nil
}

func (s *Service) queryParts(query string, args ...interface{}) ([]Part, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, &StorageError{Op: "query_parts", Err: err}
	}
	defer rows.Close()

	var parts []Part
	for rows.Next() {
		var p Part
		var vin sql.NullString
		if err := rows.Scan(&p.ID, &vin, &p.ClientPhone, &p.Name, &p.Number, &p.Quantity, &p.Notes, &p.DateAdded); err != nil {
			return nil, &StorageError{Op: "query_parts", Err: err}
		}
		if vin.Valid {
			p.VIN = vin.String
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
