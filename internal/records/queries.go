package records

import "fmt"

// SearchResults groups matches across the searchable tables.
type SearchResults struct {
	Clients []Client `json:"clients"`
	VINs    []VIN    `json:"vins"`
	Parts   []Part   `json:"parts"`
}

// Search runs a comprehensive LIKE search across clients, VINs, and parts.
// All patterns are bound parameters.
func (s *Service) Search(q string) (*SearchResults, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	results := &SearchResults{}
	if q == "" {
		return results, nil
	}
	pattern := "%" + q + "%"

	rows, err := db.Query(`SELECT phone, COALESCE(client_name,''), COALESCE(created_date,''), COALESCE(last_updated,''),
		COALESCE(created_by,''), COALESCE(last_updated_by,'')
		FROM clients WHERE phone LIKE ? OR client_name LIKE ?`, pattern, pattern)
	if err != nil {
		return nil, &StorageError{Op: "search", Err: err}
	}
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.Phone, &c.Name, &c.CreatedDate, &c.LastUpdated, &c.CreatedBy, &c.LastUpdatedBy); err != nil {
			rows.Close()
			return nil, &StorageError{Op: "search", Err: err}
		}
		results.Clients = append(results.Clients, c)
	}
	rows.Close()

	rows, err = db.Query(`SELECT COALESCE(vin_number,''), client_phone, COALESCE(model,''), COALESCE(prod_yr,''),
		COALESCE(body,''), COALESCE(engine,''), COALESCE(code,''), COALESCE(transmission,''),
		COALESCE(created_date,''), COALESCE(last_updated,''), COALESCE(created_by,''), COALESCE(last_updated_by,'')
		FROM vins WHERE vin_number LIKE ? OR model LIKE ?`, pattern, pattern)
	if err != nil {
		return nil, &StorageError{Op: "search", Err: err}
	}
	for rows.Next() {
		var v VIN
		if err := rows.Scan(&v.VIN, &v.ClientPhone, &v.Model, &v.ProdYear, &v.Body, &v.Engine,
			&v.Code, &v.Transmission, &v.CreatedDate, &v.LastUpdated, &v.CreatedBy, &v.LastUpdatedBy); err != nil {
			rows.Close()
			return nil, &StorageError{Op: "search", Err: err}
		}
		results.VINs = append(results.VINs, v)
	}
	rows.Close()

	parts, err := s.queryParts(`SELECT id, vin_number, client_phone, COALESCE(part_name,''), COALESCE(part_number,''),
		quantity, COALESCE(notes,''), COALESCE(date_added,'')
		FROM parts WHERE part_name LIKE ? OR part_number LIKE ? OR notes LIKE ?`, pattern, pattern, pattern)
	if err != nil {
		return nil, err
	}
	results.Parts = parts
	return results, nil
}

// countableTables whitelists CountRows targets; table names are never
// interpolated from user input.
var countableTables = map[string]bool{
	"clients":        true,
	"vins":           true,
	"parts":          true,
	"part_suppliers": true,
	"activity_log":   true,
	"users":          true,
}

// CountRows returns the total row count of a whitelisted table.
func (s *Service) CountRows(table string) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	if !countableTables[table] {
		return 0, &InvalidInputError{Field: "table", Reason: fmt.Sprintf("unknown table %q", table)}
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		return 0, &StorageError{Op: "count_rows", Err: err}
	}
	return n, nil
}
