// Package export produces bulk snapshots of the data tables as a zip of
// per-table CSV files or a multi-sheet Excel workbook. Filter values are
// always bound parameters, never spliced into query text.
package export

import (
	"archive/zip"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Filters narrows the exported rows. Zero values mean "everything".
type Filters struct {
	ClientPhone string
	VIN         string
	Tables      []string // subset of DataTables; empty exports all
}

// DataTables lists the exportable tables in dependency order.
var DataTables = []string{"clients", "vins", "parts", "part_suppliers"}

// Table is one exported table: a header row plus data rows, already
// stringified for the target formats.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

func (f Filters) wants(table string) bool {
	if len(f.Tables) == 0 {
		return true
	}
	for _, t := range f.Tables {
		if t == table {
			return true
		}
	}
	return false
}

// Collect reads the selected tables applying the filters.
func Collect(db *sql.DB, f Filters) ([]Table, error) {
	var tables []Table

	if f.wants("clients") {
		query := "SELECT phone, COALESCE(client_name,''), created_date, last_updated, COALESCE(created_by,''), COALESCE(last_updated_by,'') FROM clients"
		var args []interface{}
		if f.ClientPhone != "" {
			query += " WHERE phone = ?"
			args = append(args, f.ClientPhone)
		}
		t, err := readTable(db, "clients",
			[]string{"Phone", "Client Name", "Created", "Last Updated", "Created By", "Updated By"},
			query+" ORDER BY phone", args)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	if f.wants("vins") {
		query := "SELECT COALESCE(vin_number,''), client_phone, COALESCE(model,''), COALESCE(prod_yr,''), COALESCE(body,''), COALESCE(engine,''), COALESCE(code,''), COALESCE(transmission,'') FROM vins"
		var conds []string
		var args []interface{}
		if f.ClientPhone != "" {
			conds = append(conds, "client_phone = ?")
			args = append(args, f.ClientPhone)
		}
		if f.VIN != "" {
			conds = append(conds, "vin_number = ?")
			args = append(args, f.VIN)
		}
		query += where(conds)
		t, err := readTable(db, "vins",
			[]string{"VIN", "Client Phone", "Model", "Prod Year", "Body", "Engine", "Code", "Transmission"},
			query+" ORDER BY vin_number", args)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	if f.wants("parts") {
		query := "SELECT id, COALESCE(vin_number,''), client_phone, COALESCE(part_name,''), COALESCE(part_number,''), quantity, COALESCE(notes,''), COALESCE(date_added,'') FROM parts"
		var conds []string
		var args []interface{}
		if f.ClientPhone != "" {
			conds = append(conds, "client_phone = ?")
			args = append(args, f.ClientPhone)
		}
		if f.VIN != "" {
			conds = append(conds, "vin_number = ?")
			args = append(args, f.VIN)
		}
		query += where(conds)
		t, err := readTable(db, "parts",
			[]string{"ID", "VIN", "Client Phone", "Part Name", "Part Number", "Quantity", "Notes", "Date Added"},
			query+" ORDER BY id", args)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	if f.wants("part_suppliers") {
		query := `SELECT ps.id, ps.part_id, COALESCE(ps.supplier_name,''), COALESCE(ps.buying_price,0),
			COALESCE(ps.selling_price,0), COALESCE(ps.delivery_time,'') FROM part_suppliers ps`
		var conds []string
		var args []interface{}
		if f.ClientPhone != "" || f.VIN != "" {
			query += " JOIN parts p ON ps.part_id = p.id"
			if f.ClientPhone != "" {
				conds = append(conds, "p.client_phone = ?")
				args = append(args, f.ClientPhone)
			}
			if f.VIN != "" {
				conds = append(conds, "p.vin_number = ?")
				args = append(args, f.VIN)
			}
		}
		query += where(conds)
		t, err := readTable(db, "part_suppliers",
			[]string{"ID", "Part ID", "Supplier", "Buying Price", "Selling Price", "Delivery Time"},
			query+" ORDER BY ps.id", args)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return tables, nil
}

func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	out := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		out += " AND " + c
	}
	return out
}

func readTable(db *sql.DB, name string, headers []string, query string, args []interface{}) (Table, error) {
	t := Table{Name: name, Headers: headers}
	rows, err := db.Query(query, args...)
	if err != nil {
		return t, fmt.Errorf("export %s: %w", name, err)
	}
	defer rows.Close()

	cols := len(headers)
	for rows.Next() {
		raw := make([]interface{}, cols)
		ptrs := make([]interface{}, cols)
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return t, fmt.Errorf("export %s: %w", name, err)
		}
		row := make([]string, cols)
		for i, v := range raw {
			row[i] = stringify(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}

func stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	default:
		return fmt.Sprint(x)
	}
}

// WriteCSVZip writes one CSV file per table into a zip archive.
func WriteCSVZip(w io.Writer, tables []Table) error {
	zw := zip.NewWriter(w)
	for _, t := range tables {
		f, err := zw.Create(t.Name + ".csv")
		if err != nil {
			return err
		}
		cw := csv.NewWriter(f)
		if err := cw.Write(t.Headers); err != nil {
			return err
		}
		for _, row := range t.Rows {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
	}
	return zw.Close()
}

// WriteExcel writes all tables into one workbook, a sheet per table.
func WriteExcel(w io.Writer, tables []Table) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for _, t := range tables {
		if _, err := f.NewSheet(t.Name); err != nil {
			return err
		}
		for i, header := range t.Headers {
			cell, err := excelize.CoordinatesToCellName(i+1, 1)
			if err != nil {
				return err
			}
			f.SetCellValue(t.Name, cell, header)
			f.SetCellStyle(t.Name, cell, cell, headerStyle)
		}
		for rowIdx, row := range t.Rows {
			for colIdx, value := range row {
				cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
				if err != nil {
					return err
				}
				f.SetCellValue(t.Name, cell, value)
			}
		}
		for i := range t.Headers {
			col, _ := excelize.ColumnNumberToName(i + 1)
			f.SetColWidth(t.Name, col, col, 15)
		}
	}

	if len(tables) > 0 {
		f.DeleteSheet("Sheet1")
	}
	_, err = f.WriteTo(w)
	return err
}
