package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"partsdesk/internal/audit"
	"partsdesk/internal/export"
	"partsdesk/internal/response"
)

// handleExport streams a filtered snapshot of the data tables as either a
// zip of CSVs (default) or an Excel workbook.
func handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := export.Filters{
		ClientPhone: q.Get("client_phone"),
		VIN:         q.Get("vin"),
	}
	if t := strings.TrimSpace(q.Get("tables")); t != "" {
		for _, name := range strings.Split(t, ",") {
			name = strings.TrimSpace(name)
			if !validExportTable(name) {
				response.Err(w, fmt.Sprintf("unknown table %q", name), 400)
				return
			}
			filters.Tables = append(filters.Tables, name)
		}
	}

	tables, err := export.Collect(db, filters)
	if err != nil {
		response.Err(w, "export failed", 500)
		return
	}

	stamp := time.Now().Format("20060102_150405")
	format := q.Get("format")
	switch format {
	case "", "csv":
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="export_%s.zip"`, stamp))
		if err := export.WriteCSVZip(w, tables); err != nil {
			// Headers are already out; nothing useful left to send.
			return
		}
	case "xlsx":
		w.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="export_%s.xlsx"`, stamp))
		if err := export.WriteExcel(w, tables); err != nil {
			return
		}
	default:
		response.Err(w, "format must be csv or xlsx", 400)
		return
	}

	auditor.Record(actor(r), audit.ActionExport,
		fmt.Sprintf("format=%s tables=%d", formatOrDefault(format), len(tables)))
}

func formatOrDefault(format string) string {
	if format == "" {
		return "csv"
	}
	return format
}

func validExportTable(name string) bool {
	for _, t := range export.DataTables {
		if t == name {
			return true
		}
	}
	return false
}
