package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"

	"partsdesk/internal/audit"
	"partsdesk/internal/backup"
	"partsdesk/internal/records"
	"partsdesk/internal/response"
	ws "partsdesk/internal/websocket"
)

var (
	cfg     *Config
	hub     *ws.Hub
	auditor *audit.Logger
	svc     *records.Service
	backups *backup.Manager
)

func main() {
	configPath := flag.String("config", "partsdesk.yaml", "Path to YAML config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	backupDir := flag.String("backup-dir", "", "Backup directory (overrides config)")
	flag.Parse()

	var err error
	cfg, err = loadConfig(*configPath)
	if err != nil {
		log.Fatal("config load failed: ", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *backupDir != "" {
		cfg.BackupDir = *backupDir
	}

	if err := initDB(cfg.DBPath); err != nil {
		log.Fatal("DB init failed: ", err)
	}
	seedDB()

	hub = ws.NewHub()
	auditor = &audit.Logger{DB: db, Hub: hub}
	svc = records.New(db, auditor)
	backups = backup.New(db, cfg.BackupDir)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("partsdesk server starting on http://localhost%s", addr)
	log.Fatal(http.ListenAndServe(addr, logging(requireAuth(requireRBAC(buildRoutes())))))
}

func buildRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.HandleWebSocket(hub, w, r)
	})

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/")
		path = strings.TrimSuffix(path, "/")
		parts := strings.Split(path, "/")

		switch {
		// Auth
		case path == "auth/login" && r.Method == "POST":
			handleLogin(w, r)
		case path == "auth/logout" && r.Method == "POST":
			handleLogout(w, r)
		case path == "auth/me" && r.Method == "GET":
			handleMe(w, r)

		// Clients
		case path == "clients" && r.Method == "GET":
			handleListClients(w, r)
		case path == "clients" && r.Method == "POST":
			handleAddClient(w, r)
		case parts[0] == "clients" && len(parts) == 2 && r.Method == "GET":
			handleGetClient(w, r, parts[1])
		case parts[0] == "clients" && len(parts) == 2 && r.Method == "PUT":
			handleUpdateClient(w, r, parts[1])
		case parts[0] == "clients" && len(parts) == 2 && r.Method == "DELETE":
			handleDeleteClient(w, r, parts[1])
		case parts[0] == "clients" && len(parts) == 3 && parts[2] == "vins" && r.Method == "GET":
			handleClientVINs(w, r, parts[1])
		case parts[0] == "clients" && len(parts) == 3 && parts[2] == "parts" && r.Method == "GET":
			handleClientParts(w, r, parts[1])

		// VINs
		case path == "vins" && r.Method == "POST":
			handleAddVIN(w, r)
		case parts[0] == "vins" && len(parts) == 2 && r.Method == "GET":
			handleGetVIN(w, r, parts[1])
		case parts[0] == "vins" && len(parts) == 2 && r.Method == "DELETE":
			handleDeleteVIN(w, r, parts[1])
		case parts[0] == "vins" && len(parts) == 3 && parts[2] == "parts" && r.Method == "GET":
			handleVINParts(w, r, parts[1])

		// Parts + supplier offers
		case path == "parts" && r.Method == "GET":
			handleListParts(w, r)
		case path == "parts" && r.Method == "POST":
			handleAddPart(w, r)
		case parts[0] == "parts" && len(parts) == 2 && r.Method == "GET":
			handleGetPart(w, r, parts[1])
		case parts[0] == "parts" && len(parts) == 2 && r.Method == "PUT":
			handleUpdatePart(w, r, parts[1])
		case parts[0] == "parts" && len(parts) == 2 && r.Method == "DELETE":
			handleDeletePart(w, r, parts[1])
		case parts[0] == "parts" && len(parts) == 3 && parts[2] == "suppliers" && r.Method == "GET":
			handlePartSuppliers(w, r, parts[1])
		case parts[0] == "parts" && len(parts) == 3 && parts[2] == "suppliers" && r.Method == "POST":
			handleAddSupplier(w, r, parts[1])

		// Documents
		case path == "documents" && r.Method == "POST":
			handleAssembleDocument(w, r)
		case path == "documents/text" && r.Method == "POST":
			handleTextDocument(w, r)
		case path == "documents/delivery-options" && r.Method == "GET":
			handleDeliveryOptions(w, r)

		// Search
		case path == "search" && r.Method == "GET":
			handleSearch(w, r)

		// Export
		case path == "export" && r.Method == "GET":
			handleExport(w, r)

		// Backup + maintenance
		case path == "backup" && r.Method == "POST":
			handleCreateBackup(w, r)
		case path == "backup" && r.Method == "GET":
			handleListBackups(w, r)
		case path == "backup/restore" && r.Method == "POST":
			handleRestoreBackup(w, r)
		case path == "maintenance" && r.Method == "POST":
			handleMaintenance(w, r)

		// Activity log
		case path == "activity" && r.Method == "GET":
			handleActivity(w, r)

		// Users (admin)
		case path == "users" && r.Method == "GET":
			handleListUsers(w, r)
		case path == "users" && r.Method == "POST":
			handleAddUser(w, r)
		case parts[0] == "users" && len(parts) == 2 && r.Method == "PUT":
			handleUpdateUser(w, r, parts[1])
		case parts[0] == "users" && len(parts) == 2 && r.Method == "DELETE":
			handleDeleteUser(w, r, parts[1])

		default:
			response.Err(w, "not found", 404)
		}
	})

	return mux
}
