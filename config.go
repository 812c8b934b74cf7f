package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"partsdesk/internal/quote"
)

// Config is the server configuration, loaded from a YAML file. Every field
// has a default so the server runs without a config file at all.
type Config struct {
	Port      int           `yaml:"port"`
	DBPath    string        `yaml:"db_path"`
	BackupDir string        `yaml:"backup_dir"`
	Company   quote.Company `yaml:"company"`
}

func defaultConfig() *Config {
	return &Config{
		Port:      9000,
		DBPath:    "partsdesk.db",
		BackupDir: "backups",
		Company: quote.Company{
			Name:            "BJM Auto Parts",
			DistributorLine: "Auto Parts Distributor",
			AddressLines:    []string{"Couva Main Road", "Couva, Trinidad"},
			Specialties:     []string{"European", "Japanese", "American vehicles"},
			Phones:          []string{"868-777-5555"},
			Email:           "sales@example.com",
			DocPrefix:       "BJM",
			TermsOfSale: "All goods remain the property of the seller until paid in full. " +
				"Special-order items are non-refundable. Warranty claims must be " +
				"accompanied by the original invoice.",
			DepositNote: "A deposit is required to confirm special orders.",
		},
	}
}

// loadConfig reads the YAML config at path, merging over the defaults.
// A missing file is not an error; a malformed one is.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Port <= 0 {
		cfg.Port = 9000
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "partsdesk.db"
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = "backups"
	}
	if cfg.Company.DocPrefix == "" {
		cfg.Company.DocPrefix = "BJM"
	}
	return cfg, nil
}
