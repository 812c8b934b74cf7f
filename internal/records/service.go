package records

import (
	"database/sql"
	"fmt"
	"time"

	"partsdesk/internal/audit"
)

// Service is the CRUD core for clients, VINs, parts, and supplier offers.
// It validates input, enforces referential and business invariants, and
// appends exactly one activity entry per successful mutation.
type Service struct {
	DB    *sql.DB
	Audit *audit.Logger
}

// New creates a Service. The audit logger may be nil in tests.
func New(db *sql.DB, logger *audit.Logger) *Service {
	return &Service{DB: db, Audit: logger}
}

func (s *Service) conn() (*sql.DB, error) {
	if s == nil || s.DB == nil {
		return nil, ErrConnection
	}
	return s.DB, nil
}

func (s *Service) log(actor, action, details, table, recordID string, before, after interface{}) {
	if s.Audit != nil {
		s.Audit.RecordChange(actor, action, details, table, recordID, before, after)
	}
}

// writeRetry runs a write, retrying with backoff while the engine reports
// SQLITE_BUSY. After the attempts are exhausted it surfaces ErrBusy so the
// caller can tell the user to try again.
func (s *Service) writeRetry(fn func() error) error {
	var err error
	delay := 50 * time.Millisecond
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
		if attempt == 2 {
			return fmt.Errorf("%w: %v", ErrBusy, err)
		}
		time.Sleep(delay)
		delay *= 2
	}
}

func now() string {
	return time.Now().Format("2006-01-02 15:04:05")
}
