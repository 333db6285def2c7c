package ticket

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"ctrlfix/pkg/logx"
)

const schemaVersion = 1

// SQLite is the durable ticket store.
type SQLite struct {
	db     *sql.DB
	logger *logx.Logger
}

// OpenSQLite opens (or creates) the ticket database and migrates the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ticket database: %w", err)
	}
	// Single writer; the flow serializes saves per session anyway.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, logger: logx.NewLogger("ticket-db")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS tickets (
			ticket_id          TEXT PRIMARY KEY,
			created_at         TEXT NOT NULL,
			phone_number       TEXT NOT NULL,
			user_name          TEXT NOT NULL,
			device_type        TEXT NOT NULL,
			brandmodel         TEXT NOT NULL,
			additional_info    TEXT NOT NULL DEFAULT '',
			issue_type         TEXT NOT NULL,
			description        TEXT NOT NULL,
			photos             TEXT NOT NULL DEFAULT '',
			parts_needed       TEXT NOT NULL DEFAULT '',
			service_fee        REAL NOT NULL DEFAULT 0,
			parts_cost         REAL NOT NULL DEFAULT 0,
			estimated_total    REAL NOT NULL DEFAULT 0,
			booking_type       TEXT NOT NULL DEFAULT '',
			appointment_status TEXT NOT NULL DEFAULT 'pending'
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate ticket schema: %w", err)
		}
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version`).Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("ticket database schema version %d is newer than supported %d", version, schemaVersion)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Save implements Sink. Re-saving a ticket ID replaces the row.
func (s *SQLite) Save(ctx context.Context, t Ticket) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO tickets (
			ticket_id, created_at, phone_number, user_name, device_type,
			brandmodel, additional_info, issue_type, description, photos,
			parts_needed, service_fee, parts_cost, estimated_total,
			booking_type, appointment_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TicketID, t.Timestamp, t.PhoneNumber, t.UserName, t.DeviceType,
		t.BrandModel, t.AdditionalInfo, t.IssueType, t.Description, t.Photos,
		t.PartsNeeded, t.ServiceFee, t.PartsCost, t.EstimatedTotal,
		t.BookingType, t.AppointmentStatus)
	if err != nil {
		return fmt.Errorf("save ticket %s: %w", t.TicketID, err)
	}
	s.logger.Info("saved ticket %s", t.TicketID)
	return nil
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, ticketID string) (Ticket, error) {
	var t Ticket
	err := s.db.QueryRowContext(ctx, `
		SELECT ticket_id, created_at, phone_number, user_name, device_type,
		       brandmodel, additional_info, issue_type, description, photos,
		       parts_needed, service_fee, parts_cost, estimated_total,
		       booking_type, appointment_status
		FROM tickets WHERE ticket_id = ?`, ticketID).Scan(
		&t.TicketID, &t.Timestamp, &t.PhoneNumber, &t.UserName, &t.DeviceType,
		&t.BrandModel, &t.AdditionalInfo, &t.IssueType, &t.Description, &t.Photos,
		&t.PartsNeeded, &t.ServiceFee, &t.PartsCost, &t.EstimatedTotal,
		&t.BookingType, &t.AppointmentStatus)
	if err == sql.ErrNoRows {
		return Ticket{}, fmt.Errorf("ticket %s not found", ticketID)
	}
	if err != nil {
		return Ticket{}, fmt.Errorf("load ticket %s: %w", ticketID, err)
	}
	return t, nil
}

// UpdateStatus implements Store.
func (s *SQLite) UpdateStatus(ctx context.Context, ticketID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets SET appointment_status = ? WHERE ticket_id = ?`, status, ticketID)
	if err != nil {
		return fmt.Errorf("update ticket %s status: %w", ticketID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("ticket %s not found", ticketID)
	}
	return nil
}
