package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/chaitanyak175/TicketBoss/internal/core/domain"
)

const mysqlDupEntry = 1062

// MySQLAdapter implements port.LedgerStore over two tables, events and
// reservations. The only concurrency mechanism is the version-gated UPDATE in
// AdjustAvailableSeats; no SELECT ... FOR UPDATE, no multi-row transactions.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// EnsureSchema creates the two tables when missing. Idempotent, called once
// at startup before the server accepts traffic.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			event_id        VARCHAR(64)  NOT NULL PRIMARY KEY,
			name            VARCHAR(255) NOT NULL,
			total_seats     INT          NOT NULL,
			available_seats INT          NOT NULL,
			version         INT          NOT NULL DEFAULT 0,
			created_at      DATETIME(6)  NOT NULL,
			updated_at      DATETIME(6)  NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reservations (
			reservation_id VARCHAR(64)  NOT NULL PRIMARY KEY,
			event_id       VARCHAR(64)  NOT NULL,
			partner_id     VARCHAR(255) NOT NULL,
			seats          INT          NOT NULL,
			status         ENUM('confirmed','cancelled') NOT NULL DEFAULT 'confirmed',
			created_at     DATETIME(6)  NOT NULL,
			updated_at     DATETIME(6)  NOT NULL,
			KEY idx_reservations_event_status (event_id, status),
			CONSTRAINT fk_reservations_event FOREIGN KEY (event_id) REFERENCES events (event_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	var ev domain.Event
	err := m.db.QueryRowContext(ctx, `
		SELECT event_id, name, total_seats, available_seats, version, created_at, updated_at
		FROM events WHERE event_id = ?`, eventID,
	).Scan(&ev.EventID, &ev.Name, &ev.TotalSeats, &ev.AvailableSeats, &ev.Version, &ev.CreatedAt, &ev.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	return &ev, nil
}

func (m *MySQLAdapter) GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	var res domain.Reservation
	err := m.db.QueryRowContext(ctx, `
		SELECT reservation_id, event_id, partner_id, seats, status, created_at, updated_at
		FROM reservations WHERE reservation_id = ?`, reservationID,
	).Scan(&res.ReservationID, &res.EventID, &res.PartnerID, &res.Seats, &res.Status, &res.CreatedAt, &res.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query reservation: %w", err)
	}
	return &res, nil
}

// AdjustAvailableSeats is the compare-and-swap primitive: the seat delta and
// the version bump land in one conditional UPDATE, and RowsAffected tells the
// caller whether this writer won the version.
func (m *MySQLAdapter) AdjustAvailableSeats(ctx context.Context, eventID string, delta, expectedVersion int) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE events
		SET available_seats = available_seats + ?, version = version + 1, updated_at = NOW(6)
		WHERE event_id = ? AND version = ?`,
		delta, eventID, expectedVersion,
	)
	if err != nil {
		return false, fmt.Errorf("update event seats: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows == 1, nil
}

func (m *MySQLAdapter) InsertReservation(ctx context.Context, res domain.Reservation) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO reservations (reservation_id, event_id, partner_id, seats, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.ReservationID, res.EventID, res.PartnerID, res.Seats, res.Status,
		res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDupEntry {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// UpdateReservationStatus flips confirmed -> cancelled. The status guard in
// the WHERE clause makes concurrent cancels of the same id elect one winner.
func (m *MySQLAdapter) UpdateReservationStatus(ctx context.Context, reservationID string, status domain.ReservationStatus) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE reservations SET status = ?, updated_at = NOW(6)
		WHERE reservation_id = ? AND status = 'confirmed'`,
		status, reservationID,
	)
	if err != nil {
		return false, fmt.Errorf("update reservation status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows == 1, nil
}

func (m *MySQLAdapter) ListReservations(ctx context.Context, eventID string, status domain.ReservationStatus) ([]domain.Reservation, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT reservation_id, event_id, partner_id, seats, status, created_at, updated_at
		FROM reservations WHERE event_id = ? AND status = ?`,
		eventID, status,
	)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ReservationID, &res.EventID, &res.PartnerID, &res.Seats, &res.Status, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (m *MySQLAdapter) ListEventIDs(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT event_id FROM events`)
	if err != nil {
		return nil, fmt.Errorf("query event ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan event id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (m *MySQLAdapter) InsertEvent(ctx context.Context, ev domain.Event) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO events (event_id, name, total_seats, available_seats, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.EventID, ev.Name, ev.TotalSeats, ev.AvailableSeats, ev.Version,
		ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// SeedEvent inserts the event only when it does not exist yet, so repeated
// startups leave a live counter untouched.
func (m *MySQLAdapter) SeedEvent(ctx context.Context, ev domain.Event) error {
	_, err := m.GetEvent(ctx, ev.EventID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrEventNotFound) {
		return err
	}
	return m.InsertEvent(ctx, ev)
}
