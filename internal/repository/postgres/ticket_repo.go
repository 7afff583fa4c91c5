package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventticketing/internal/domain"
)

type ticketRepository struct {
	DB *sql.DB
}

func NewTicketRepository(db *sql.DB) domain.TicketRepository {
	return &ticketRepository{
		DB: db,
	}
}

func (r *ticketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.DB, fn)
}

const ticketColumns = `id, event_id, user_id, registration_id, ticket_code, status, issued_at, used_at`

func (r *ticketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	query := `
		INSERT INTO tickets (event_id, user_id, registration_id, ticket_code, status, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := q(ctx, r.DB).QueryRowContext(ctx, query,
		t.EventID, t.UserID, t.RegistrationID, t.TicketCode, t.Status, t.IssuedAt,
	).Scan(&t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateTicketCode
		}
		return err
	}
	return nil
}

func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE ticket_code = $1
	`
	return r.scanTicket(q(ctx, r.DB).QueryRowContext(ctx, query, code))
}

// GetByCodeForUpdate locks the ticket row so concurrent use attempts for the
// same code serialize.
func (r *ticketRepository) GetByCodeForUpdate(ctx context.Context, code string) (*domain.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE ticket_code = $1
		FOR UPDATE
	`
	return r.scanTicket(q(ctx, r.DB).QueryRowContext(ctx, query, code))
}

func (r *ticketRepository) GetValidByRegistration(ctx context.Context, registrationID string) (*domain.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE registration_id = $1 AND status = 'valid'
	`
	return r.scanTicket(q(ctx, r.DB).QueryRowContext(ctx, query, registrationID))
}

func (r *ticketRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM tickets WHERE ticket_code = $1)`
	var exists bool
	if err := q(ctx, r.DB).QueryRowContext(ctx, query, code).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, usedAt *time.Time) error {
	query := `
		UPDATE tickets
		SET status = $2, used_at = $3
		WHERE id = $1
	`
	var used sql.NullTime
	if usedAt != nil {
		used = sql.NullTime{Time: *usedAt, Valid: true}
	}
	result, err := q(ctx, r.DB).ExecContext(ctx, query, id, status, used)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ticketRepository) scanTicket(row *sql.Row) (*domain.Ticket, error) {
	t := &domain.Ticket{}
	var used sql.NullTime
	err := row.Scan(&t.ID, &t.EventID, &t.UserID, &t.RegistrationID, &t.TicketCode, &t.Status, &t.IssuedAt, &used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if used.Valid {
		t.UsedAt = &used.Time
	}
	return t, nil
}
