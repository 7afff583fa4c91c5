package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventticketing/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

func (r *registrationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.DB, fn)
}

const registrationColumns = `id, event_id, user_id, status, created_at, updated_at, cancelled_at`

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (event_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return q(ctx, r.DB).QueryRowContext(ctx, query,
		reg.EventID, reg.UserID, reg.Status, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE id = $1
	`
	return r.scanRegistration(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate locks the registration row so concurrent cancels or
// reactivations for the same registration serialize.
func (r *registrationRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE id = $1
		FOR UPDATE
	`
	return r.scanRegistration(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND user_id = $2
	`
	return r.scanRegistration(q(ctx, r.DB).QueryRowContext(ctx, query, eventID, userID))
}

func (r *registrationRepository) CountActive(ctx context.Context, eventID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM registrations
		WHERE event_id = $1 AND status = 'active'
	`
	var count int
	if err := q(ctx, r.DB).QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, id string, status domain.RegistrationStatus, cancelledAt *time.Time, now time.Time) error {
	query := `
		UPDATE registrations
		SET status = $2, cancelled_at = $3, updated_at = $4
		WHERE id = $1
	`
	var cancelled sql.NullTime
	if cancelledAt != nil {
		cancelled = sql.NullTime{Time: *cancelledAt, Valid: true}
	}
	result, err := q(ctx, r.DB).ExecContext(ctx, query, id, status, cancelled, now)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) scanRegistration(row *sql.Row) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var cancelled sql.NullTime
	err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reg.CreatedAt, &reg.UpdatedAt, &cancelled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if cancelled.Valid {
		reg.CancelledAt = &cancelled.Time
	}
	return reg, nil
}
