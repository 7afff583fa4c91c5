package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventticketing/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, name, owner_id, capacity, start_time, end_time, status, is_public, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, owner_id, capacity, start_time, end_time, status, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var capacity sql.NullInt64
	if e.Capacity != nil {
		capacity = sql.NullInt64{Int64: int64(*e.Capacity), Valid: true}
	}
	return q(ctx, r.DB).QueryRowContext(ctx, query,
		e.Name, e.OwnerID, capacity, e.StartTime, e.EndTime, e.Status, e.IsPublic, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	return r.scanEvent(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate locks the event row for the rest of the surrounding
// transaction. Concurrent admissions for the same event serialize here.
func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
		FOR UPDATE
	`
	return r.scanEvent(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *eventRepository) scanEvent(row *sql.Row) (*domain.Event, error) {
	e := &domain.Event{}
	var capacity sql.NullInt64
	err := row.Scan(
		&e.ID, &e.Name, &e.OwnerID, &capacity, &e.StartTime, &e.EndTime, &e.Status, &e.IsPublic,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if capacity.Valid {
		c := int(capacity.Int64)
		e.Capacity = &c
	}
	return e, nil
}
