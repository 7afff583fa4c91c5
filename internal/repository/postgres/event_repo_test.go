package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eventticketing/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var repoNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func capPtr(v int) *int { return &v }

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success with capacity",
			event: &domain.Event{
				Name:      "GopherCon",
				OwnerID:   "user-uuid-1",
				Capacity:  capPtr(250),
				StartTime: repoNow.Add(24 * time.Hour),
				EndTime:   repoNow.Add(48 * time.Hour),
				Status:    domain.EventStatusPublished,
				IsPublic:  true,
				CreatedAt: repoNow,
				UpdatedAt: repoNow,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(name, owner_id, capacity, start_time, end_time, status, is_public, created_at, updated_at\)`).
					WithArgs("GopherCon", "user-uuid-1", sql.NullInt64{Int64: 250, Valid: true},
						repoNow.Add(24*time.Hour), repoNow.Add(48*time.Hour),
						domain.EventStatusPublished, true, repoNow, repoNow).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID:  "ev-uuid-1",
			wantErr: false,
		},
		{
			name: "success unlimited capacity",
			event: &domain.Event{
				Name:      "Meetup",
				OwnerID:   "user-uuid-1",
				StartTime: repoNow.Add(24 * time.Hour),
				EndTime:   repoNow.Add(26 * time.Hour),
				Status:    domain.EventStatusDraft,
				IsPublic:  false,
				CreatedAt: repoNow,
				UpdatedAt: repoNow,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WithArgs("Meetup", "user-uuid-1", sql.NullInt64{},
						repoNow.Add(24*time.Hour), repoNow.Add(26*time.Hour),
						domain.EventStatusDraft, false, repoNow, repoNow).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-2"))
			},
			wantID:  "ev-uuid-2",
			wantErr: false,
		},
		{
			name: "db error",
			event: &domain.Event{
				Name:      "Conf",
				OwnerID:   "user-1",
				StartTime: repoNow,
				EndTime:   repoNow.Add(time.Hour),
				Status:    domain.EventStatusDraft,
				CreatedAt: repoNow,
				UpdatedAt: repoNow,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantID:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	eventRows := func(capacity any) *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"id", "name", "owner_id", "capacity", "start_time", "end_time",
			"status", "is_public", "created_at", "updated_at",
		}).AddRow("ev-1", "GopherCon", "user-1", capacity,
			repoNow.Add(24*time.Hour), repoNow.Add(48*time.Hour),
			"published", true, repoNow, repoNow)
	}

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Event
		wantErr error
	}{
		{
			name: "success with capacity",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name, owner_id, capacity, start_time, end_time, status, is_public, created_at, updated_at`).
					WithArgs("ev-1").
					WillReturnRows(eventRows(int64(250)))
			},
			want: &domain.Event{
				ID:        "ev-1",
				Name:      "GopherCon",
				OwnerID:   "user-1",
				Capacity:  capPtr(250),
				StartTime: repoNow.Add(24 * time.Hour),
				EndTime:   repoNow.Add(48 * time.Hour),
				Status:    domain.EventStatusPublished,
				IsPublic:  true,
				CreatedAt: repoNow,
				UpdatedAt: repoNow,
			},
		},
		{
			name: "success null capacity",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name, owner_id, capacity, start_time, end_time, status, is_public, created_at, updated_at`).
					WithArgs("ev-1").
					WillReturnRows(eventRows(nil))
			},
			want: &domain.Event{
				ID:        "ev-1",
				Name:      "GopherCon",
				OwnerID:   "user-1",
				StartTime: repoNow.Add(24 * time.Hour),
				EndTime:   repoNow.Add(48 * time.Hour),
				Status:    domain.EventStatusPublished,
				IsPublic:  true,
				CreatedAt: repoNow,
				UpdatedAt: repoNow,
			},
		},
		{
			name: "not found",
			id:   "ev-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name, owner_id, capacity, start_time, end_time, status, is_public, created_at, updated_at`).
					WithArgs("ev-missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByIDForUpdate(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, owner_id, capacity, start_time, end_time, status, is_public, created_at, updated_at\s+FROM events\s+WHERE id = \$1\s+FOR UPDATE`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "owner_id", "capacity", "start_time", "end_time",
			"status", "is_public", "created_at", "updated_at",
		}).AddRow("ev-1", "GopherCon", "user-1", int64(10),
			repoNow.Add(24*time.Hour), repoNow.Add(48*time.Hour),
			"published", true, repoNow, repoNow))

	repo := NewEventRepository(db)
	got, err := repo.GetByIDForUpdate(ctx, "ev-1")
	require.NoError(t, err)
	require.Equal(t, "ev-1", got.ID)
	require.NotNil(t, got.Capacity)
	require.Equal(t, 10, *got.Capacity)
	require.NoError(t, mock.ExpectationsWereMet())
}
