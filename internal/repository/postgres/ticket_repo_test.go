package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eventticketing/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func ticketRows(status string, usedAt any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "event_id", "user_id", "registration_id", "ticket_code", "status", "issued_at", "used_at",
	}).AddRow("tk-1", "ev-1", "user-1", "reg-1", "abcdefghijklmnopqrstuvwxyz", status, repoNow, usedAt)
}

func TestTicketRepository_Create(t *testing.T) {
	ctx := context.Background()

	ticket := func() *domain.Ticket {
		return &domain.Ticket{
			EventID:        "ev-1",
			UserID:         "user-1",
			RegistrationID: "reg-1",
			TicketCode:     "abcdefghijklmnopqrstuvwxyz",
			Status:         domain.TicketStatusValid,
			IssuedAt:       repoNow,
		}
	}

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO tickets \(event_id, user_id, registration_id, ticket_code, status, issued_at\)`).
					WithArgs("ev-1", "user-1", "reg-1", "abcdefghijklmnopqrstuvwxyz", domain.TicketStatusValid, repoNow).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("tk-uuid-1"))
			},
			wantID: "tk-uuid-1",
		},
		{
			name: "code collision maps to duplicate error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO tickets`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "tickets_ticket_code_key"})
			},
			wantErr: domain.ErrDuplicateTicketCode,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO tickets`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewTicketRepository(db)
			tk := ticket()
			err = repo.Create(ctx, tk)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tk.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTicketRepository_GetByCode(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Ticket
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, event_id, user_id, registration_id, ticket_code, status, issued_at, used_at\s+FROM tickets\s+WHERE ticket_code = \$1`).
					WithArgs("abcdefghijklmnopqrstuvwxyz").
					WillReturnRows(ticketRows("valid", nil))
			},
			want: &domain.Ticket{
				ID:             "tk-1",
				EventID:        "ev-1",
				UserID:         "user-1",
				RegistrationID: "reg-1",
				TicketCode:     "abcdefghijklmnopqrstuvwxyz",
				Status:         domain.TicketStatusValid,
				IssuedAt:       repoNow,
			},
		},
		{
			name: "used ticket carries used_at",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, event_id, user_id, registration_id, ticket_code, status, issued_at, used_at`).
					WithArgs("abcdefghijklmnopqrstuvwxyz").
					WillReturnRows(ticketRows("used", repoNow.Add(time.Hour)))
			},
			want: func() *domain.Ticket {
				used := repoNow.Add(time.Hour)
				return &domain.Ticket{
					ID:             "tk-1",
					EventID:        "ev-1",
					UserID:         "user-1",
					RegistrationID: "reg-1",
					TicketCode:     "abcdefghijklmnopqrstuvwxyz",
					Status:         domain.TicketStatusUsed,
					IssuedAt:       repoNow,
					UsedAt:         &used,
				}
			}(),
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, event_id, user_id, registration_id, ticket_code, status, issued_at, used_at`).
					WithArgs("abcdefghijklmnopqrstuvwxyz").
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
			repo := NewTicketRepository(db)
			got, err := repo.GetByCode(ctx, "abcdefghijklmnopqrstuvwxyz")
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

func TestTicketRepository_GetByCodeForUpdate(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, event_id, user_id, registration_id, ticket_code, status, issued_at, used_at\s+FROM tickets\s+WHERE ticket_code = \$1\s+FOR UPDATE`).
		WithArgs("abcdefghijklmnopqrstuvwxyz").
		WillReturnRows(ticketRows("valid", nil))

	repo := NewTicketRepository(db)
	got, err := repo.GetByCodeForUpdate(ctx, "abcdefghijklmnopqrstuvwxyz")
	require.NoError(t, err)
	require.Equal(t, "tk-1", got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_GetValidByRegistration(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, event_id, user_id, registration_id, ticket_code, status, issued_at, used_at\s+FROM tickets\s+WHERE registration_id = \$1 AND status = 'valid'`).
			WithArgs("reg-1").
			WillReturnRows(ticketRows("valid", nil))

		repo := NewTicketRepository(db)
		got, err := repo.GetValidByRegistration(ctx, "reg-1")
		require.NoError(t, err)
		require.Equal(t, domain.TicketStatusValid, got.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no live ticket", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, event_id, user_id, registration_id, ticket_code, status, issued_at, used_at`).
			WithArgs("reg-1").
			WillReturnError(sql.ErrNoRows)

		repo := NewTicketRepository(db)
		_, err = repo.GetValidByRegistration(ctx, "reg-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTicketRepository_ExistsByCode(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM tickets WHERE ticket_code = \$1\)`).
		WithArgs("abcdefghijklmnopqrstuvwxyz").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewTicketRepository(db)
	exists, err := repo.ExistsByCode(ctx, "abcdefghijklmnopqrstuvwxyz")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	used := repoNow

	tests := []struct {
		name    string
		status  domain.TicketStatus
		usedAt  *time.Time
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name:   "mark used",
			status: domain.TicketStatusUsed,
			usedAt: &used,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tickets\s+SET status = \$2, used_at = \$3\s+WHERE id = \$1`).
					WithArgs("tk-1", domain.TicketStatusUsed, sql.NullTime{Time: used, Valid: true}).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:   "mark expired",
			status: domain.TicketStatusExpired,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tickets`).
					WithArgs("tk-1", domain.TicketStatusExpired, sql.NullTime{}).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:   "no rows affected",
			status: domain.TicketStatusCancelled,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tickets`).
					WithArgs("tk-1", domain.TicketStatusCancelled, sql.NullTime{}).
					WillReturnResult(sqlmock.NewResult(0, 0))
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
			repo := NewTicketRepository(db)
			err = repo.UpdateStatus(ctx, "tk-1", tt.status, tt.usedAt)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
