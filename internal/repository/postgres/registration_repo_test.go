package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityevents/internal/domain"
)

func TestRegistrationRepository_Exists(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    bool
		wantErr bool
	}{
		{
			name: "exists",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("user-1", "event-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			want: true,
		},
		{
			name: "does not exist",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("user-1", "event-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			want: false,
		},
		{
			name: "malformed uuid reports false",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WillReturnError(&pq.Error{Code: "22P02"})
			},
			want: false,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			got, err := repo.Exists(ctx, "user-1", "event-1")
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_Create(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		errIs   error
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO registrations \(id, user_id, event_id, registered_at\)`).
					WithArgs(sqlmock.AnyArg(), "user-1", "event-1", fixed).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-1"))
			},
			wantID: "reg-1",
		},
		{
			name: "conflict swallowed by ON CONFLICT returns ErrConflict",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`ON CONFLICT \(user_id, event_id\) DO NOTHING`).
					WithArgs(sqlmock.AnyArg(), "user-1", "event-1", fixed).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantErr: true,
			errIs:   domain.ErrConflict,
		},
		{
			name: "unique violation returns ErrConflict",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: true,
			errIs:   domain.ErrConflict,
		},
		{
			name: "foreign key violation returns ErrNotFound",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnError(&pq.Error{Code: "23503"})
			},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
		{
			name: "malformed id returns ErrNotFound",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnError(&pq.Error{Code: "22P02"})
			},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := &registrationRepository{DB: db, now: func() time.Time { return fixed }}
			reg, err := repo.Create(ctx, "user-1", "event-1")
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, reg)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, reg.ID)
				assert.Equal(t, "user-1", reg.UserID)
				assert.Equal(t, "event-1", reg.EventID)
				assert.Equal(t, fixed, reg.RegisteredAt)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_ListByUser(t *testing.T) {
	ctx := context.Background()
	t1 := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("returns rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, user_id, event_id, registered_at\s+FROM registrations`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "event_id", "registered_at"}).
				AddRow("r1", "user-1", "e1", t1).
				AddRow("r2", "user-1", "e2", t2))

		regs, err := NewRegistrationRepository(db).ListByUser(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, regs, 2)
		assert.Equal(t, "r1", regs[0].ID)
		assert.Equal(t, "e2", regs[1].EventID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("none returns empty slice", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM registrations`).
			WithArgs("user-2").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "event_id", "registered_at"}))

		regs, err := NewRegistrationRepository(db).ListByUser(ctx, "user-2")
		require.NoError(t, err)
		assert.NotNil(t, regs)
		assert.Empty(t, regs)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM registrations`).WillReturnError(sql.ErrConnDone)

		_, err = NewRegistrationRepository(db).ListByUser(ctx, "user-1")
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
