package database

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{
	"id", "full_name", "email", "phone", "password_hash", "roles", "status",
	"last_login_at", "created_at", "updated_at",
}

func TestCreateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(Wrap(db))

	t.Run("Success", func(t *testing.T) {
		user := &models.User{FullName: "Ann Perera", Email: " Ann@Example.com ", PasswordHash: "hash"}

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(sqlmock.AnyArg(), "Ann Perera", "ann@example.com", sqlmock.AnyArg(), "hash",
				sqlmock.AnyArg(), "active", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(context.Background(), user)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "ann@example.com", user.Email)
		assert.Equal(t, pq.StringArray{models.RolePassenger}, user.Roles)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Create(context.Background(), &models.User{Email: "a@b.c"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create user")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		err := repo.Create(context.Background(), &models.User{Email: "a@b.c"})
		assert.ErrorIs(t, err, ErrDuplicate)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUserByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(Wrap(db))

	t.Run("Found", func(t *testing.T) {
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
			WithArgs("ann@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
				userID.String(), "Ann Perera", "ann@example.com", "+94771234567", "hash",
				[]byte(`{passenger,operator}`), "active", nil, now, now,
			))

		user, err := repo.GetByEmail(context.Background(), "ANN@example.com")
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "+94771234567", user.Phone.String)
		assert.True(t, user.HasRole(models.RoleOperator))
		assert.False(t, user.LastLoginAt.Valid)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByEmail(context.Background(), "nobody@example.com")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUserByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(Wrap(db))
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			userID.String(), "Ann Perera", "ann@example.com", nil, "hash",
			[]byte(`{passenger}`), "active", now, now, now,
		))

	user, err := repo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, user.Phone.Valid)
	assert.True(t, user.LastLoginAt.Valid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLastLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(Wrap(db))
	userID := uuid.New()

	mock.ExpectExec(`UPDATE users SET last_login_at = NOW\(\)`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
