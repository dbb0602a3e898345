package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var (
	userCols   = []string{"id", "full_name", "email", "password_hash", "role", "profile_image", "reset_token_hash", "reset_token_expires_at", "created_at", "updated_at"}
	reportCols = []string{"id", "user_id", "title", "name", "phone", "location", "institution", "category", "raw_description", "structured_description", "admin_response", "status", "created_at", "updated_at"}
	fixedTime  = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
)
