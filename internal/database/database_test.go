package database

import (
	"context"
	"fmt"
	"testing"

	"gamevault/backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(errors.Wrap(&pgconn.PgError{Code: "23505"}, "insert friend")))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("constraint failed: UNIQUE constraint failed: friends.user_id, friends.friend_id (1555)")))
}

func TestIsUniqueViolationOnSQLite(t *testing.T) {
	db, err := Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&models.User{Username: "alice", PasswordHash: "x"}).Error)
	err = db.Create(&models.User{Username: "alice", PasswordHash: "y"}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestPing(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	mock.ExpectPing()
	assert.NoError(t, Ping(context.Background(), db))

	mock.ExpectPing().WillReturnError(errors.New("server closed the connection"))
	err = Ping(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping database")

	assert.NoError(t, mock.ExpectationsWereMet())
}
