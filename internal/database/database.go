package database

import (
	"context"
	"strings"

	"gamevault/backend/internal/logging"
	"gamevault/backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// uniqueViolation is the postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) *gorm.DB {
	db, err := Open(postgres.Open(dsn))
	if err != nil {
		logging.Log.Fatalf("Failed to connect to database: %v", err)
	}

	logging.Log.Info("Database connection established.")

	if err := Migrate(db); err != nil {
		logging.Log.Fatalf("Failed to migrate database: %v", err)
	}

	logging.Log.Info("Database migrated successfully.")

	DB = db
	return db
}

// Open opens a gorm handle on any dialector with the application's settings.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:         logging.Gorm(),
		TranslateError: true,
	})
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// Ping checks that the underlying connection pool can reach the database.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	return errors.Wrap(sqlDB.PingContext(ctx), "ping database")
}

// IsUniqueViolation reports whether err was caused by a unique or primary key
// constraint, whichever driver produced it.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
