package database

import (
	"errors"
	"strings"

	"multinvest-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrUnsupportedDSN is returned when the DSN scheme matches no known driver.
var ErrUnsupportedDSN = errors.New("unsupported database url: expected postgres://, mysql://, sqlite:// or :memory:")

// Open opens a GORM DB, choosing the driver from the DSN scheme.
// Postgres uses PreferSimpleProtocol so it works behind PgBouncer-style poolers.
// In-memory SQLite is pinned to one connection, since each connection gets its own database.
func Open(dsn string) (*gorm.DB, error) {
	dialector, err := Dialector(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if isMemory(dsn) {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Dialector maps a DSN to its GORM dialector.
func Dialector(dsn string) (gorm.Dialector, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), nil
	case strings.HasPrefix(dsn, "mysql://"):
		return mysql.Open(mysqlDSN(strings.TrimPrefix(dsn, "mysql://"))), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), nil
	case dsn == ":memory:", strings.HasPrefix(dsn, "file:"):
		return sqlite.Open(dsn), nil
	}
	return nil, ErrUnsupportedDSN
}

// mysqlDSN makes sure DATETIME columns scan into time.Time.
func mysqlDSN(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Firm{},
		&domain.Investment{},
		&domain.Withdrawal{},
		&domain.Event{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
