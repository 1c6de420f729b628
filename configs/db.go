package configs

import (
	"fmt"
	"strings"

	"littlelemon/entity"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase connects to sqlite (path) or postgres (DSN).
func OpenDatabase(driver, source string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "", "sqlite":
		dialector = sqlite.Open(sqliteDSN(source))
	case "postgres":
		dialector = postgres.Open(source)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

// sqlite enforces foreign keys per connection, so the pragma goes in the DSN.
// Transactions begin IMMEDIATE so concurrent writers queue on the busy
// timeout instead of failing when both try to upgrade a read lock.
func sqliteDSN(source string) string {
	if strings.Contains(source, "_foreign_keys") {
		return source
	}
	sep := "?"
	if strings.Contains(source, "?") {
		sep = "&"
	}
	return source + sep + "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Group{}, &entity.User{},
		&entity.Category{}, &entity.MenuItem{},
		&entity.CartItem{},
		&entity.Order{}, &entity.OrderItem{},
	)
}
