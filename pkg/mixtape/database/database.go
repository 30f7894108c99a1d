package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikepea/mixtape/pkg/mixtape/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Supported database types.
const (
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"
	DBTypeMySQL    = "mysql"
)

var DB *gorm.DB

// Connect initializes the database connection using the driver selected
// by cfg.DBType. SQLite is the default and is what tests use.
func Connect(cfg config.Config) error {
	dialector, err := buildDialector(cfg)
	if err != nil {
		return err
	}

	// TranslateError maps driver unique-constraint violations to
	// gorm.ErrDuplicatedKey, which the handlers turn into 409s.
	DB, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", cfg.DBType, err)
	}
	return nil
}

// GetDB returns the database instance.
func GetDB() *gorm.DB {
	return DB
}

func buildDialector(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case DBTypeSQLite, "":
		path := cfg.DBPath
		if path == "" {
			path = "data/mixtape.db"
		}
		// SQLite creates the file on connect, but only if the directory exists
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
			}
		}
		return sqlite.Open(path), nil
	case DBTypePostgres:
		dsn := cfg.DSNURL
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		}
		return postgres.Open(dsn), nil
	case DBTypeMySQL:
		dsn := cfg.DSNURL
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		}
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}
}
