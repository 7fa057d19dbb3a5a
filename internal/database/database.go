package database

import (
	"errors"
	"fmt"
	"time"

	"fintrack/internal/logger"
	"fintrack/internal/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Manager handles database operations
type Manager struct {
	db  *gorm.DB
	cfg *Config
}

// NewManager opens the configured database. TranslateError is enabled so
// unique and foreign-key violations surface as gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated regardless of driver.
func NewManager(config *Config) (*Manager, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(config.SQLitePath)
	default:
		dialector = postgres.New(postgres.Config{
			DSN:                  config.DSN(),
			PreferSimpleProtocol: true,
		})
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Manager{db: db, cfg: config}, nil
}

// RunMigrations brings the schema up to date. Postgres uses the SQL files in
// the migrations directory; SQLite (local development) uses AutoMigrate.
func (m *Manager) RunMigrations() error {
	log := logger.Get()
	log.Infow("Running database migrations", "driver", m.cfg.Driver)

	if m.cfg.Driver == DriverSQLite {
		if err := m.db.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("auto-migrate failed: %w", err)
		}
		if err := CreateUniqueIndexes(m.db); err != nil {
			return err
		}
		if err := SeedCurrencies(m.db); err != nil {
			return err
		}
		log.Info("Database migrations completed successfully")
		return nil
	}

	mig, err := migrate.New("file://"+m.cfg.MigrationsPath, m.cfg.MigrateURL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			log.Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			log.Warnf("migrate database close error: %v", dbErr)
		}
	}()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}

// uniqueIndexes match the partial unique indexes of the initial SQL
// migration. AutoMigrate cannot express expression or partial indexes.
var uniqueIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_accounts_user_name_active
		ON accounts (user_id, lower(name)) WHERE active`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_categories_user_parent_name_active
		ON categories (user_id, parent_id, lower(name)) WHERE active`,
}

// CreateUniqueIndexes adds the name-uniqueness indexes to an auto-migrated schema.
func CreateUniqueIndexes(db *gorm.DB) error {
	for _, stmt := range uniqueIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create unique index: %w", err)
		}
	}
	return nil
}

// DefaultCurrencies mirrors the seed rows of the initial SQL migration.
var DefaultCurrencies = []models.Currency{
	{Code: "EUR", Description: "Euro", Active: true},
	{Code: "GBP", Description: "British Pound", Active: true},
	{Code: "JPY", Description: "Japanese Yen", Active: true},
	{Code: "PLN", Description: "Polish Zloty", Active: true},
	{Code: "USD", Description: "US Dollar", Active: true},
}

// SeedCurrencies inserts the default currencies, skipping codes that exist.
func SeedCurrencies(db *gorm.DB) error {
	rows := make([]models.Currency, len(DefaultCurrencies))
	copy(rows, DefaultCurrencies)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to seed currencies: %w", err)
	}
	return nil
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close releases the connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
