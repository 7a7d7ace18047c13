package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"crm/internal/config"
	"crm/internal/models"
	console "crm/internal/utils/logger"
)

var DB *gorm.DB
var log = console.New("DB")

// Connect opens the configured database and runs migrations. PostgreSQL is
// used when a host is configured; otherwise a local SQLite file keeps
// development setup to zero.
func Connect(cfg *config.Config) error {
	var err error

	if cfg.Database.UsePostgres() {
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			cfg.Database.Host,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
			cfg.Database.Port,
			cfg.Database.SSLMode,
		)

		log.Info("connecting to postgres at %s:%d", cfg.Database.Host, cfg.Database.Port)
		DB, err = gorm.Open(postgres.Open(dsn), gormConfig())
		if err != nil {
			return log.Error("failed to connect to postgres", err)
		}

		sqlDB, err := DB.DB()
		if err != nil {
			return log.Error("failed to get underlying *sql.DB instance", err)
		}
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(30 * time.Minute)
	} else {
		log.Info("connecting to sqlite at %s", cfg.Database.SQLitePath)
		DB, err = gorm.Open(sqlite.Open(cfg.Database.SQLitePath), gormConfig())
		if err != nil {
			return log.Error("failed to connect to sqlite", err)
		}
	}

	if err := Migrate(DB); err != nil {
		return log.Error("failed to run migrations", err)
	}

	log.Success("database ready")
	return nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Warn),
		PrepareStmt: true,
	}
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			// Base entities
			&models.User{},
			&models.PermissionSet{},
			&models.CustomObject{},

			// Permission rows
			&models.PermissionSetPermission{},
			&models.UserPermission{},
			&models.UserPermissionSet{},

			// Session bookkeeping
			&models.AuthSession{},

			// Business records
			&models.Contact{},
			&models.Account{},
			&models.Opportunity{},
			&models.Lead{},
			&models.CustomRecord{},
		)
	})
}

func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}
