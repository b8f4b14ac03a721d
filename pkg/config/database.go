package config

import (
	"fmt"
	"time"

	"github.com/anonto42/photogram/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connection
type DB struct {
	Postgres *gorm.DB
	log      *zap.Logger
}

// InitDB opens and pings the PostgreSQL connection described by cfg
func InitDB(cfg *Config, log *zap.Logger) (*DB, error) {
	level := gormlogger.Warn
	if cfg.Env == "development" {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	log.Info("connected to PostgreSQL")
	return &DB{Postgres: db, log: log}, nil
}

// Migrate creates or updates the schema for every model
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() {
	if db.Postgres == nil {
		return
	}
	sqlDB, err := db.Postgres.DB()
	if err != nil {
		db.log.Error("error getting SQL DB from GORM", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		db.log.Error("error closing PostgreSQL connection", zap.Error(err))
		return
	}
	db.log.Info("PostgreSQL connection closed")
}
