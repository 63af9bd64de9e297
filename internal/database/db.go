package database

import (
	"context"
	"fmt"
	"time"

	"github.com/justsurfingit/placement-tracker/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Options struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxLife  time.Duration

	// ConnectAttempts bounds the ping retries at startup. Zero means 5.
	ConnectAttempts int
	RetryDelay      time.Duration
}

// Connect opens the pool, waits for Postgres to answer and migrates the
// schema.
func Connect(ctx context.Context, opts Options, logger zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLife > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLife)
	}

	attempts := opts.ConnectAttempts
	if attempts <= 0 {
		attempts = 5
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}
	err = retry(ctx, attempts, delay, logger, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return sqlDB.PingContext(pingCtx)
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info().Msg("Database connection established")

	logger.Info().Msg("Running migrations")
	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Student{}, &models.JobPost{}, &models.Applicant{}, &models.JobEvent{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// retry executes f with exponential backoff until it succeeds, attempts run
// out or ctx is done.
func retry(ctx context.Context, attempts int, sleep time.Duration, logger zerolog.Logger, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		logger.Warn().Err(err).Dur("retry_in", sleep).Int("attempt", i+1).Msg("database not ready")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}
