// Package db opens the shop database and prepares its schema and seed data.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"webshop/internal/config"
)

// Open connects to postgres using cfg.DatabaseDSN. A failed connect or ping
// is retried with exponential backoff up to cfg.DBMaxRetries times, each
// wait capped at cfg.DBMaxRetryDelay, since the database may still be
// starting when the app comes up.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	return openWith(ctx, postgres.Open(cfg.DatabaseDSN), cfg.DBMaxRetries, cfg.DBMaxRetryDelay, log)
}

func openWith(ctx context.Context, dialector gorm.Dialector, maxRetries int, maxDelay time.Duration, log zerolog.Logger) (*gorm.DB, error) {
	b := &backoff.Backoff{Min: 500 * time.Millisecond, Max: maxDelay, Factor: 2, Jitter: true}
	gcfg := &gorm.Config{Logger: NewGormLogger(log)}

	for {
		db, err := connect(ctx, dialector, gcfg)
		if err == nil {
			return db, nil
		}
		attempt := int(b.Attempt())
		if attempt >= maxRetries {
			return nil, fmt.Errorf("connect database after %d attempts: %w", attempt+1, err)
		}
		wait := b.Duration()
		log.Warn().Err(err).Int("attempt", attempt+1).Dur("retry_in", wait).Msg("database not ready")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func connect(ctx context.Context, dialector gorm.Dialector, gcfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}
