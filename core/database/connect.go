package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/iskra/core/logger"
)

const (
	driverName          = "postgres"
	defaultWait         = 30 * time.Second
	defaultPool         = 10
	connectRetryBackoff = 2 * time.Second
)

// Connect opens a pool to cfg, retrying while the server is still starting,
// and sizes it from cfg.MaxConnections.
func Connect(cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.wait())
	defer cancel()

	start := time.Now()
	db, attempts, err := dial(ctx, cfg.DSN())
	if err != nil {
		logger.Error(ctx, "db", "db.connect", append(cfg.logAttrs(),
			slog.String("status", "fail"),
			slog.Int("attempts", attempts),
			slog.String("err", err.Error()),
		)...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	pool := cfg.MaxConnections
	if pool <= 0 {
		pool = defaultPool
	}
	db.SetMaxOpenConns(pool)
	db.SetMaxIdleConns(pool)
	db.SetConnMaxIdleTime(5 * time.Minute)

	logger.Info(ctx, "db", "db.connect", append(cfg.logAttrs(),
		slog.String("status", "ok"),
		slog.Int("pool_open", pool),
		slog.Int("attempts", attempts),
		slog.Duration("took", logger.Took(start)),
	)...)
	return db, nil
}

// WaitForPostgres blocks until the server at dsn answers a ping or ctx ends.
func WaitForPostgres(ctx context.Context, dsn string) error {
	db, _, err := dial(ctx, dsn)
	if err != nil {
		return err
	}
	return db.Close()
}

// dial connects and pings until it succeeds or ctx is done. It returns the
// number of attempts made.
func dial(ctx context.Context, dsn string) (*sqlx.DB, int, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		db, err := sqlx.ConnectContext(ctx, driverName, dsn)
		if err == nil {
			return db, attempt, nil
		}
		lastErr = err
		t := time.NewTimer(connectRetryBackoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, attempt, fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
		case <-t.C:
		}
		logger.Debug(ctx, "db", "db.connect",
			slog.String("status", "retry"),
			slog.Int("attempt", attempt),
			slog.String("err", lastErr.Error()),
		)
	}
}

func (c Config) wait() time.Duration {
	if c.ConnectTimeout > 0 {
		return c.ConnectTimeout
	}
	return defaultWait
}

func (c Config) logAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("driver", driverName),
		slog.String("host", c.Host),
		slog.String("port", c.Port),
		slog.String("db", c.Name),
	}
}
