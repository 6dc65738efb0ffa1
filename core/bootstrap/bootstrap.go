// Package bootstrap brings up the infrastructure a bot needs before it can
// take updates: logging first, then the database and its schema.
package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/iskra/core/config"
	coredatabase "github.com/m3rciful/iskra/core/database"
	"github.com/m3rciful/iskra/core/logger"
)

// Options lists the inputs of Run. The func fields default to the real
// logger, connection and migration code.
type Options struct {
	Config *coreconfig.Config
	// Database is nil when the bot runs without Postgres.
	Database *coredatabase.Config
	// Migrations are applied after connecting; nil skips them.
	Migrations fs.FS

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config, fs.FS) (coredatabase.MigrationStatus, error)
}

func (o *Options) fill() {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
}

// Result holds what Run brought up. DB is nil without a database.
type Result struct {
	DB *sqlx.DB
}

// Run initialises the logger, then connects and migrates when a database is
// configured. On error nothing is left open.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	opts.fill()
	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}
	if opts.Database == nil {
		return &Result{}, nil
	}

	db, err := opts.Connect(*opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	if opts.Migrations == nil {
		return &Result{DB: db}, nil
	}
	start := time.Now()
	st, err := opts.Migrate(*opts.Database, opts.Migrations)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}
	logger.Info(logger.Background(), "bootstrap", "schema.ready",
		slog.Int("version", int(st.To)),
		slog.Int("count", len(st.Applied)),
		slog.Duration("took", logger.Took(start)),
	)
	return &Result{DB: db}, nil
}
