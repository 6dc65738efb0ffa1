package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/m3rciful/iskra/core/logger"
)

// MigrationStatus reports the schema version after a run.
type MigrationStatus struct {
	From    uint
	To      uint
	Dirty   bool
	Applied []string
}

func newMigrator(cfg Config, migrations fs.FS) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrations: %w", err)
	}
	return m, nil
}

func waitReady(cfg Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.wait())
	defer cancel()
	return WaitForPostgres(ctx, cfg.DSN())
}

// RunMigrations applies every pending up migration found in migrations.
func RunMigrations(cfg Config, migrations fs.FS) (MigrationStatus, error) {
	var status MigrationStatus
	if err := waitReady(cfg); err != nil {
		logger.Error(logger.Background(), "db.migrate", "db.migrate",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return status, fmt.Errorf("database not ready: %w", err)
	}

	files := listMigrationFiles(migrations)
	preview, truncated := logger.SummarizeStrings(files, 6)
	attrs := []slog.Attr{
		slog.Int("count", len(files)),
	}
	if preview != "" {
		attrs = append(attrs, slog.String("files_preview", preview))
	}
	if truncated {
		attrs = append(attrs, slog.Bool("files_truncated", true))
	}
	logger.Debug(logger.Background(), "db.migrate", "resolve", attrs...)

	m, err := newMigrator(cfg, migrations)
	if err != nil {
		logger.Error(logger.Background(), "db.migrate", "db.migrate",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return status, err
	}
	defer m.Close()

	fromVer, _, _ := m.Version()
	status.From = fromVer

	start := time.Now()
	upErr := m.Up()
	took := time.Since(start)

	switch {
	case upErr == nil:
	case errors.Is(upErr, migrate.ErrNoChange):
		status.To = fromVer
		logger.Info(logger.Background(), "db.migrate", "summary",
			slog.String("status", "skip"),
			slog.Uint64("from_ver", uint64(fromVer)),
			slog.Uint64("to_ver", uint64(fromVer)),
			slog.Int("count", 0),
			slog.Duration("duration", logger.RoundMS(took)),
		)
		return status, nil
	default:
		logger.Error(logger.Background(), "db.migrate", "apply",
			slog.String("status", "fail"),
			slog.String("err", upErr.Error()),
			slog.Duration("duration", logger.RoundMS(took)),
		)
		return status, fmt.Errorf("migration execution failed: %w", upErr)
	}

	toVer, dirty, _ := m.Version()
	status.To = toVer
	status.Dirty = dirty
	status.Applied = selectApplied(files, uint64(fromVer), uint64(toVer))

	logger.Info(logger.Background(), "db.migrate", "summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(fromVer)),
		slog.Uint64("to_ver", uint64(toVer)),
		slog.Int("count", len(status.Applied)),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	return status, nil
}

// MigrationVersion returns the current schema version without applying anything.
func MigrationVersion(cfg Config, migrations fs.FS) (uint, bool, error) {
	m, err := newMigrator(cfg, migrations)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func listMigrationFiles(migrations fs.FS) []string {
	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".up.sql") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func parseVersion(name string) uint64 {
	head, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(head, 10, 64)
	return v
}

func selectApplied(files []string, from, to uint64) []string {
	if to <= from {
		return nil
	}
	var out []string
	for _, f := range files {
		v := parseVersion(f)
		if v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
