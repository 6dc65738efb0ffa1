// Package app wires configuration, storage, sessions and the bot handlers into
// a runnable Telegram application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/m3rciful/iskra/core/bootstrap"
	corecmd "github.com/m3rciful/iskra/core/cmd"
	coredatabase "github.com/m3rciful/iskra/core/database"
	"github.com/m3rciful/iskra/core/logger"
	tg "github.com/m3rciful/iskra/core/telegram"
	"github.com/m3rciful/iskra/core/telegram/router"
	"github.com/m3rciful/iskra/core/telegram/sender"
	"github.com/m3rciful/iskra/internal/bot"
	"github.com/m3rciful/iskra/internal/candidates"
	"github.com/m3rciful/iskra/internal/config"
	"github.com/m3rciful/iskra/internal/domain"
	"github.com/m3rciful/iskra/internal/i18n"
	"github.com/m3rciful/iskra/internal/matching"
	"github.com/m3rciful/iskra/internal/metrics"
	"github.com/m3rciful/iskra/internal/session"
	"github.com/m3rciful/iskra/internal/storage/memory"
	"github.com/m3rciful/iskra/internal/storage/postgres"
	"github.com/m3rciful/iskra/migrations"

	tele "gopkg.in/telebot.v4"
)

const defaultLang = "en"

// App owns the long-lived collaborators of a running bot.
type App struct {
	cfg      *config.Config
	db       *sqlx.DB
	repos    domain.Repositories
	sessions *session.Store
	metrics  *metrics.Metrics
	text     i18n.Localizer
	health   metrics.HealthFunc

	cancel context.CancelFunc
	bg     errgroup.Group
}

// New initialises logging and storage for cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	return newApp(ctx, cfg, bootstrap.Options{})
}

// newApp takes the bootstrap hooks; Config, Database and Migrations are
// filled from cfg.
func newApp(ctx context.Context, cfg *config.Config, hooks bootstrap.Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	opts := hooks
	opts.Config = &cfg.Core
	if cfg.UsesPostgres() {
		db := cfg.Database
		opts.Database = &db
		opts.Migrations = migrations.FS
	}
	res, err := bootstrap.Run(opts)
	if err != nil {
		return nil, err
	}

	cat, err := i18n.Load()
	if err != nil {
		closeDB(res.DB)
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		db:       res.DB,
		sessions: session.NewStore(session.WithShards(cfg.Session.Shards)),
		metrics:  metrics.New(),
		text:     cat.Lang(defaultLang),
	}
	if res.DB != nil {
		a.repos = postgres.Repositories(res.DB)
		a.health = postgres.Ping(res.DB)
	} else {
		a.repos = memory.New().Repositories()
	}
	logger.Info(ctx, "app", "app.bootstrap",
		slog.String("storage", cfg.Storage.Driver),
		slog.Int("shards", cfg.Session.Shards),
	)
	return a, nil
}

// Bootstrap adapts New to the shared command runner.
func Bootstrap(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	c, ok := cfg.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", cfg)
	}
	a, err := New(ctx, c)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// LoadConfig adapts config.Load to the shared command runner.
func LoadConfig(path string) (corecmd.ConfigCarrier, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// TelegramRunOptions describes the bot for tg.RunTelegram.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	return tg.RunOptions{
		Config:            &a.cfg.Core,
		Registry:          tg.NewRegistry(),
		DispatcherOptions: sender.Options{OnResult: a.metrics.SendResult},
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Core, tg.MiddlewareOptions{
			OnLimited:   a.onLimited,
			RateLimited: a.metrics.RateLimited,
			Updates:     a.metrics,
		}),
		BuildRoutes: a.buildRoutes,
		OnStart:     a.start,
		OnStop:      a.stop,
	}, nil
}

// buildRoutes assembles the engine and handlers once the outbox exists.
func (a *App) buildRoutes(rt tg.Runtime) ([]tg.Route, error) {
	adminID := a.cfg.Core.Telegram.AdminID
	engine := matching.NewEngine(a.repos.Users, a.repos.Interactions, a.repos.Matches, matching.Options{
		Notifier: bot.NewNotifier(a.repos, rt.Outbox, a.text, adminID),
		Observer: a.metrics,
	})
	b := bot.New(bot.Deps{
		Sessions: a.sessions,
		Repos:    a.repos,
		Engine:   engine,
		Selector: candidates.NewSelector(a.repos, candidates.Bounds{
			Floor:   a.cfg.Dating.AgeFloor,
			Ceiling: a.cfg.Dating.AgeCeiling,
		}, nil),
		Outbox:  rt.Outbox,
		Text:    a.text,
		Dating:  a.cfg.Dating,
		AdminID: adminID,
	})
	if err := b.Register(rt.Registry); err != nil {
		return nil, fmt.Errorf("app: register handlers: %w", err)
	}
	return router.Routes(rt.Registry, a.sessions, router.Options{
		AdminID:       adminID,
		OnAdminReject: b.OnAdminReject,
		Observer:      a.metrics,
	}), nil
}

func (a *App) onLimited(c tele.Context) error {
	if c.Callback() == nil {
		return nil
	}
	return c.Respond(&tele.CallbackResponse{Text: a.text.T("errors.slow_down")})
}

// start launches the session pruner and the admin listener.
func (a *App) start(ctx context.Context, _ tg.Runtime) error {
	ctx, a.cancel = context.WithCancel(ctx)
	pruner := session.Pruner{
		Store:    a.sessions,
		Interval: a.cfg.Session.PruneInterval,
		MaxAge:   a.cfg.Session.TTL,
		Observe: func(removed, remaining int) {
			a.metrics.SessionsPruned(removed)
			a.metrics.SetSessions(remaining)
		},
	}
	a.bg.Go(func() error {
		pruner.Run(ctx)
		return nil
	})
	if addr := a.cfg.Metrics.Listen; addr != "" {
		h := metrics.Handler(a.metrics, a.health)
		a.bg.Go(func() error { return metrics.Serve(ctx, addr, h) })
	}
	return nil
}

// stop cancels the background work and releases the database.
func (a *App) stop(ctx context.Context, _ tg.Runtime) error {
	if a.cancel != nil {
		a.cancel()
	}
	err := a.bg.Wait()
	logger.Info(ctx, "app", "app.stopped", slog.Int("sessions", a.sessions.Len()))
	if a.db != nil {
		err = errors.Join(err, a.db.Close())
	}
	return err
}

// Migrate applies the embedded schema to the configured database.
func Migrate(cfg *config.Config) (coredatabase.MigrationStatus, error) {
	if !cfg.UsesPostgres() {
		return coredatabase.MigrationStatus{}, fmt.Errorf("app: migrations need storage.driver %q", config.DriverPostgres)
	}
	start := time.Now()
	st, err := coredatabase.RunMigrations(cfg.Database, migrations.FS)
	if err != nil {
		return st, err
	}
	logger.Info(logger.Background(), "app", "migrate.done",
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return st, nil
}

func closeDB(db *sqlx.DB) {
	if db != nil {
		_ = db.Close()
	}
}
