// Package cmd is the shared entry point of bots built on the core: it loads
// the config, bootstraps the app and runs it until a signal arrives.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreconfig "github.com/m3rciful/iskra/core/config"
	"github.com/m3rciful/iskra/core/logger"
	coretelegram "github.com/m3rciful/iskra/core/telegram"
)

const defaultConfigEnv = "CONFIG_PATH"

// ConfigCarrier exposes the embedded core configuration.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp builds the options the Telegram runtime needs.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Options wires a bot into Run. LoadConfig and Bootstrap are required.
type Options struct {
	// ConfigEnvVar names the variable that overrides DefaultConfigPath;
	// CONFIG_PATH when empty.
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(ctx context.Context, cfg ConfigCarrier) (TelegramApp, error)

	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
}

// ConfigPath returns $env when set and fallback otherwise.
func ConfigPath(env, fallback string) string {
	if env == "" {
		env = defaultConfigEnv
	}
	if p := os.Getenv(env); p != "" {
		return p
	}
	return fallback
}

// Run serves the bot until ctx is done or SIGINT/SIGTERM arrives.
func Run(ctx context.Context, opts Options) error {
	if opts.LoadConfig == nil || opts.Bootstrap == nil {
		return errors.New("cmd: LoadConfig and Bootstrap are required")
	}
	path := ConfigPath(opts.ConfigEnvVar, opts.DefaultConfigPath)
	if path == "" {
		return errors.New("cmd: no config path given")
	}

	// The logger is not up yet.
	log.Printf("loading config: %s", path)
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("cmd: load config: %w", err)
	}
	if cfg == nil || cfg.CoreConfig() == nil {
		return errors.New("cmd: config carries no core section")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	app, err := opts.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap: %w", err)
	}
	shutdown := opts.ShutdownLogger
	if shutdown == nil {
		shutdown = logger.Shutdown
	}
	defer func() {
		if err := shutdown(); err != nil {
			log.Printf("logger shutdown: %v", err)
		}
	}()

	runOpts, err := app.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options: %w", err)
	}
	runOpts.OnStart = chain(runOpts.OnStart, func(ctx context.Context, _ coretelegram.Runtime) error {
		logger.Info(ctx, "app", "ready", slog.Duration("startup", logger.Took(started)))
		return nil
	})
	onStop := runOpts.OnStop
	runOpts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Info(ctx, "app", "shutdown", slog.Duration("uptime", logger.Took(started)))
		if onStop == nil {
			return nil
		}
		return onStop(ctx, rt)
	}

	run := opts.RunTelegram
	if run == nil {
		run = coretelegram.RunTelegram
	}
	return run(ctx, runOpts)
}

type hook = func(context.Context, coretelegram.Runtime) error

// chain runs first, then next unless first failed.
func chain(first, next hook) hook {
	if first == nil {
		return next
	}
	return func(ctx context.Context, rt coretelegram.Runtime) error {
		if err := first(ctx, rt); err != nil {
			return err
		}
		return next(ctx, rt)
	}
}
