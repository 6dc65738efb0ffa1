// Package logger is the structured logging layer: one flat line per event,
// JSON in production and key=value while debugging.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/iskra/core/buildinfo"
	coreconfig "github.com/m3rciful/iskra/core/config"
)

const defaultDebugSample = "1/50"

var (
	mu      sync.Mutex
	started bool
	writer  *asyncWriter
	files   []io.Closer

	levelVar     slog.LevelVar
	debugSampler = newRatioSampler(1, 50)
	traceAll     bool

	// L is the base logger; nil until InitLogger runs.
	L *slog.Logger
)

// InitLogger installs the global logger described by cfg. Later calls are
// ignored until Shutdown.
func InitLogger(cfg *coreconfig.Config) error {
	mu.Lock()
	defer mu.Unlock()
	if started {
		return nil
	}
	var lc coreconfig.LoggingConfig
	if cfg != nil {
		lc = cfg.Logging
	}

	outputs, closers, err := openOutputs(lc)
	if err != nil {
		return err
	}
	levelVar.Set(parseLevel(lc.Level))
	debugSampler.Set(parseDebugSample(lc.DebugSample))
	traceAll = truthy(os.Getenv("LOG_TRACE")) || truthy(os.Getenv("TRACE"))

	files = closers
	writer = newAsyncWriter(outputs, 64*1024)
	L = slog.New(newStructuredHandler(handlerConfig{
		level:    &levelVar,
		writer:   writer,
		format:   parseFormat(lc),
		keyOrder: parseKeyOrder(lc.KeysOrder),
	}))
	slog.SetDefault(L)
	started = true

	Info(context.Background(), "app", "startup",
		slog.String("go_version", runtime.Version()),
		slog.String("build_version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("cfg_profile", profile(lc)),
	)
	return nil
}

// Shutdown flushes pending lines and closes log files.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()
	if !started {
		return nil
	}
	started = false
	var errs []error
	if writer != nil {
		errs = append(errs, writer.Close())
	}
	for _, c := range files {
		errs = append(errs, c.Close())
	}
	files = nil
	return errors.Join(errs...)
}

func openOutputs(lc coreconfig.LoggingConfig) ([]io.Writer, []io.Closer, error) {
	outputs := []io.Writer{os.Stdout}
	dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile)
	if dir == "" || name == "" {
		return outputs, nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("logger: create dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: open file: %w", err)
	}
	return append(outputs, f), []io.Closer{f}, nil
}

func profile(lc coreconfig.LoggingConfig) string {
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		return p
	}
	return "prod"
}

// parseFormat honours an explicit format and otherwise picks key=value for
// the debug and dev profiles.
func parseFormat(lc coreconfig.LoggingConfig) logFormat {
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	if p := profile(lc); p == "debug" || p == "dev" {
		return formatKV
	}
	return formatJSON
}

func parseKeyOrder(raw string) []string {
	var order []string
	if raw = strings.TrimSpace(raw); raw != "default" {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				order = append(order, k)
			}
		}
	}
	if len(order) == 0 {
		return append([]string(nil), defaultKeyOrder...)
	}
	return order
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// parseDebugSample reads logging.debug_sample. An empty spec means 1/50; an
// invalid one disables sampling.
func parseDebugSample(spec string) (int, int) {
	if strings.TrimSpace(spec) == "" {
		spec = defaultDebugSample
	}
	return parseRatioSpec(spec)
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Background returns context.Background().
func Background() context.Context {
	return context.Background()
}

// LogEvent writes event through logg, or through the context logger when logg
// is nil. Without any logger the event is dropped.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns the base logger tagged with component name.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Event logs event for component at level.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), level, event, attrs...)
}

func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether the next high volume debug event should
// be logged. LOG_TRACE=1 logs all of them.
func ShouldSampleDebug() bool {
	return traceAll || debugSampler.Allow()
}
