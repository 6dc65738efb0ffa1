// Package config holds the settings every bot built on the core shares:
// Telegram transport, webhook, logging and rate limiting.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Telegram run modes.
const (
	RunModeWebhook  = "webhook"
	RunModeLongpoll = "longpoll"
)

// Update kinds accepted by rate_limit.exclude_updates.
const (
	UpdateCallback    = "callback"
	UpdateMessage     = "message"
	UpdateInlineQuery = "inline_query"
)

var updateKinds = []string{UpdateCallback, UpdateMessage, UpdateInlineQuery}

// TelegramConfig holds the bot identity and how updates are received.
type TelegramConfig struct {
	Token string `yaml:"token" envconfig:"BOT_TOKEN"`
	// AdminID is the moderator chat; it receives moderation requests and reports.
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds is the getUpdates timeout; 0 means 10s.
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig is used when RunMode is webhook.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
	// Secret is echoed by Telegram in X-Telegram-Bot-Api-Secret-Token.
	Secret string `yaml:"secret" envconfig:"WEBHOOK_SECRET"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
	// KeysOrder is a comma separated list of keys written first.
	KeysOrder string `yaml:"keys_order"`
	// DebugSample is "n/d" or "d"; sampled debug events pass n of every d.
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	BotFile     string `yaml:"bot_file"`
	// Profile is the environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// RateLimitConfig is the per-user token bucket. Update kinds listed in
// ExcludeUpdates are never limited.
type RateLimitConfig struct {
	// PerSecond is the sustained rate; 0 disables limiting.
	PerSecond      float64  `yaml:"per_second" envconfig:"RATE_LIMIT_PER_SECOND"`
	Burst          int      `yaml:"burst" envconfig:"RATE_LIMIT_BURST"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Normalize fills defaults and validates cfg. All problems are reported
// together.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		bad("telegram.token is required")
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	switch mode {
	case "", "polling", RunModeLongpoll:
		mode = RunModeLongpoll
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			bad("telegram.longpoll_timeout_seconds must be >= 0")
		}
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			bad("webhook.url is required in webhook mode")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			bad("webhook.listen is required in webhook mode")
		}
		if cfg.Webhook.Port <= 0 {
			bad("webhook.port must be > 0 in webhook mode")
		}
	default:
		bad("invalid telegram.run_mode %q; allowed: %s, %s", cfg.Telegram.RunMode, RunModeWebhook, RunModeLongpoll)
	}
	cfg.Telegram.RunMode = mode

	rl := &cfg.RateLimit
	if rl.PerSecond < 0 {
		bad("rate_limit.per_second must be >= 0")
	}
	if rl.PerSecond > 0 && rl.Burst <= 0 {
		rl.Burst = 1
	}
	kinds := rl.ExcludeUpdates[:0]
	for _, v := range rl.ExcludeUpdates {
		k := strings.ToLower(strings.TrimSpace(v))
		switch {
		case k == "":
		case slices.Contains(updateKinds, k):
			kinds = append(kinds, k)
		default:
			bad("invalid rate_limit.exclude_updates value %q; allowed: %s", v, strings.Join(updateKinds, ", "))
		}
	}
	rl.ExcludeUpdates = kinds

	return errors.Join(errs...)
}
