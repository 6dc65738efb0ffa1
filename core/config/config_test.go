package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{Token: "1:x", RunMode: " Polling "},
		RateLimit: RateLimitConfig{PerSecond: 2, ExcludeUpdates: []string{" Callback ", ""}},
	}
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, 1, cfg.RateLimit.Burst)
	assert.Equal(t, []string{UpdateCallback}, cfg.RateLimit.ExcludeUpdates)
}

func TestNormalizeReportsEveryProblem(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{RunMode: "webhook"},
		RateLimit: RateLimitConfig{PerSecond: -1, ExcludeUpdates: []string{"poll"}},
	}
	err := Normalize(cfg)
	require.Error(t, err)
	for _, want := range []string{"telegram.token", "webhook.url", "webhook.listen", "webhook.port", "rate_limit.per_second", `"poll"`} {
		assert.Contains(t, err.Error(), want)
	}

	assert.Error(t, Normalize(&Config{Telegram: TelegramConfig{Token: "1:x", RunMode: "carrier-pigeon"}}))
	assert.Error(t, Normalize(nil))
}
