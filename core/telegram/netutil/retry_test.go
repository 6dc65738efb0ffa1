package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	tele "gopkg.in/telebot.v4"
)

func TestShouldRetry(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	flood := tele.FloodError{RetryAfter: 3}

	assert.False(t, ShouldRetry(nil))
	assert.False(t, ShouldRetry(context.Canceled))
	assert.True(t, ShouldRetry(dial))
	assert.True(t, ShouldRetry(flood))
	assert.True(t, ShouldRetry(context.DeadlineExceeded))
	assert.True(t, ShouldRetry(fmt.Errorf("send: %w", dial)))
	assert.False(t, ShouldRetry(errors.New("telegram: chat not found (400)")))
	assert.False(t, ShouldRetry(errors.New("boom")))
}

func TestBackoffPrefersFloodWait(t *testing.T) {
	assert.Equal(t, 3*time.Second, Backoff(tele.FloodError{RetryAfter: 3}, time.Second, 1))
	assert.Equal(t, 4*time.Second, Backoff(errors.New("x"), 2*time.Second, 2))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, "", Classify(nil))
	assert.Equal(t, "dns", Classify(&net.DNSError{Err: "no such host", Name: "api.telegram.org"}))
	assert.Equal(t, "dial", Classify(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.Equal(t, "http_4xx", Classify(tele.FloodError{RetryAfter: 1}))
	assert.Equal(t, "http_5xx", Classify(errors.New("telegram: internal error (502)")))
	assert.Equal(t, "unknown", Classify(errors.New("boom")))
}

func TestRedact(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AA-bb_CC/sendMessage": EOF`)
	assert.Equal(t, `Post "https://api.telegram.org/bot<redacted>/sendMessage": EOF`, Redact(err))
	assert.Equal(t, "", Redact(nil))
}
