package logger

import "strings"

// Canonical level names.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelFatal = "FATAL"
)

// enum is a closed vocabulary of field values keyed by their lower-case form.
type enum map[string]string

func (e enum) lookup(v string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "", false
	}
	if mapped, ok := e[v]; ok {
		return mapped, true
	}
	return v, false
}

func set(values ...string) enum {
	e := make(enum, len(values))
	for _, v := range values {
		e[v] = v
	}
	return e
}

var (
	levels = enum{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"fatal":   LevelFatal,
	}
	statuses = set("ok", "fail", "skip", "retry", "rate_limited", "cancelled", "expired")
	// actions are what a user can do with a candidate card.
	actions  = set("pass", "like", "message", "report")
	outcomes = set("ok", "fail", "cancelled", "rate_limited", "matched", "duplicate", "exhausted", "not_found")
)

func normalizeLevel(level string) string {
	if level == "" {
		return LevelInfo
	}
	if v, ok := levels.lookup(level); ok {
		return v
	}
	return strings.ToUpper(level)
}

// normalizeStatus keeps unknown statuses in lower case and reports them.
func normalizeStatus(status string) (string, bool) { return statuses.lookup(status) }

func normalizeAction(action string) (string, bool) { return actions.lookup(action) }

func normalizeOutcome(outcome string) (string, bool) { return outcomes.lookup(outcome) }

// defaultKeyOrder puts identity and request fields first; keys not listed
// follow in alphabetical order.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "handler",
	"op", "state", "prev_state", "cb_prefix", "kind", "outcome", "duration_ms", "took_ms",
	"action", "actor_id", "target_id", "interaction_id", "match_id", "match_kind",
	"request_id", "reason", "count", "remaining", "candidates",
	"payload", "username", "mode", "listen",
	"driver", "host", "port", "db",
	"err", "cause", "attempt", "delay_ms",
}
