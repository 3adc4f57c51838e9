package logger

import "strings"

const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

var allowedLevels = map[string]string{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

func enum(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

var (
	allowedStatus  = enum("ok", "fail", "skip", "rate_limited", "cancelled")
	allowedCache   = enum("hit", "miss", "refresh")
	allowedOutcome = enum("ok", "fail", "cancelled", "rate_limited", "denied", "invalid", "gated", "not_found", "conflict")
)

func normalizeLevel(level string) string {
	if level == "" {
		return LevelInfo
	}
	if mapped, ok := allowedLevels[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

func lookupEnum(set map[string]struct{}, raw string) (string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", false
	}
	_, ok := set[raw]
	return raw, ok
}

// normalizeStatus lowercases status; unknown values are kept but reported invalid.
func normalizeStatus(status string) (string, bool) { return lookupEnum(allowedStatus, status) }

func normalizeCache(cache string) (string, bool) { return lookupEnum(allowedCache, cache) }

func normalizeOutcome(outcome string) (string, bool) { return lookupEnum(allowedOutcome, outcome) }

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"run_id",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"phase",
	"flow",
	"role",
	"capability",
	"code",
	"cb_key",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"count",
	"total",
	"success",
	"errors",
	"page",
	"pages",
	"payload",
	"username",
	"mode",
	"listen",
	"public_url",
	"driver",
	"db",
	"host",
	"port",
	"channel_id",
	"err",
	"err_code",
	"error_kind",
	"cause",
}
