package utils

import (
	"fmt"
	"log/slog"
	"time"
)

func ParseDurationString(value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return time.Duration(0), fmt.Errorf("invalid time duration '%s' : %s", value, err.Error())
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationString for optional config values: empty or invalid values
// fall back to def, invalid ones are logged.
func ParseDurationOrDefault(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := ParseDurationString(value)
	if err != nil {
		slog.Error("using default duration", slog.String("error", err.Error()), slog.String("default", def.String()))
		return def
	}
	return d
}
