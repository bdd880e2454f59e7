package domain

import (
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime coerces an API timestamp into a time.Time. Timestamps without a
// zone are taken as UTC; empty or unparseable values give the zero time.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC()
		}
	}

	return time.Time{}
}

// ParseOptionalTime is ParseTime for nullable fields
func ParseOptionalTime(value *string) *time.Time {
	if value == nil {
		return nil
	}
	parsed := ParseTime(*value)
	if parsed.IsZero() {
		return nil
	}
	return &parsed
}
