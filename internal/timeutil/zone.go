// internal/timeutil/zone.go
package timeutil

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// CanonicalLayout is the storage format for all absolute times: UTC, second
// precision, trailing literal 'Z'. Fixed width means lexical order equals
// temporal order, so stored strings can be compared directly in SQL.
const CanonicalLayout = "2006-01-02T15:04:05Z"

// DateLayout is the format for calendar dates (reminders). No time, no zone.
const DateLayout = "2006-01-02"

// DefaultTimezone is used when no override and no persisted setting exist.
const DefaultTimezone = "Europe/Rome"

// FormatUTC renders t as a canonical UTC string.
func FormatUTC(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(CanonicalLayout)
}

// NowUTC returns the current time as a canonical UTC string.
func NowUTC() string {
	return FormatUTC(time.Now())
}

// ParseUTC parses a canonical UTC string back into an aware time.
// RFC 3339 strings with an explicit offset are accepted too.
func ParseUTC(s string) (time.Time, error) {
	if t, err := time.Parse(CanonicalLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse canonical time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// Zone resolves the display timezone and converts between wall-clock input
// and canonical UTC storage. Resolution precedence: runtime override,
// then persisted setting, then the configured default. An invalid name at
// any level falls back to UTC.
//
// The override is the only mutable slot; it is process-wide and explicit.
// Set it once at startup or per request, and clear it to fall back to the
// persisted setting.
type Zone struct {
	mu        sync.RWMutex
	override  string
	persisted func() (string, error) // may be nil; errors are treated as "unset"
	def       string
}

func NewZone(def string, persisted func() (string, error)) *Zone {
	if strings.TrimSpace(def) == "" {
		def = DefaultTimezone
	}
	return &Zone{persisted: persisted, def: def}
}

// SetOverride installs a process-local timezone override.
func (z *Zone) SetOverride(name string) {
	z.mu.Lock()
	z.override = strings.TrimSpace(name)
	z.mu.Unlock()
}

// ClearOverride removes the override, restoring persisted/default resolution.
func (z *Zone) ClearOverride() {
	z.SetOverride("")
}

// ResolveName returns the timezone name that Location will attempt to load.
func (z *Zone) ResolveName() string {
	z.mu.RLock()
	override := z.override
	z.mu.RUnlock()
	if override != "" {
		return override
	}
	if z.persisted != nil {
		if name, err := z.persisted(); err == nil && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
	}
	return z.def
}

// Location loads the resolved timezone, falling back to UTC when the name
// is not a valid IANA zone.
func (z *Zone) Location() *time.Location {
	loc, err := time.LoadLocation(z.ResolveName())
	if err != nil {
		return time.UTC
	}
	return loc
}

// naive wall-clock layouts accepted from user input.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// NormalizeInput converts a user-supplied time string to canonical UTC.
// Strings carrying an explicit offset (RFC 3339 or canonical) are absolute;
// naive strings are interpreted in the resolved display timezone.
func (z *Zone) NormalizeInput(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty time string")
	}
	if t, err := ParseUTC(s); err == nil {
		return FormatUTC(t), nil
	}
	loc := z.Location()
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return FormatUTC(t), nil
		}
	}
	return "", fmt.Errorf("unrecognized time string %q", s)
}

// ToLocal parses a canonical UTC string into the display timezone.
func (z *Zone) ToLocal(s string) (time.Time, error) {
	t, err := ParseUTC(s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(z.Location()), nil
}
