// Package normalize holds the helpers shared by the per-domain record
// normalizers: tolerant timestamp parsing, display fallbacks and rounding.
package normalize

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// FallbackTime is shown when a clock time is missing or unparsable.
	FallbackTime = "--:--"
	// FallbackDate is shown when a calendar date cannot be derived.
	FallbackDate = "未知日期"
	// SelfLabel replaces the user name on records fetched through list-mine.
	SelfLabel = "我"

	placeholderPrefix = "用戶"

	DateLayout        = "2006-01-02"
	displayDateLayout = "2006/01/02"
	displayTimeLayout = "15:04"
)

// Accepted timestamp layouts, tried in order. Layouts without a zone are read as UTC.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

// ParseTime parses backend timestamps. It never panics; ok is false when no layout matches.
func ParseTime(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// UnixMilli returns the parsed timestamp in milliseconds, or 0 when unparsable.
func UnixMilli(s string) int64 {
	t, ok := ParseTime(s)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

// CalendarDate returns the YYYY-MM-DD day of s in loc, or "" when unparsable.
func CalendarDate(s string, loc *time.Location) string {
	t, ok := ParseTime(s)
	if !ok {
		return ""
	}
	return t.In(orUTC(loc)).Format(DateLayout)
}

// TimeLabel formats s as HH:MM in loc, falling back to FallbackTime.
func TimeLabel(s string, loc *time.Location) string {
	t, ok := ParseTime(s)
	if !ok {
		return FallbackTime
	}
	return t.In(orUTC(loc)).Format(displayTimeLayout)
}

// DateLabel formats s as YYYY/MM/DD in loc, falling back to FallbackDate.
func DateLabel(s string, loc *time.Location) string {
	t, ok := ParseTime(s)
	if !ok {
		return FallbackDate
	}
	return t.In(orUTC(loc)).Format(displayDateLayout)
}

// Today returns the current calendar day in loc.
func Today(now time.Time, loc *time.Location) string {
	return now.In(orUTC(loc)).Format(DateLayout)
}

// Round2 rounds f to two decimal places, half away from zero.
func Round2(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// Percent returns round(100 * part / whole) clamped to [0, 100]. A zero whole yields 0.
func Percent(part, whole int) int {
	if whole <= 0 || part <= 0 {
		return 0
	}
	p := decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole))).
		Round(0).
		IntPart()
	if p > 100 {
		return 100
	}
	return int(p)
}

// PickID prefers id, then the legacy _id, then the empty string.
func PickID(id, legacyID string) string {
	if id != "" {
		return id
	}
	return legacyID
}

// Placeholder is the display name used when a user id cannot be resolved against the roster.
func Placeholder(userID string) string {
	return placeholderPrefix + userID
}

// Optional returns nil for empty or nil strings so that "absent" has a single representation.
func Optional(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
