package shared

import (
	"time"
)

// DateLayout is the wire format for all calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO-8601 calendar date. The zero string is rejected;
// use ParseOptionalDate for nullable fields.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, Safe("日期格式错误，请使用 YYYY-MM-DD")
	}
	return t, nil
}

// ParseOptionalDate parses a date string that may be empty. An empty string
// yields a nil time without error.
func ParseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate renders a date in the wire format, empty for nil.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
