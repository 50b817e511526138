package utils

import "time"

// FormatEventDate renders a date for invitation emails, e.g.
// "Sunday, June 1, 2025".
func FormatEventDate(t time.Time) string {
	return t.Format("Monday, January 2, 2006")
}

// FormatEventTime renders a 12-hour clock time, e.g. "6:00 PM".
func FormatEventTime(t time.Time) string {
	return t.Format("3:04 PM")
}
