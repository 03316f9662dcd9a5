// Package study holds the week-numbering rules that gate weekly
// feedback and photo uploads. Week numbers are derived, never
// stored as the source of truth.
package study

import "time"

const (
	// MaxWeek is the length of the study in weeks. Derived week
	// numbers are clamped here so a participant who keeps using
	// the portal after the study window still lands on the final
	// week instead of an out-of-range value.
	MaxWeek = 12

	// MaxUploadWeek is the looser bound accepted for photo
	// uploads, tolerating administrative backfill beyond the
	// study window.
	MaxUploadWeek = 52
)

// WeekNumber converts an enrollment timestamp and a query time into
// a 1-based study week in [1,MaxWeek]. A negative delta (clock skew
// or a bad enrollment timestamp) degrades to week 1 rather than
// failing: the week number gates feature access, and a hard error
// here would lock a participant out entirely.
func WeekNumber(enrolledAt, now time.Time) int {
	days := int(now.Sub(enrolledAt).Hours() / 24)
	if days < 0 {
		return 1
	}
	week := days/7 + 1
	if week > MaxWeek {
		return MaxWeek
	}
	return week
}

// WeekNumberFromString parses an RFC 3339 enrollment timestamp and
// derives the current week. Any parse failure degrades to week 1,
// matching the fail-soft contract of WeekNumber.
func WeekNumberFromString(enrolledAt string, now time.Time) int {
	t, err := time.Parse(time.RFC3339, enrolledAt)
	if err != nil {
		return 1
	}
	return WeekNumber(t, now)
}

// ValidFeedbackWeek reports whether n is an acceptable explicit
// week for feedback submission.
func ValidFeedbackWeek(n int) bool { return n >= 1 && n <= MaxWeek }

// ValidUploadWeek reports whether n is an acceptable week for a
// photo upload.
func ValidUploadWeek(n int) bool { return n >= 1 && n <= MaxUploadWeek }
