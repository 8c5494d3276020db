// Package temporal holds the two calendar value kinds spec.md §3 names:
// a naive calendar date and a UTC naive datetime, distinct Go types so
// the schema builder can tell them apart from a generic int32/int64.
package temporal

import "time"

const millisPerDay = 24 * 60 * 60 * 1000

// LocalDate is a calendar date with no time-of-day or zone component,
// wire-encoded as days since the Unix epoch (spec.md §4.5).
type LocalDate struct {
	t time.Time
}

// NewLocalDate builds a LocalDate from a proleptic-Gregorian y/m/d.
func NewLocalDate(year int, month time.Month, day int) LocalDate {
	return LocalDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateFromDays reconstructs a LocalDate from its wire representation.
func DateFromDays(days int32) LocalDate {
	return LocalDate{t: time.UnixMilli(int64(days) * millisPerDay).UTC()}
}

// Days returns the wire representation: days since 1970-01-01.
func (d LocalDate) Days() int32 {
	return int32(d.t.UnixMilli() / millisPerDay)
}

// Time exposes the underlying UTC midnight instant.
func (d LocalDate) Time() time.Time { return d.t }

// DateTime is a naive (zone-less) datetime, wire-encoded as
// milliseconds since the Unix epoch in UTC (spec.md §4.5).
type DateTime struct {
	t time.Time
}

// NewDateTime wraps a time.Time, normalising to UTC.
func NewDateTime(t time.Time) DateTime { return DateTime{t: t.UTC()} }

// DateTimeFromMillis reconstructs a DateTime from its wire representation.
func DateTimeFromMillis(ms int64) DateTime {
	return DateTime{t: time.UnixMilli(ms).UTC()}
}

// Millis returns the wire representation: milliseconds since the epoch.
func (d DateTime) Millis() int64 { return d.t.UnixMilli() }

// Time exposes the underlying UTC instant.
func (d DateTime) Time() time.Time { return d.t }
