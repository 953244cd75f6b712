// Package timewindow holds the wall-clock arithmetic for availability
// windows. Windows store a calendar date plus start/end times of day; a
// window whose end is earlier than its start crosses midnight and ends on
// the following day. Every freshness and containment check in the app goes
// through this package so the midnight handling lives in one place.
package timewindow

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock accepts "HH:MM" or "HH:MM:SS". Seconds are discarded.
func ParseClock(s string) (Clock, error) {
	var h, m, sec int
	switch n, _ := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); n {
	case 2, 3:
	default:
		return 0, fmt.Errorf("invalid time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return Clock(h*60 + m), nil
}

// String renders the clock as "HH:MM:SS", the storage format.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:00", int(c)/60, int(c)%60)
}

// ParseDate parses a calendar date in "YYYY-MM-DD" form.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// CrossesMidnight reports whether a window running start→end wraps past
// midnight into the next day.
func CrossesMidnight(start, end Clock) bool {
	return end < start
}

// EffectiveEnd returns the instant at which the window truly ends: the end
// time on the window's date, pushed to the next day when the window crosses
// midnight.
func EffectiveEnd(date string, start, end Clock) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	endAt := day.Add(time.Duration(end) * time.Minute)
	if CrossesMidnight(start, end) {
		endAt = endAt.Add(24 * time.Hour)
	}
	return endAt, nil
}

// Expired reports whether the window's effective end instant is behind now.
// Malformed dates count as expired so bad rows drop out of listings instead
// of lingering forever.
func Expired(date string, start, end Clock, now time.Time) bool {
	endAt, err := EffectiveEnd(date, start, end)
	if err != nil {
		return true
	}
	return endAt.Before(now)
}

// WindowExpired is Expired for the stored string form of a window. Malformed
// fields count as expired.
func WindowExpired(date, startTime, endTime string, now time.Time) bool {
	start, err := ParseClock(startTime)
	if err != nil {
		return true
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return true
	}
	return Expired(date, start, end, now)
}

// Contains reports whether a requested range fits inside a window on the
// same date.
//
// For a midnight-crossing window (e.g. 23:00–01:00) a request is valid when
// it also crosses midnight and sits inside both bounds, or when it lies
// entirely in the late portion (reqStart ≥ winStart) or entirely in the
// early portion (reqEnd ≤ winEnd). A plain window takes simple containment,
// and can never contain a crossing request.
//
// A request with reqStart == reqEnd is never valid.
func Contains(reqStart, reqEnd, winStart, winEnd Clock) bool {
	if reqStart == reqEnd {
		return false
	}
	if CrossesMidnight(winStart, winEnd) {
		if CrossesMidnight(reqStart, reqEnd) {
			return reqStart >= winStart && reqEnd <= winEnd
		}
		return reqStart >= winStart || reqEnd <= winEnd
	}
	if CrossesMidnight(reqStart, reqEnd) {
		return false
	}
	return reqStart >= winStart && reqEnd <= winEnd
}
