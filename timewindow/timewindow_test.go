package timewindow

import (
	"testing"
	"time"
)

func mustClock(t *testing.T, s string) Clock {
	t.Helper()
	c, err := ParseClock(s)
	if err != nil {
		t.Fatalf("ParseClock(%q): %v", s, err)
	}
	return c
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 9*60 + 30, false},
		{"23:59", 23*60 + 59, false},
		{"14:00:00", 14 * 60, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"", 0, true},
		{"noon", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClockString(t *testing.T) {
	c := mustClock(t, "09:05")
	if c.String() != "09:05:00" {
		t.Fatalf("String() = %q, want 09:05:00", c.String())
	}
}

func TestEffectiveEndSameDay(t *testing.T) {
	end, err := EffectiveEnd("2025-10-17", mustClock(t, "18:00"), mustClock(t, "20:00"))
	if err != nil {
		t.Fatalf("EffectiveEnd: %v", err)
	}
	want := time.Date(2025, 10, 17, 20, 0, 0, 0, time.Local)
	if !end.Equal(want) {
		t.Fatalf("EffectiveEnd = %v, want %v", end, want)
	}
}

func TestEffectiveEndCrossesMidnight(t *testing.T) {
	end, err := EffectiveEnd("2025-10-17", mustClock(t, "23:00"), mustClock(t, "01:00"))
	if err != nil {
		t.Fatalf("EffectiveEnd: %v", err)
	}
	want := time.Date(2025, 10, 18, 1, 0, 0, 0, time.Local)
	if !end.Equal(want) {
		t.Fatalf("EffectiveEnd = %v, want %v", end, want)
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2025, 10, 18, 0, 30, 0, 0, time.Local)

	// 23:00-01:00 on the 17th is still live at 00:30 on the 18th.
	if Expired("2025-10-17", mustClock(t, "23:00"), mustClock(t, "01:00"), now) {
		t.Error("midnight-crossing window reported expired while still live")
	}
	// 20:00-22:00 on the 17th has ended.
	if !Expired("2025-10-17", mustClock(t, "20:00"), mustClock(t, "22:00"), now) {
		t.Error("past window not reported expired")
	}
	// Garbage dates drop out.
	if !Expired("not-a-date", mustClock(t, "20:00"), mustClock(t, "22:00"), now) {
		t.Error("malformed date should count as expired")
	}
}

func TestContainsPlainWindow(t *testing.T) {
	winStart := mustClock(t, "18:00")
	winEnd := mustClock(t, "22:00")

	tests := []struct {
		start, end string
		want       bool
	}{
		{"18:00", "22:00", true},
		{"19:00", "20:00", true},
		{"17:59", "20:00", false},
		{"19:00", "22:01", false},
		{"23:00", "01:00", false}, // crossing request, plain window
	}
	for _, tt := range tests {
		got := Contains(mustClock(t, tt.start), mustClock(t, tt.end), winStart, winEnd)
		if got != tt.want {
			t.Errorf("Contains(%s-%s in 18:00-22:00) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}

// Window 23:00-01:00 crosses midnight: requests may cross with it, or sit
// entirely in the late (>= 23:00) or early (<= 01:00) portion.
func TestContainsMidnightCrossingWindow(t *testing.T) {
	winStart := mustClock(t, "23:00")
	winEnd := mustClock(t, "01:00")

	tests := []struct {
		start, end string
		want       bool
	}{
		{"23:30", "00:30", true},  // crosses inside both bounds
		{"23:00", "01:00", true},  // exact
		{"23:15", "23:45", true},  // late portion only
		{"00:15", "00:45", true},  // early portion only
		{"22:30", "00:30", false}, // starts before the window opens
		{"23:30", "01:30", false}, // runs past the window's end
		{"02:00", "03:00", false}, // straddles neither portion
	}
	for _, tt := range tests {
		got := Contains(mustClock(t, tt.start), mustClock(t, tt.end), winStart, winEnd)
		if got != tt.want {
			t.Errorf("Contains(%s-%s in 23:00-01:00) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestContainsRejectsZeroLengthRequest(t *testing.T) {
	c := mustClock(t, "20:00")
	if Contains(c, c, mustClock(t, "18:00"), mustClock(t, "22:00")) {
		t.Fatal("zero-length request must never be contained")
	}
}
