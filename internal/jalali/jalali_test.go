package jalali

import (
	"testing"
	"time"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local)
}

// Anchors cross-checked against the published jalaali conversion tables.
var anchors = []struct {
	gy, gm, gd int
	j          Date
}{
	{1978, 3, 21, Date{1357, 1, 1}},
	{1979, 2, 11, Date{1357, 11, 22}},
	{2016, 3, 20, Date{1395, 1, 1}},
	{2021, 3, 21, Date{1400, 1, 1}},
	{2024, 3, 20, Date{1403, 1, 1}},
	{2025, 3, 21, Date{1404, 1, 1}},
	{2026, 3, 21, Date{1405, 1, 1}},
	{2026, 8, 28, Date{1405, 6, 6}},
}

func TestToJalaliAnchors(t *testing.T) {
	for _, a := range anchors {
		got := ToJalali(date(a.gy, a.gm, a.gd))
		if got != a.j {
			t.Errorf("ToJalali(%04d-%02d-%02d) = %+v, want %+v", a.gy, a.gm, a.gd, got, a.j)
		}
	}
}

func TestToGregorianAnchors(t *testing.T) {
	for _, a := range anchors {
		got := ToGregorian(a.j.Year, a.j.Month, a.j.Day)
		gy, gm, gd := got.Date()
		if gy != a.gy || int(gm) != a.gm || gd != a.gd {
			t.Errorf("ToGregorian(%+v) = %04d-%02d-%02d, want %04d-%02d-%02d",
				a.j, gy, gm, gd, a.gy, a.gm, a.gd)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for y := 1300; y <= 1500; y++ {
		for m := 1; m <= 12; m++ {
			days := DaysInMonth(y, m)
			for d := 1; d <= days; d++ {
				got := ToJalali(ToGregorian(y, m, d))
				if got != (Date{y, m, d}) {
					t.Fatalf("round trip %d/%d/%d = %+v", y, m, d, got)
				}
			}
		}
	}
}

func TestIsLeapYear(t *testing.T) {
	leap := []int{1370, 1375, 1387, 1391, 1395, 1399, 1403}
	for _, y := range leap {
		if !IsLeapYear(y) {
			t.Errorf("year %d should be leap", y)
		}
	}
	common := []int{1394, 1396, 1400, 1402, 1404, 1405}
	for _, y := range common {
		if IsLeapYear(y) {
			t.Errorf("year %d should not be leap", y)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	for m := 1; m <= 6; m++ {
		if got := DaysInMonth(1405, m); got != 31 {
			t.Errorf("DaysInMonth(1405, %d) = %d, want 31", m, got)
		}
	}
	for m := 7; m <= 11; m++ {
		if got := DaysInMonth(1405, m); got != 30 {
			t.Errorf("DaysInMonth(1405, %d) = %d, want 30", m, got)
		}
	}
	if got := DaysInMonth(1403, 12); got != 30 {
		t.Errorf("Esfand of leap 1403 = %d, want 30", got)
	}
	if got := DaysInMonth(1404, 12); got != 29 {
		t.Errorf("Esfand of common 1404 = %d, want 29", got)
	}
}

// Esfand 30 of a common year does not exist; the conversion carries the
// extra day through its offset arithmetic and lands on the next Farvardin 1.
// This pins the documented best-effort boundary, not a validation policy.
func TestToGregorianOverflowDay(t *testing.T) {
	got := ToGregorian(1404, 12, 30)
	want := ToGregorian(1405, 1, 1)
	if !got.Equal(want) {
		t.Fatalf("ToGregorian(1404,12,30) = %v, want %v", got, want)
	}
}

func TestFormatting(t *testing.T) {
	d := date(2026, 8, 28) // 1405/06/06

	if got := FormatShort(d); got != "1405/06/06" {
		t.Errorf("FormatShort = %q", got)
	}
	if got := FormatMonth(d); got != "1405/06" {
		t.Errorf("FormatMonth = %q", got)
	}
	if got := FormatFull(d); got != "6 شهریور 1405" {
		t.Errorf("FormatFull = %q", got)
	}
}

func TestMonthName(t *testing.T) {
	if got := MonthName(1); got != "فروردین" {
		t.Errorf("MonthName(1) = %q", got)
	}
	if got := MonthName(12); got != "اسفند" {
		t.Errorf("MonthName(12) = %q", got)
	}
	if got := MonthName(0); got != "" {
		t.Errorf("MonthName(0) = %q, want empty", got)
	}
	if got := MonthName(13); got != "" {
		t.Errorf("MonthName(13) = %q, want empty", got)
	}
}

func TestWeekdayName(t *testing.T) {
	// 2026-08-23 is a Sunday, 2026-08-22 a Saturday.
	if got := WeekdayName(date(2026, 8, 23)); got != "یکشنبه" {
		t.Errorf("Sunday = %q", got)
	}
	if got := WeekdayName(date(2026, 8, 22)); got != "شنبه" {
		t.Errorf("Saturday = %q", got)
	}
	if got := WeekdayName(date(2026, 8, 28)); got != "جمعه" {
		t.Errorf("Friday = %q", got)
	}
}

func TestParseShort(t *testing.T) {
	got := ParseShort("1405/06/06")
	gy, gm, gd := got.Date()
	if gy != 2026 || gm != time.August || gd != 28 {
		t.Fatalf("ParseShort(1405/06/06) = %v", got)
	}
}

func TestParseShortFallback(t *testing.T) {
	pinned := date(2026, 8, 28)
	restore := timeNow
	timeNow = func() time.Time { return pinned }
	defer func() { timeNow = restore }()

	for _, in := range []string{"", "1405/06", "1405-06-06", "1405/06/06/01", "y/m/d"} {
		if got := ParseShort(in); !got.Equal(pinned) {
			t.Errorf("ParseShort(%q) = %v, want fallback to now", in, got)
		}
	}
}

func TestPredicates(t *testing.T) {
	// Friday 2026-08-28 = 1405/06/06. The Sunday-based week window is
	// [2026-08-23, 2026-08-30); the Jalali month Shahrivar 1405 spans
	// 2026-08-23 .. 2026-09-22.
	pinned := time.Date(2026, 8, 28, 15, 30, 0, 0, time.Local)
	restore := timeNow
	timeNow = func() time.Time { return pinned }
	defer func() { timeNow = restore }()

	if !IsToday(date(2026, 8, 28)) {
		t.Error("IsToday should accept the pinned day")
	}
	if IsToday(date(2026, 8, 27)) {
		t.Error("IsToday should reject yesterday")
	}

	if !IsThisWeek(date(2026, 8, 23)) {
		t.Error("IsThisWeek should accept the window start")
	}
	if !IsThisWeek(date(2026, 8, 29)) {
		t.Error("IsThisWeek should accept the window's last day")
	}
	if IsThisWeek(date(2026, 8, 30)) {
		t.Error("IsThisWeek should reject the next Sunday")
	}
	if IsThisWeek(date(2026, 8, 22)) {
		t.Error("IsThisWeek should reject the previous Saturday")
	}

	if !IsThisMonth(date(2026, 8, 23)) {
		t.Error("IsThisMonth should accept 1 Shahrivar")
	}
	if !IsThisMonth(date(2026, 9, 22)) {
		t.Error("IsThisMonth should accept the Gregorian-September tail of Shahrivar")
	}
	if IsThisMonth(date(2026, 8, 22)) {
		t.Error("IsThisMonth should reject 31 Mordad")
	}
	if IsThisMonth(date(2026, 9, 23)) {
		t.Error("IsThisMonth should reject 1 Mehr")
	}
}

func TestMonthGridCompleteness(t *testing.T) {
	for y := 1400; y <= 1410; y++ {
		for m := 1; m <= 12; m++ {
			grid := MonthGrid(y, m)
			days := DaysInMonth(y, m)

			seen := make(map[int]bool)
			cells := 0
			for _, week := range grid {
				if len(week) != 7 {
					t.Fatalf("%d/%d: week length %d", y, m, len(week))
				}
				for _, c := range week {
					cells++
					if c == 0 {
						continue
					}
					if c < 1 || c > days {
						t.Fatalf("%d/%d: cell %d out of range", y, m, c)
					}
					if seen[c] {
						t.Fatalf("%d/%d: duplicate day %d", y, m, c)
					}
					seen[c] = true
				}
			}
			if len(seen) != days {
				t.Fatalf("%d/%d: grid covers %d days, want %d", y, m, len(seen), days)
			}
			if cells%7 != 0 {
				t.Fatalf("%d/%d: %d cells, not a multiple of 7", y, m, cells)
			}
		}
	}
}

func TestMonthGridLayout(t *testing.T) {
	// Khordad 1404 starts on Thursday 2025-05-22: five leading blanks and
	// 31 days make ceil(36/7) = 6 weeks.
	grid := MonthGrid(1404, 3)
	if len(grid) != 6 {
		t.Fatalf("Khordad 1404: %d weeks, want 6", len(grid))
	}
	for i := 0; i < 5; i++ {
		if grid[0][i] != 0 {
			t.Fatalf("Khordad 1404: cell %d should be blank, got %d", i, grid[0][i])
		}
	}
	if grid[0][5] != 1 {
		t.Fatalf("Khordad 1404: day 1 should sit in column 5, got %d", grid[0][5])
	}

	// Shahrivar 1405 starts on Sunday 2026-08-23: one leading blank,
	// 31 days, ceil(32/7) = 5 weeks.
	grid = MonthGrid(1405, 6)
	if len(grid) != 5 {
		t.Fatalf("Shahrivar 1405: %d weeks, want 5", len(grid))
	}
	if grid[0][0] != 0 || grid[0][1] != 1 {
		t.Fatalf("Shahrivar 1405: first week = %v", grid[0])
	}
}
