package jalali

import (
	"strconv"
	"strings"
	"time"
)

var monthNames = [12]string{
	"فروردین", "اردیبهشت", "خرداد", "تیر", "مرداد", "شهریور",
	"مهر", "آبان", "آذر", "دی", "بهمن", "اسفند",
}

// weekdayNames is indexed by the Gregorian weekday ordinal (Sunday = 0).
// This is the convention the trend chart labels use; the month grid uses
// the Saturday-first layout instead. The two conventions serve different
// callers and stay separate.
var weekdayNames = [7]string{
	"یکشنبه", "دوشنبه", "سه‌شنبه", "چهارشنبه", "پنج‌شنبه", "جمعه", "شنبه",
}

// MonthName returns the Persian name of a Jalali month (1..12), or the
// empty string out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// WeekdayName returns the Persian weekday name for t's Gregorian weekday,
// Sunday-indexed.
func WeekdayName(t time.Time) string {
	return weekdayNames[int(t.Weekday())]
}

// ParseShort is the inverse of FormatShort. Malformed input falls back to
// the current instant instead of failing; callers that need a reportable
// error must not rely on this function.
func ParseShort(s string) time.Time {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return timeNow()
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return timeNow()
		}
		nums[i] = n
	}
	return ToGregorian(nums[0], nums[1], nums[2])
}

// IsToday reports whether t falls on the current civil day.
func IsToday(t time.Time) bool {
	now := timeNow()
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsThisWeek reports whether t falls in the current Gregorian week, the
// Sunday-based window [weekStart, weekStart+7d).
func IsThisWeek(t time.Time) bool {
	now := timeNow()
	y, m, d := now.Date()
	weekStart := time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, now.Location())
	weekEnd := weekStart.AddDate(0, 0, 7)
	return !t.Before(weekStart) && t.Before(weekEnd)
}

// IsThisMonth reports whether t falls in the current Jalali month. The
// comparison is on the Jalali (year, month) pair, not the Gregorian one.
func IsThisMonth(t time.Time) bool {
	now := ToJalali(timeNow())
	d := ToJalali(t)
	return d.Year == now.Year && d.Month == now.Month
}

// MonthGrid lays out a Jalali month for the date-picker: an ordered list
// of 7-cell weeks with Saturday in the first column. Cells hold the day of
// month, or 0 for the leading and trailing blanks. Non-zero cells cover
// exactly 1..DaysInMonth(year, month), each once.
func MonthGrid(year, month int) [][]int {
	days := DaysInMonth(year, month)
	first := ToGregorian(year, month, 1)
	leading := (int(first.Weekday()) + 1) % 7 // Saturday = column 0

	var weeks [][]int
	week := make([]int, 0, 7)
	for i := 0; i < leading; i++ {
		week = append(week, 0)
	}
	for day := 1; day <= days; day++ {
		week = append(week, day)
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]int, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, 0)
		}
		weeks = append(weeks, week)
	}
	return weeks
}
