// Package jalali implements the Solar Hijri (Jalali) calendar: conversion
// to and from the Gregorian calendar, Persian date formatting, calendar
// predicates and month-grid generation for the date picker.
//
// The conversion follows the Birashk break-point algorithm over Julian day
// numbers and matches the widely used jalaali conversion tables day for day
// across the years the application cares about (roughly 1300-1500 AP).
// Every function is pure and total over its documented inputs.
package jalali

import (
	"fmt"
	"time"
)

// Date is a Jalali calendar date triple. It is a value derived from a
// Gregorian instant; persisted Jalali strings are denormalized caches of
// it, never the authority.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1..12
	Day   int `json:"day"`   // 1..31
}

// timeNow is the reference clock for the calendar predicates. Tests pin it.
var timeNow = time.Now

// Break years of the 2820-year Jalali leap cycle, in Jalali years.
var breaks = [...]int{
	-61, 9, 38, 199, 426, 686, 756, 818, 1111, 1181,
	1210, 1635, 2060, 2097, 2192, 2262, 2324, 2394, 2456, 3178,
}

// jalCal determines the leap status of a Jalali year and the Gregorian
// March day its Farvardin 1 falls on.
func jalCal(jy int) (leap, gy, march int) {
	gy = jy + 621
	leapJ := -14
	jp := breaks[0]
	jump := 0

	for i := 1; i < len(breaks); i++ {
		jm := breaks[i]
		jump = jm - jp
		if jy < jm {
			break
		}
		leapJ += jump/33*8 + jump%33/4
		jp = jm
	}
	n := jy - jp

	leapJ += n/33*8 + (n%33+3)/4
	if jump%33 == 4 && jump-n == 4 {
		leapJ++
	}

	leapG := gy/4 - (gy/100+1)*3/4 - 150
	march = 20 + leapJ - leapG

	if jump-n < 6 {
		n = n - jump + (jump+4)/33*33
	}
	leap = ((n+1)%33 - 1) % 4
	if leap == -1 {
		leap = 4
	}
	return leap, gy, march
}

// g2d converts a Gregorian date to its Julian day number.
func g2d(gy, gm, gd int) int {
	d := (gy+(gm-8)/6+100100)*1461/4 + (153*((gm+9)%12)+2)/5 + gd - 34840408
	return d - (gy+100100+(gm-8)/6)/100*3/4 + 752
}

// d2g converts a Julian day number to a Gregorian date.
func d2g(jdn int) (gy, gm, gd int) {
	j := 4*jdn + 139361631
	j += (4*jdn+183187720)/146097*3/4*4 - 3908
	i := j%1461/4*5 + 308
	gd = i%153/5 + 1
	gm = i/153%12 + 1
	gy = j/1461 - 100100 + (8-gm)/6
	return gy, gm, gd
}

// j2d converts a Jalali date to its Julian day number.
func j2d(jy, jm, jd int) int {
	_, gy, march := jalCal(jy)
	return g2d(gy, 3, march) + (jm-1)*31 - jm/7*(jm-7) + jd - 1
}

// d2j converts a Julian day number to a Jalali date.
func d2j(jdn int) Date {
	gy, _, _ := d2g(jdn)
	jy := gy - 621
	leap, _, march := jalCal(jy)
	k := jdn - g2d(gy, 3, march)

	if k >= 0 {
		if k <= 185 {
			return Date{Year: jy, Month: 1 + k/31, Day: k%31 + 1}
		}
		k -= 186
	} else {
		jy--
		k += 179
		if leap == 1 {
			k++
		}
	}
	return Date{Year: jy, Month: 7 + k/30, Day: k%30 + 1}
}

// ToJalali converts a Gregorian instant to the Jalali date of its civil day.
func ToJalali(t time.Time) Date {
	y, m, d := t.Date()
	return d2j(g2d(y, int(m), d))
}

// ToGregorian converts a Jalali date to local midnight of the Gregorian day
// it names. The caller keeps month in 1..12 and day within the month; out
// of range values are carried through the day arithmetic unvalidated, so
// the result for them is best-effort, never a panic.
func ToGregorian(year, month, day int) time.Time {
	gy, gm, gd := d2g(j2d(year, month, day))
	return time.Date(gy, time.Month(gm), gd, 0, 0, 0, 0, time.Local)
}

// IsLeapYear reports whether the Jalali year has 366 days.
func IsLeapYear(year int) bool {
	leap, _, _ := jalCal(year)
	return leap == 0
}

// DaysInMonth returns the length of a Jalali month: 31 for the first six
// months, 30 through Bahman, and 29 or 30 for Esfand depending on leap
// status.
func DaysInMonth(year, month int) int {
	switch {
	case month <= 6:
		return 31
	case month <= 11:
		return 30
	case IsLeapYear(year):
		return 30
	default:
		return 29
	}
}

// FormatShort renders the Jalali date of t as "YYYY/MM/DD" with ASCII
// digits and zero-padded month and day.
func FormatShort(t time.Time) string {
	d := ToJalali(t)
	return fmt.Sprintf("%d/%02d/%02d", d.Year, d.Month, d.Day)
}

// FormatMonth renders the Jalali year/month of t as "YYYY/MM", the key
// budgets are stored under.
func FormatMonth(t time.Time) string {
	d := ToJalali(t)
	return fmt.Sprintf("%d/%02d", d.Year, d.Month)
}

// FormatFull renders the Jalali date of t as "D <month name> YYYY".
func FormatFull(t time.Time) string {
	d := ToJalali(t)
	return fmt.Sprintf("%d %s %d", d.Day, MonthName(d.Month), d.Year)
}
