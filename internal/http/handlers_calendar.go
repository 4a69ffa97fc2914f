package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tankhah/internal/jalali"
)

// calendarMonthResponse is the Saturday-first month grid for the date
// picker. Grid cells outside the month are zero.
type calendarMonthResponse struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	MonthName string  `json:"monthName"`
	Days      int     `json:"days"`
	LeapYear  bool    `json:"leapYear"`
	Weeks     [][]int `json:"weeks"`
}

type calendarTodayResponse struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Day       int    `json:"day"`
	MonthName string `json:"monthName"`
	Weekday   string `json:"weekday"`
	Formatted string `json:"formatted"`
	Full      string `json:"full"`
}

func (s *Server) handleCalendarMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < 1300 || year > 1500 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid year %q", r.PathValue("year")))
		return
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid month %q", r.PathValue("month")))
		return
	}

	writeJSON(w, http.StatusOK, calendarMonthResponse{
		Year:      year,
		Month:     month,
		MonthName: jalali.MonthName(month),
		Days:      jalali.DaysInMonth(year, month),
		LeapYear:  jalali.IsLeapYear(year),
		Weeks:     jalali.MonthGrid(year, month),
	})
}

func (s *Server) handleCalendarToday(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	d := jalali.ToJalali(now)

	writeJSON(w, http.StatusOK, calendarTodayResponse{
		Year:      d.Year,
		Month:     d.Month,
		Day:       d.Day,
		MonthName: jalali.MonthName(d.Month),
		Weekday:   jalali.WeekdayName(now),
		Formatted: jalali.FormatShort(now),
		Full:      jalali.FormatFull(now),
	})
}
