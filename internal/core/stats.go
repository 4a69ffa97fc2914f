package core

// CategoryShare is one slice of the dashboard's category breakdown.
type CategoryShare struct {
	CategoryID string  `json:"categoryId"`
	Amount     Money   `json:"amount"`
	Formatted  string  `json:"formatted"` // Persian-digit toman label
	Percentage float64 `json:"percentage"`
}

// TrendPoint is one day of the seven-day spending trend. Label carries the
// Persian weekday name in the Gregorian Sunday-indexed convention used by
// the trend chart.
type TrendPoint struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Label  string `json:"label"`
	Amount Money  `json:"amount"`
}

// DashboardStats aggregates the expense figures shown on the dashboard.
type DashboardStats struct {
	TotalExpenses     Money           `json:"totalExpenses"`
	TodayExpenses     Money           `json:"todayExpenses"`
	WeeklyExpenses    Money           `json:"weeklyExpenses"`
	MonthlyExpenses   Money           `json:"monthlyExpenses"`
	MonthlyFormatted  string          `json:"monthlyFormatted"` // compact Persian label for the month total
	CategoryBreakdown []CategoryShare `json:"categoryBreakdown"`
	DailyTrend        []TrendPoint    `json:"dailyTrend"`
}
