package domain

import "guardpost/internal/shared/rest"

// Account is the client profile shown on the account settings page.
type Account struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OverviewStats are the headline counters on the overview page.
type OverviewStats struct {
	AssignedLocations rest.FlexInt `json:"assigned_locations"`
	ActiveGuards      rest.FlexInt `json:"active_guards"`
	IncidentsToday    rest.FlexInt `json:"incidents_today"`
}

// AttendancePoint is one bar of the weekly attendance chart.
type AttendancePoint struct {
	Day     string       `json:"day"`
	Rate    float64      `json:"rate"`
	Present rest.FlexInt `json:"present"`
	Total   rest.FlexInt `json:"total"`
}

// Activity is one row of the recent activity feed.
type Activity struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Time        string `json:"time"`
	Type        string `json:"type"`
}

// Overview is the aggregate payload behind the overview page.
type Overview struct {
	Stats            OverviewStats     `json:"stats"`
	AttendanceChart  []AttendancePoint `json:"attendance_chart"`
	RecentActivities []Activity        `json:"recent_activities"`
}
