package models

// DayProgress is one day of the weekly trend
type DayProgress struct {
	Day       string `json:"day"`  // short weekday label, e.g. "Mon"
	Date      string `json:"date"` // YYYY-MM-DD
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Percent returns the day's completion rate in [0,100]; 0 when there is nothing to do.
func (d DayProgress) Percent() float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.Completed) / float64(d.Total) * 100
}

// Perfect reports whether every daily habit was completed on that day
func (d DayProgress) Perfect() bool {
	return d.Total > 0 && d.Completed == d.Total
}

// WeeklySummary aggregates the 7-day trend
type WeeklySummary struct {
	AverageRate    int `json:"averageRate"`
	PerfectDays    int `json:"perfectDays"`
	TotalCompleted int `json:"totalCompleted"`
}

// Stats are lifetime counters for one user
type Stats struct {
	TotalHabits      int `json:"totalHabits"`
	DailyHabits      int `json:"dailyHabits"`
	WeeklyHabits     int `json:"weeklyHabits"`
	TotalCompletions int `json:"totalCompletions"`
	CompletedToday   int `json:"completedToday"`
	PendingToday     int `json:"pendingToday"`
}
