package habits

import (
	"math"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// GetUserHabits returns the owner's habits in creation order.
func (s *Store) GetUserHabits(ownerEmail string) []models.Habit {
	out := []models.Habit{}
	for _, h := range s.habits {
		if h.OwnerEmail == ownerEmail {
			out = append(out, h)
		}
	}
	return out
}

// GetHabit returns one of the owner's habits by id.
func (s *Store) GetHabit(habitID, ownerEmail string) (models.Habit, bool) {
	idx := s.find(habitID, ownerEmail)
	if idx < 0 {
		return models.Habit{}, false
	}
	return s.habits[idx], true
}

// IsHabitCompletedToday reports whether the owner's habit is completed today.
func (s *Store) IsHabitCompletedToday(habitID, ownerEmail string) bool {
	return s.IsHabitCompletedOn(habitID, s.Today(), ownerEmail)
}

// IsHabitCompletedOn reports whether the owner's habit is completed on day.
func (s *Store) IsHabitCompletedOn(habitID, day, ownerEmail string) bool {
	if s.find(habitID, ownerEmail) < 0 {
		return false
	}
	return s.completed(habitID, day)
}

func (s *Store) completed(habitID, day string) bool {
	_, ok := s.completions[models.CompletionKey{HabitID: habitID, Day: day}]
	return ok
}

// GetHabitsByFilter returns the owner's habits matching filter:
//
//	all        every habit
//	today      daily habits not completed today
//	completed  daily habits completed today
//
// Weekly habits only appear under all. An unknown filter returns nil.
func (s *Store) GetHabitsByFilter(filter models.Filter, ownerEmail string) []models.Habit {
	switch filter {
	case models.FilterAll:
		return s.GetUserHabits(ownerEmail)
	case models.FilterToday, models.FilterCompleted:
		today := s.Today()
		wantDone := filter == models.FilterCompleted
		out := []models.Habit{}
		for _, h := range s.habits {
			if h.OwnerEmail != ownerEmail || !h.IsDaily() {
				continue
			}
			if s.completed(h.ID, today) == wantDone {
				out = append(out, h)
			}
		}
		return out
	default:
		return nil
	}
}

// PendingToday returns the owner's daily habits not yet completed today.
func (s *Store) PendingToday(ownerEmail string) []models.Habit {
	return s.GetHabitsByFilter(models.FilterToday, ownerEmail)
}

// CompletedToday returns the owner's daily habits completed today.
func (s *Store) CompletedToday(ownerEmail string) []models.Habit {
	return s.GetHabitsByFilter(models.FilterCompleted, ownerEmail)
}

// dailyHabits returns the owner's daily habits.
func (s *Store) dailyHabits(ownerEmail string) []models.Habit {
	var out []models.Habit
	for _, h := range s.habits {
		if h.OwnerEmail == ownerEmail && h.IsDaily() {
			out = append(out, h)
		}
	}
	return out
}

func (s *Store) countCompleted(habits []models.Habit, day string) int {
	n := 0
	for _, h := range habits {
		if s.completed(h.ID, day) {
			n++
		}
	}
	return n
}

// GetTodaysProgress returns the percentage (0-100, rounded) of the owner's
// daily habits completed today. It is 0 when the owner has no daily habits.
func (s *Store) GetTodaysProgress(ownerEmail string) int {
	daily := s.dailyHabits(ownerEmail)
	return percent(s.countCompleted(daily, s.Today()), len(daily))
}

// GetWeeklyProgress returns one entry per day for the last 7 calendar days,
// oldest first and ending today. Total is the owner's current daily habit count.
func (s *Store) GetWeeklyProgress(ownerEmail string) []models.DayProgress {
	daily := s.dailyHabits(ownerEmail)
	days := utils.LastNDays(s.now(), s.loc, constants.WeeklyWindowDays)

	out := make([]models.DayProgress, 0, len(days))
	for _, d := range days {
		date := d.Format(constants.DateFormat)
		out = append(out, models.DayProgress{
			Day:       utils.ShortWeekday(d),
			Date:      date,
			Completed: s.countCompleted(daily, date),
			Total:     len(daily),
		})
	}
	return out
}

// GetWeeklySummary aggregates GetWeeklyProgress. Days with nothing to do
// count as 0% in the average.
func (s *Store) GetWeeklySummary(ownerEmail string) models.WeeklySummary {
	week := s.GetWeeklyProgress(ownerEmail)

	var summary models.WeeklySummary
	var sum float64
	for _, d := range week {
		sum += d.Percent()
		summary.TotalCompleted += d.Completed
		if d.Perfect() {
			summary.PerfectDays++
		}
	}
	if len(week) > 0 {
		summary.AverageRate = int(math.Round(sum / float64(len(week))))
	}
	return summary
}

// GetStats returns lifetime counters for the owner. Completions of both
// daily and weekly habits are counted.
func (s *Store) GetStats(ownerEmail string) models.Stats {
	var stats models.Stats
	owned := make(map[string]bool)
	today := s.Today()

	for _, h := range s.habits {
		if h.OwnerEmail != ownerEmail {
			continue
		}
		owned[h.ID] = true
		stats.TotalHabits++
		if !h.IsDaily() {
			stats.WeeklyHabits++
			continue
		}
		stats.DailyHabits++
		if s.completed(h.ID, today) {
			stats.CompletedToday++
		} else {
			stats.PendingToday++
		}
	}

	for key := range s.completions {
		if owned[key.HabitID] {
			stats.TotalCompletions++
		}
	}
	return stats
}

func percent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// MotivationalMessage returns the encouragement shown next to today's progress.
func MotivationalMessage(progress int) string {
	switch {
	case progress >= 100:
		return "Perfect day! You've completed all your habits!"
	case progress >= 75:
		return "Amazing progress! You're almost there!"
	case progress >= 50:
		return "Great job! Keep the momentum going!"
	case progress >= 25:
		return "Good start! Every step counts!"
	default:
		return "Ready to build some great habits today?"
	}
}
