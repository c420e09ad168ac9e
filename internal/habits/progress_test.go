package habits

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitual/internal/models"
)

func TestTodaysProgressScenario(t *testing.T) {
	store, _, _ := setupTestStore(t)

	water := mustAdd(t, store, "Drink water", models.FrequencyDaily, u1)
	if got := store.GetTodaysProgress(u1); got != 0 {
		t.Fatalf("after add: expected 0, got %d", got)
	}

	mustToggle(t, store, water.ID, today, u1)
	if got := store.GetTodaysProgress(u1); got != 100 {
		t.Fatalf("after toggle: expected 100, got %d", got)
	}

	mustAdd(t, store, "Read", models.FrequencyDaily, u1)
	if got := store.GetTodaysProgress(u1); got != 50 {
		t.Fatalf("after second add: expected 50, got %d", got)
	}

	if err := store.RemoveHabit(water.ID, u1); err != nil {
		t.Fatalf("RemoveHabit failed: %v", err)
	}
	if got := store.GetTodaysProgress(u1); got != 0 {
		t.Fatalf("after remove: expected 0, got %d", got)
	}
}

func TestTodaysProgressOnlyWeekly(t *testing.T) {
	store, _, _ := setupTestStore(t)
	h := mustAdd(t, store, "Call mom", models.FrequencyWeekly, u1)
	mustToggle(t, store, h.ID, today, u1)

	if got := store.GetTodaysProgress(u1); got != 0 {
		t.Errorf("expected 0 with only weekly habits, got %d", got)
	}
	if got := store.GetTodaysProgress("nobody@example.com"); got != 0 {
		t.Errorf("expected 0 with no habits, got %d", got)
	}
}

func TestTodaysProgressAllDone(t *testing.T) {
	store, _, _ := setupTestStore(t)
	for _, name := range []string{"A", "B", "C"} {
		h := mustAdd(t, store, name, models.FrequencyDaily, u1)
		mustToggle(t, store, h.ID, today, u1)
	}
	mustAdd(t, store, "Weekly", models.FrequencyWeekly, u1)

	if got := store.GetTodaysProgress(u1); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}
}

func TestTodaysProgressRounds(t *testing.T) {
	store, _, _ := setupTestStore(t)
	a := mustAdd(t, store, "A", models.FrequencyDaily, u1)
	b := mustAdd(t, store, "B", models.FrequencyDaily, u1)
	mustAdd(t, store, "C", models.FrequencyDaily, u1)

	mustToggle(t, store, a.ID, today, u1)
	if got := store.GetTodaysProgress(u1); got != 33 {
		t.Errorf("1/3: expected 33, got %d", got)
	}
	mustToggle(t, store, b.ID, today, u1)
	if got := store.GetTodaysProgress(u1); got != 67 {
		t.Errorf("2/3: expected 67, got %d", got)
	}
}

func TestGetHabitsByFilter(t *testing.T) {
	store, _, _ := setupTestStore(t)
	water := mustAdd(t, store, "Drink water", models.FrequencyDaily, u1)
	mustAdd(t, store, "Read", models.FrequencyDaily, u1)
	weekly := mustAdd(t, store, "Call mom", models.FrequencyWeekly, u1)
	mustToggle(t, store, water.ID, today, u1)
	mustToggle(t, store, weekly.ID, today, u1)

	tests := []struct {
		filter models.Filter
		want   []string
	}{
		{models.FilterAll, []string{"Drink water", "Read", "Call mom"}},
		{models.FilterToday, []string{"Read"}},
		{models.FilterCompleted, []string{"Drink water"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := names(store.GetHabitsByFilter(tt.filter, u1))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("filter %s mismatch (-want +got):\n%s", tt.filter, diff)
			}
		})
	}

	if got := store.GetHabitsByFilter("bogus", u1); got != nil {
		t.Errorf("unknown filter: expected nil, got %v", got)
	}

	if diff := cmp.Diff([]string{"Read"}, names(store.PendingToday(u1))); diff != "" {
		t.Errorf("PendingToday mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Drink water"}, names(store.CompletedToday(u1))); diff != "" {
		t.Errorf("CompletedToday mismatch (-want +got):\n%s", diff)
	}
}

func TestWeeklyProgress(t *testing.T) {
	store, _, _ := setupTestStore(t)
	water := mustAdd(t, store, "Drink water", models.FrequencyDaily, u1)
	read := mustAdd(t, store, "Read", models.FrequencyDaily, u1)
	weekly := mustAdd(t, store, "Call mom", models.FrequencyWeekly, u1)

	mustToggle(t, store, water.ID, "2026-10-12", u1)
	mustToggle(t, store, water.ID, "2026-10-18", u1)
	mustToggle(t, store, read.ID, "2026-10-18", u1)
	mustToggle(t, store, weekly.ID, "2026-10-16", u1)
	mustToggle(t, store, water.ID, "2026-10-11", u1) // outside the window

	want := []models.DayProgress{
		{Day: "Mon", Date: "2026-10-12", Completed: 1, Total: 2},
		{Day: "Tue", Date: "2026-10-13", Completed: 0, Total: 2},
		{Day: "Wed", Date: "2026-10-14", Completed: 0, Total: 2},
		{Day: "Thu", Date: "2026-10-15", Completed: 0, Total: 2},
		{Day: "Fri", Date: "2026-10-16", Completed: 0, Total: 2},
		{Day: "Sat", Date: "2026-10-17", Completed: 0, Total: 2},
		{Day: "Sun", Date: "2026-10-18", Completed: 2, Total: 2},
	}
	if diff := cmp.Diff(want, store.GetWeeklyProgress(u1)); diff != "" {
		t.Errorf("weekly progress mismatch (-want +got):\n%s", diff)
	}
}

func TestWeeklyProgressShape(t *testing.T) {
	store, _, clock := setupTestStore(t)

	for _, at := range []time.Time{
		fixedNow,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2028, 2, 29, 23, 59, 59, 0, time.UTC),
	} {
		clock.now = at
		week := store.GetWeeklyProgress(u1)
		if len(week) != 7 {
			t.Fatalf("expected 7 entries, got %d", len(week))
		}
		if last := week[6].Date; last != at.Format("2006-01-02") {
			t.Errorf("expected last entry %s, got %s", at.Format("2006-01-02"), last)
		}
		for i := 1; i < len(week); i++ {
			if week[i-1].Date >= week[i].Date {
				t.Errorf("entries out of order: %s before %s", week[i-1].Date, week[i].Date)
			}
		}
		for _, d := range week {
			if d.Total != 0 || d.Completed != 0 {
				t.Errorf("expected empty day for user without habits, got %+v", d)
			}
		}
	}
}

func TestWeeklyProgressAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// US clocks fall back on Sunday 2026-11-01
	at := time.Date(2026, 11, 3, 9, 0, 0, 0, ny)
	store, _, _ := setupTestStore(t, WithClock(func() time.Time { return at }), WithLocation(ny))

	week := store.GetWeeklyProgress(u1)
	var got []string
	for _, d := range week {
		got = append(got, d.Date)
	}
	want := []string{"2026-10-28", "2026-10-29", "2026-10-30", "2026-10-31", "2026-11-01", "2026-11-02", "2026-11-03"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dates mismatch (-want +got):\n%s", diff)
	}
}

func TestWeeklySummary(t *testing.T) {
	store, _, _ := setupTestStore(t)
	water := mustAdd(t, store, "Drink water", models.FrequencyDaily, u1)
	read := mustAdd(t, store, "Read", models.FrequencyDaily, u1)

	mustToggle(t, store, water.ID, "2026-10-12", u1) // 50%
	mustToggle(t, store, water.ID, "2026-10-18", u1) // 100%
	mustToggle(t, store, read.ID, "2026-10-18", u1)

	want := models.WeeklySummary{
		AverageRate:    21, // (50 + 100) / 7
		PerfectDays:    1,
		TotalCompleted: 3,
	}
	if diff := cmp.Diff(want, store.GetWeeklySummary(u1)); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(models.WeeklySummary{}, store.GetWeeklySummary(u2)); diff != "" {
		t.Errorf("empty summary mismatch (-want +got):\n%s", diff)
	}
}

func TestGetStats(t *testing.T) {
	store, _, _ := setupTestStore(t)
	water := mustAdd(t, store, "Drink water", models.FrequencyDaily, u1)
	mustAdd(t, store, "Read", models.FrequencyDaily, u1)
	weekly := mustAdd(t, store, "Call mom", models.FrequencyWeekly, u1)
	other := mustAdd(t, store, "Other", models.FrequencyDaily, u2)

	mustToggle(t, store, water.ID, today, u1)
	mustToggle(t, store, water.ID, "2026-09-01", u1)
	mustToggle(t, store, weekly.ID, "2026-10-14", u1)
	mustToggle(t, store, other.ID, today, u2)

	want := models.Stats{
		TotalHabits:      3,
		DailyHabits:      2,
		WeeklyHabits:     1,
		TotalCompletions: 3,
		CompletedToday:   1,
		PendingToday:     1,
	}
	if diff := cmp.Diff(want, store.GetStats(u1)); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestMotivationalMessage(t *testing.T) {
	tests := []struct {
		progress int
		want     string
	}{
		{100, "Perfect day! You've completed all your habits!"},
		{75, "Amazing progress! You're almost there!"},
		{99, "Amazing progress! You're almost there!"},
		{50, "Great job! Keep the momentum going!"},
		{25, "Good start! Every step counts!"},
		{24, "Ready to build some great habits today?"},
		{0, "Ready to build some great habits today?"},
	}
	for _, tt := range tests {
		if got := MotivationalMessage(tt.progress); got != tt.want {
			t.Errorf("MotivationalMessage(%d) = %q, want %q", tt.progress, got, tt.want)
		}
	}
}
