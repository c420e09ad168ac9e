package habits

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fixedNow is Sunday 2026-10-18 at noon UTC.
var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

const (
	today = "2026-10-18"
	u1    = "u1@example.com"
	u2    = "u2@example.com"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("habit-%d", n)
	}
}

// setupTestStore returns a loaded store over an in-memory provider.
func setupTestStore(t *testing.T, opts ...Option) (*Store, *storage.MemoryStore, *testClock) {
	t.Helper()
	mem := storage.NewMemoryStore()
	clock := &testClock{now: fixedNow}

	base := []Option{
		WithClock(clock.Now),
		WithLocation(time.UTC),
		WithIDGenerator(sequentialIDs()),
	}
	store := New(mem, append(base, opts...)...)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store, mem, clock
}

func mustAdd(t *testing.T, s *Store, name string, freq models.Frequency, owner string) models.Habit {
	t.Helper()
	h, err := s.AddHabit(name, freq, owner)
	if err != nil {
		t.Fatalf("AddHabit(%q) failed: %v", name, err)
	}
	return h
}

func mustToggle(t *testing.T, s *Store, id, day, owner string) {
	t.Helper()
	if err := s.ToggleHabitCompletion(id, day, owner); err != nil {
		t.Fatalf("ToggleHabitCompletion failed: %v", err)
	}
}

func names(habits []models.Habit) []string {
	out := []string{}
	for _, h := range habits {
		out = append(out, h.Name)
	}
	return out
}

func TestAddHabit(t *testing.T) {
	store, _, _ := setupTestStore(t)

	h := mustAdd(t, store, "  Drink water ", models.FrequencyDaily, u1)

	want := models.Habit{
		ID:         "habit-1",
		OwnerEmail: u1,
		Name:       "Drink water",
		Frequency:  models.FrequencyDaily,
		CreatedAt:  fixedNow,
	}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Errorf("habit mismatch (-want +got):\n%s", diff)
	}

	got := store.GetUserHabits(u1)
	if diff := cmp.Diff([]models.Habit{want}, got); diff != "" {
		t.Errorf("GetUserHabits mismatch (-want +got):\n%s", diff)
	}
}

func TestAddHabitUniqueIDs(t *testing.T) {
	mem := storage.NewMemoryStore()
	store := New(mem, WithSyncPersist())
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer store.Close()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		h := mustAdd(t, store, fmt.Sprintf("Habit %d", i), models.FrequencyDaily, u1)
		if seen[h.ID] {
			t.Fatalf("duplicate id %s", h.ID)
		}
		seen[h.ID] = true
	}

	habits := store.GetUserHabits(u1)
	if len(habits) != 50 {
		t.Fatalf("expected 50 habits, got %d", len(habits))
	}
	for i, h := range habits {
		if h.Name != fmt.Sprintf("Habit %d", i) {
			t.Errorf("habit %d out of creation order: %q", i, h.Name)
		}
	}
}

func TestAddHabitValidation(t *testing.T) {
	store, mem, _ := setupTestStore(t, WithSyncPersist())

	tests := []struct {
		name      string
		habitName string
		freq      models.Frequency
		owner     string
		field     string
	}{
		{name: "empty name", habitName: "", freq: models.FrequencyDaily, owner: u1, field: "name"},
		{name: "whitespace name", habitName: "   ", freq: models.FrequencyDaily, owner: u1, field: "name"},
		{name: "name too long", habitName: strings.Repeat("x", 51), freq: models.FrequencyDaily, owner: u1, field: "name"},
		{name: "no owner", habitName: "Read", freq: models.FrequencyDaily, owner: "", field: "owner"},
		{name: "unknown frequency", habitName: "Read", freq: "monthly", owner: u1, field: "frequency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.AddHabit(tt.habitName, tt.freq, tt.owner)
			var ve *errors.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, ve.Field)
			}
		})
	}

	if n := len(store.GetUserHabits(u1)); n != 0 {
		t.Errorf("expected no habits after failed adds, got %d", n)
	}
	if mem.Saves() != 0 {
		t.Errorf("expected no persists after failed adds, got %d", mem.Saves())
	}
}

func TestToggleIsInvolution(t *testing.T) {
	store, _, _ := setupTestStore(t)
	h := mustAdd(t, store, "Read", models.FrequencyDaily, u1)

	before := store.IsHabitCompletedOn(h.ID, "2026-10-15", u1)
	mustToggle(t, store, h.ID, "2026-10-15", u1)
	if store.IsHabitCompletedOn(h.ID, "2026-10-15", u1) == before {
		t.Fatal("single toggle did not flip completion")
	}
	mustToggle(t, store, h.ID, "2026-10-15", u1)
	if store.IsHabitCompletedOn(h.ID, "2026-10-15", u1) != before {
		t.Error("double toggle did not restore completion")
	}
}

func TestCompletedTodayFollowsToggle(t *testing.T) {
	store, _, _ := setupTestStore(t)
	h := mustAdd(t, store, "Read", models.FrequencyDaily, u1)

	if store.IsHabitCompletedToday(h.ID, u1) {
		t.Fatal("new habit should not be completed")
	}

	mustToggle(t, store, h.ID, today, u1)
	if !store.IsHabitCompletedToday(h.ID, u1) {
		t.Error("expected completed today after toggle")
	}

	mustToggle(t, store, h.ID, today, u1)
	if store.IsHabitCompletedToday(h.ID, u1) {
		t.Error("expected not completed today after second toggle")
	}
}

func TestToggleOtherDayDoesNotAffectToday(t *testing.T) {
	store, _, _ := setupTestStore(t)
	h := mustAdd(t, store, "Read", models.FrequencyDaily, u1)

	mustToggle(t, store, h.ID, "2026-10-17", u1)
	if store.IsHabitCompletedToday(h.ID, u1) {
		t.Error("completion yesterday leaked into today")
	}
	if !store.IsHabitCompletedOn(h.ID, "2026-10-17", u1) {
		t.Error("expected completion on 2026-10-17")
	}
}

func TestToggleValidation(t *testing.T) {
	store, mem, _ := setupTestStore(t, WithSyncPersist())
	h := mustAdd(t, store, "Read", models.FrequencyDaily, u1)
	saves := mem.Saves()

	for _, day := range []string{"", "today", "2026-10-32", "18-10-2026", "2026-10-18T00:00:00Z"} {
		if err := store.ToggleHabitCompletion(h.ID, day, u1); !errors.IsValidation(err) {
			t.Errorf("date %q: expected validation error, got %v", day, err)
		}
	}
	if err := store.ToggleHabitCompletion(h.ID, today, ""); !errors.IsValidation(err) {
		t.Errorf("expected validation error for empty owner, got %v", err)
	}
	if mem.Saves() != saves {
		t.Errorf("rejected toggles must not persist")
	}
}

func TestUnknownOrForeignHabitIsNoOp(t *testing.T) {
	store, mem, _ := setupTestStore(t, WithSyncPersist())
	h := mustAdd(t, store, "Read", models.FrequencyDaily, u1)
	saves := mem.Saves()

	if err := store.ToggleHabitCompletion("missing", today, u1); err != nil {
		t.Errorf("toggle unknown: expected nil, got %v", err)
	}
	if err := store.ToggleHabitCompletion(h.ID, today, u2); err != nil {
		t.Errorf("toggle foreign: expected nil, got %v", err)
	}
	if err := store.RemoveHabit("missing", u1); err != nil {
		t.Errorf("remove unknown: expected nil, got %v", err)
	}
	if err := store.RemoveHabit(h.ID, u2); err != nil {
		t.Errorf("remove foreign: expected nil, got %v", err)
	}

	if store.IsHabitCompletedToday(h.ID, u1) {
		t.Error("foreign toggle changed owner's completion")
	}
	if len(store.GetUserHabits(u1)) != 1 {
		t.Error("foreign remove deleted owner's habit")
	}
	if mem.Saves() != saves {
		t.Errorf("no-op mutations must not persist, saves went %d -> %d", saves, mem.Saves())
	}
}

func TestRemoveHabitCascades(t *testing.T) {
	store, mem, _ := setupTestStore(t, WithSyncPersist())
	water := mustAdd(t, store, "Drink water", models.FrequencyDaily, u1)
	read := mustAdd(t, store, "Read", models.FrequencyDaily, u1)
	mustToggle(t, store, water.ID, today, u1)
	mustToggle(t, store, water.ID, "2026-10-17", u1)
	mustToggle(t, store, read.ID, today, u1)

	if err := store.RemoveHabit(water.ID, u1); err != nil {
		t.Fatalf("RemoveHabit failed: %v", err)
	}

	if diff := cmp.Diff([]string{"Read"}, names(store.GetUserHabits(u1))); diff != "" {
		t.Errorf("habits mismatch (-want +got):\n%s", diff)
	}
	if store.IsHabitCompletedOn(water.ID, today, u1) || store.IsHabitCompletedOn(water.ID, "2026-10-17", u1) {
		t.Error("removed habit still reports completions")
	}

	saved := mem.Snapshot()
	want := []models.CompletionRecord{{HabitID: read.ID, Day: today, OwnerEmail: u1}}
	if diff := cmp.Diff(want, saved.Completions); diff != "" {
		t.Errorf("persisted completions mismatch (-want +got):\n%s", diff)
	}
	if stats := store.GetStats(u1); stats.TotalCompletions != 1 {
		t.Errorf("expected 1 lifetime completion after cascade, got %d", stats.TotalCompletions)
	}
}

func TestReAddedHabitHasIndependentHistory(t *testing.T) {
	store, _, _ := setupTestStore(t)
	old := mustAdd(t, store, "Read", models.FrequencyDaily, u1)
	mustToggle(t, store, old.ID, today, u1)
	if err := store.RemoveHabit(old.ID, u1); err != nil {
		t.Fatalf("RemoveHabit failed: %v", err)
	}

	readded := mustAdd(t, store, "Read", models.FrequencyDaily, u1)
	if readded.ID == old.ID {
		t.Fatal("re-added habit reused the old id")
	}
	if store.IsHabitCompletedToday(readded.ID, u1) {
		t.Error("re-added habit inherited the old completion")
	}
}

func TestCrossTenantIsolation(t *testing.T) {
	store, _, _ := setupTestStore(t)
	a := mustAdd(t, store, "Drink water", models.FrequencyDaily, u1)
	mustAdd(t, store, "Call mom", models.FrequencyWeekly, u1)
	b := mustAdd(t, store, "Read", models.FrequencyDaily, u2)
	mustToggle(t, store, a.ID, today, u1)

	if diff := cmp.Diff([]string{"Drink water", "Call mom"}, names(store.GetUserHabits(u1))); diff != "" {
		t.Errorf("u1 habits mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Read"}, names(store.GetUserHabits(u2))); diff != "" {
		t.Errorf("u2 habits mismatch (-want +got):\n%s", diff)
	}
	if store.IsHabitCompletedToday(a.ID, u2) {
		t.Error("u2 can see u1's completion")
	}
	if _, ok := store.GetHabit(b.ID, u1); ok {
		t.Error("u1 can fetch u2's habit")
	}

	if got := store.GetTodaysProgress(u1); got != 100 {
		t.Errorf("u1 progress: expected 100, got %d", got)
	}
	if got := store.GetTodaysProgress(u2); got != 0 {
		t.Errorf("u2 progress: expected 0, got %d", got)
	}
	for _, f := range models.Filters {
		for _, h := range store.GetHabitsByFilter(f, u2) {
			if h.OwnerEmail != u2 {
				t.Errorf("filter %s leaked habit %s of %s", f, h.ID, h.OwnerEmail)
			}
		}
	}
	if stats := store.GetStats(u2); stats.TotalCompletions != 0 || stats.TotalHabits != 1 {
		t.Errorf("u2 stats leaked u1 data: %+v", stats)
	}
	if got := store.GetUserHabits("nobody@example.com"); len(got) != 0 {
		t.Errorf("unknown owner should see nothing, got %d habits", len(got))
	}
}

func TestGetUserHabitsReturnsCopy(t *testing.T) {
	store, _, _ := setupTestStore(t)
	mustAdd(t, store, "Read", models.FrequencyDaily, u1)

	got := store.GetUserHabits(u1)
	got[0].Name = "Mutated"

	if store.GetUserHabits(u1)[0].Name != "Read" {
		t.Error("caller mutation leaked into store")
	}
}

func TestMutationsBeforeLoad(t *testing.T) {
	store := New(storage.NewMemoryStore(), WithSyncPersist())
	defer store.Close()

	if _, err := store.AddHabit("Read", models.FrequencyDaily, u1); !errors.Is(err, errors.ErrNotLoaded) {
		t.Errorf("AddHabit: expected ErrNotLoaded, got %v", err)
	}
	if err := store.ToggleHabitCompletion("x", today, u1); !errors.Is(err, errors.ErrNotLoaded) {
		t.Errorf("Toggle: expected ErrNotLoaded, got %v", err)
	}
	if err := store.RemoveHabit("x", u1); !errors.Is(err, errors.ErrNotLoaded) {
		t.Errorf("Remove: expected ErrNotLoaded, got %v", err)
	}
	if got := store.GetTodaysProgress(u1); got != 0 {
		t.Errorf("expected 0 progress before load, got %d", got)
	}
}

func TestMutationsAfterClose(t *testing.T) {
	store, _, _ := setupTestStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := store.AddHabit("Read", models.FrequencyDaily, u1); !errors.Is(err, errors.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestLoadRestoresState(t *testing.T) {
	mem := storage.NewMemoryStore()
	first := New(mem, WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC))
	if err := first.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	h := mustAdd(t, first, "Read", models.FrequencyDaily, u1)
	mustAdd(t, first, "Call mom", models.FrequencyWeekly, u1)
	mustToggle(t, first, h.ID, today, u1)
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second := New(mem, WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC))
	defer second.Close()
	if err := second.Load(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	if diff := cmp.Diff(first.GetUserHabits(u1), second.GetUserHabits(u1)); diff != "" {
		t.Errorf("habits differ after reload (-first +second):\n%s", diff)
	}
	if !second.IsHabitCompletedToday(h.ID, u1) {
		t.Error("completion lost across reload")
	}
}

func TestLoadPrunesBadCompletions(t *testing.T) {
	snap := storage.NewSnapshot()
	snap.Habits = []models.Habit{
		{ID: "h1", OwnerEmail: u1, Name: "Read", Frequency: models.FrequencyDaily, CreatedAt: fixedNow},
	}
	snap.Completions = []models.CompletionRecord{
		{HabitID: "h1", Day: today, OwnerEmail: u1},
		{HabitID: "gone", Day: today, OwnerEmail: u1},
		{HabitID: "h1", Day: "2026-10-17", OwnerEmail: u2},
		{HabitID: "h1", Day: "not-a-date", OwnerEmail: u1},
	}
	mem := storage.NewMemoryStoreWith(snap)

	store := New(mem, WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC), WithSyncPersist())
	defer store.Close()
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if stats := store.GetStats(u1); stats.TotalCompletions != 1 {
		t.Errorf("expected 1 completion after pruning, got %d", stats.TotalCompletions)
	}
	if store.IsHabitCompletedOn("h1", "2026-10-17", u1) {
		t.Error("cross-tenant record should have been pruned")
	}

	// the next write persists the pruned snapshot
	mustAdd(t, store, "Walk", models.FrequencyDaily, u1)
	if n := len(mem.Snapshot().Completions); n != 1 {
		t.Errorf("expected 1 persisted completion, got %d", n)
	}
}

func TestLoadKeepsCompletionsWithoutOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.json")
	doc := fmt.Sprintf(`{
  "version": %d,
  "habits": [{"id": "h1", "ownerEmail": %q, "name": "Read", "frequency": "daily", "createdAt": "2026-10-01T08:00:00Z"}],
  "completions": [{"habitId": "h1", "isoDate": %q}]
}`, constants.SchemaVersion, u1, today)
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("failed to write store: %v", err)
	}

	provider := storage.NewJSONStore(path)
	store := New(provider, WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC), WithSyncPersist())
	defer store.Close()
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !store.IsHabitCompletedToday("h1", u1) {
		t.Error("completion without owner should be kept")
	}
	if got := store.GetTodaysProgress(u1); got != 100 {
		t.Errorf("expected progress 100, got %d", got)
	}
	if store.IsHabitCompletedToday("h1", u2) {
		t.Error("completion must not be visible to another user")
	}

	// the owner is filled in from the habit on the next write
	mustAdd(t, store, "Walk", models.FrequencyDaily, u1)
	snap, err := provider.Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	want := []models.CompletionRecord{{HabitID: "h1", Day: today, OwnerEmail: u1}}
	if diff := cmp.Diff(want, snap.Completions); diff != "" {
		t.Errorf("persisted completions mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsCorruptHabits(t *testing.T) {
	snap := storage.NewSnapshot()
	snap.Habits = []models.Habit{
		{ID: "h1", OwnerEmail: u1, Name: "Read", Frequency: models.FrequencyDaily},
		{ID: "h1", OwnerEmail: u1, Name: "Walk", Frequency: models.FrequencyDaily},
	}

	store := New(storage.NewMemoryStoreWith(snap), WithSyncPersist())
	defer store.Close()
	if err := store.Load(context.Background()); !errors.Is(err, errors.ErrCorruptSnapshot) {
		t.Errorf("expected ErrCorruptSnapshot, got %v", err)
	}
}

func TestLoadPropagatesProviderError(t *testing.T) {
	mem := storage.NewMemoryStore()
	mem.SetLoadError(errors.ErrUnsupportedVersion)

	store := New(mem, WithSyncPersist())
	defer store.Close()
	if err := store.Load(context.Background()); !errors.Is(err, errors.ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestLoadHonorsCanceledContext(t *testing.T) {
	store := New(storage.NewMemoryStore(), WithSyncPersist())
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTodayUsesConfiguredLocation(t *testing.T) {
	// 02:00 UTC on the 18th is still the 17th in New York
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	at := time.Date(2026, 10, 18, 2, 0, 0, 0, time.UTC)
	store := New(storage.NewMemoryStore(), WithClock(func() time.Time { return at }), WithLocation(ny), WithSyncPersist())
	defer store.Close()

	if got := store.Today(); got != "2026-10-17" {
		t.Errorf("expected 2026-10-17 in New York, got %s", got)
	}
}

func TestConcurrentReadersOfPersistedSnapshots(t *testing.T) {
	// the writer goroutine only ever sees copies, so later mutations
	// must not change a snapshot already handed off
	store, mem, _ := setupTestStore(t)
	h := mustAdd(t, store, "Read", models.FrequencyDaily, u1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = mem.Snapshot()
		}
	}()
	for i := 0; i < 100; i++ {
		mustToggle(t, store, h.ID, today, u1)
	}
	wg.Wait()
	store.Flush()

	if store.IsHabitCompletedToday(h.ID, u1) {
		t.Error("expected even number of toggles to leave habit incomplete")
	}
	if n := len(mem.Snapshot().Completions); n != 0 {
		t.Errorf("expected latest persisted snapshot to have 0 completions, got %d", n)
	}
}
